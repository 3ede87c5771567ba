// Package schema is the concrete implementation behind the §6.1 fact
// validator boundary: a per-fact-type registry of declared field names and
// types, used both for compile-time pattern checks (§4.2/§7 SchemaError)
// and for validating field values before they reach Declare.
package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

// FieldSpec declares one field of a fact type: its name, its Value kind,
// and (optionally) a go-playground/validator tag applied when Validate
// runs, e.g. "required" or "gt=0".
type FieldSpec struct {
	Name string
	Kind ikvalue.Kind
	Tag  string
}

// FactType is the compiled description of one declared fact class.
type FactType struct {
	Name   string
	Fields map[string]FieldSpec
}

// Registry holds every declared FactType and doubles as the engine's
// interfaces.Validator implementation.
type Registry struct {
	types    map[string]*FactType
	validate *validator.Validate
}

// New returns an empty schema registry.
func New() *Registry {
	return &Registry{
		types:    make(map[string]*FactType),
		validate: validator.New(),
	}
}

// Register declares a new fact type. Registering the same name twice
// replaces the previous declaration (used by rule authors iterating on a
// fact class during development).
func (r *Registry) Register(name string, fields []FieldSpec) *FactType {
	ft := &FactType{Name: name, Fields: make(map[string]FieldSpec, len(fields))}
	for _, f := range fields {
		ft.Fields[f.Name] = f
	}
	r.types[name] = ft
	return ft
}

// Lookup returns the declared FactType, or false if factType was never
// registered.
func (r *Registry) Lookup(factType string) (*FactType, bool) {
	ft, ok := r.types[factType]
	return ft, ok
}

// FieldKind returns the declared Kind for factType.field, and whether the
// field is declared at all. Used by the pattern compiler to reject
// unknown-field constraints and ordering operators on non-ordered kinds
// (spec.md §7 SchemaError) at compile time, before any fact is asserted.
func (r *Registry) FieldKind(factType, field string) (ikvalue.Kind, bool) {
	ft, ok := r.types[factType]
	if !ok {
		return 0, false
	}
	fs, ok := ft.Fields[field]
	if !ok {
		return 0, false
	}
	return fs.Kind, true
}

// Validate implements interfaces.Validator. It checks each present declared
// field's value against its declared Kind, then runs go-playground/validator's
// Var check on it with the field's tag, so rule authors get ordinary validator
// tag semantics ("required", "gt=0", ...) without hand-rolling per-field
// checks. Fields not declared for factType are not checked.
func (r *Registry) Validate(factType string, fields map[string]interface{}) error {
	ft, ok := r.types[factType]
	if !ok {
		return fmt.Errorf("schema: unknown fact type %q", factType)
	}
	for name, spec := range ft.Fields {
		v, present := fields[name]
		if !present {
			if spec.Tag != "" {
				return fmt.Errorf("schema: %s.%s: missing required field", factType, name)
			}
			continue
		}
		var kind ikvalue.Kind
		switch v.(type) {
		case string:
			kind = ikvalue.KindString
		case int, int32, int64:
			kind = ikvalue.KindInt
		case float32, float64:
			kind = ikvalue.KindFloat
		case bool:
			kind = ikvalue.KindBool
		default:
			return fmt.Errorf("schema: %s.%s: unsupported value type %T", factType, name, v)
		}
		if kind != spec.Kind {
			return fmt.Errorf("schema: %s.%s: value of kind %s, declared %s", factType, name, kind, spec.Kind)
		}
		if spec.Tag == "" {
			continue
		}
		if err := r.validate.Var(v, spec.Tag); err != nil {
			return fmt.Errorf("schema: %s.%s: %w", factType, name, err)
		}
	}
	return nil
}
