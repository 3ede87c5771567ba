// Package interfaces holds the small boundary contracts shared across the
// engine's system packages, so that no package needs to import a concrete
// implementation of a cross-cutting concern.
package interfaces

// LoggerInterface is the sink archivist writes formatted log lines to.
// A *log.Logger satisfies it, which is what New defaults to.
type LoggerInterface interface {
	Println(v ...interface{})
}

// Validator is the §6.1 fact-validator boundary. The engine requires every
// fact reaching Declare to have already passed Validate; the engine itself
// never re-validates. src/system/schema ships the concrete implementation
// backed by go-playground/validator.
type Validator interface {
	// Validate checks fact against the declared schema for factType and
	// returns a descriptive error if a field that carries a validator tag is
	// missing, a present field is not of its declared kind, or a field fails
	// its declared constraint.
	Validate(factType string, fields map[string]interface{}) error
}
