package schema

import (
	"testing"

	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

func Test_Register_And_Lookup(t *testing.T) {
	r := New()
	r.Register("Patient", []FieldSpec{
		{Name: "heartbeat", Kind: ikvalue.KindInt, Tag: "required"},
	})
	ft, ok := r.Lookup("Patient")
	if !ok || ft.Name != "Patient" {
		t.Fatalf("expected Patient to be registered")
	}
	if _, ok := r.Lookup("Unknown"); ok {
		t.Fatalf("expected Unknown fact type to be absent")
	}
}

func Test_FieldKind(t *testing.T) {
	r := New()
	r.Register("Patient", []FieldSpec{{Name: "heartbeat", Kind: ikvalue.KindInt}})
	kind, ok := r.FieldKind("Patient", "heartbeat")
	if !ok || kind != ikvalue.KindInt {
		t.Fatalf("FieldKind(Patient, heartbeat) = (%v, %v), want (int, true)", kind, ok)
	}
	if _, ok := r.FieldKind("Patient", "missing"); ok {
		t.Fatalf("expected unknown field to report false")
	}
	if _, ok := r.FieldKind("Unknown", "heartbeat"); ok {
		t.Fatalf("expected unknown fact type to report false")
	}
}

func Test_Validate_RequiredField(t *testing.T) {
	r := New()
	r.Register("Patient", []FieldSpec{{Name: "heartbeat", Kind: ikvalue.KindInt, Tag: "required"}})
	if err := r.Validate("Patient", map[string]interface{}{}); err == nil {
		t.Fatalf("expected validation error for missing required field")
	}
	if err := r.Validate("Patient", map[string]interface{}{"heartbeat": int64(145)}); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func Test_Validate_UnknownFactType(t *testing.T) {
	r := New()
	if err := r.Validate("Ghost", map[string]interface{}{}); err == nil {
		t.Fatalf("expected validation error for unregistered fact type")
	}
}
