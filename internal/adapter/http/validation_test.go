package http

import (
	"errors"
	"strings"
	"testing"
)

func TestLoanNumberValidation(t *testing.T) {
	type P struct {
		Number string `validate:"loannumber"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{Number: "PRT202601A1B2C3D4"}); err != nil {
		t.Fatalf("expected valid loan number, got err: %v", err)
	}

	for _, s := range []string{
		"",
		"PRT202601",
		"PRT2026A1B2C3D4",
		"prt202601a1b2c3d4",
		"PRT202601A1B2C3D4FF",
		"XXX202601A1B2C3D4",
		"PRT202601G1B2C3D4",
	} {
		err := cv.Validate(P{Number: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		fe := ToFieldErrors(err)
		found := false
		for _, e := range fe {
			if e.Field == "Number" && strings.Contains(e.Message, "PRT") {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing field error for %q: %+v", s, fe)
		}
	}
}

func TestCaisseCodeValidation(t *testing.T) {
	type P struct {
		Code string `validate:"caissecode"`
	}
	cv := NewValidator()

	for _, s := range []string{"FKM01ESPOIR", "FKM12FEMMENOVISSI"} {
		if err := cv.Validate(P{Code: s}); err != nil {
			t.Fatalf("expected valid code %q, got err: %v", s, err)
		}
	}
	for _, s := range []string{"", "FKM1ESPOIR", "FKM01", "fkm01espoir", "ABC01ESPOIR"} {
		if err := cv.Validate(P{Code: s}); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestToFieldErrors_NonValidatorError(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 || fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe)
	}
}

func TestToFieldErrors_RequiredAndOneof(t *testing.T) {
	type P struct {
		Name string `validate:"required"`
		Kind string `validate:"oneof=A B"`
	}
	cv := NewValidator()
	err := cv.Validate(P{Kind: "C"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	fe := ToFieldErrors(err)
	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing required message: %+v", fe)
	}
	if !containsFieldMsg(fe, "Kind", "must be one of") {
		t.Fatalf("missing oneof message: %+v", fe)
	}
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
