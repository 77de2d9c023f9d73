package inputval

import "testing"

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `json:"name" validate:"required,max=10" label:"Full name"`
		Email string `json:"email" validate:"required,email" label:"Email address"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
		wantField  string
	}{
		{"valid input", TestInput{Name: "John", Email: "john@example.com"}, false, "", ""},
		{"missing name", TestInput{Email: "john@example.com"}, true, "Full name is required.", "name"},
		{"name too long", TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"}, true, "Full name must be at most 10 characters.", "name"},
		{"invalid email", TestInput{Name: "John", Email: "not-an-email"}, true, "A valid email address is required.", "email"},
		{"missing both", TestInput{}, true, "Full name is required.", "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if result.HasErrors() != tt.wantErrors {
				t.Fatalf("HasErrors = %v, want %v (%v)", result.HasErrors(), tt.wantErrors, result.Errors)
			}
			if !tt.wantErrors {
				return
			}
			if result.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", result.First(), tt.wantFirst)
			}
			if result.Errors[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", result.Errors[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidate_OptionalPointers(t *testing.T) {
	type Patch struct {
		Name   *string `json:"name" validate:"required,max=5" label:"Name"`
		Domain *string `json:"domain" validate:"domain" label:"Domain"`
	}

	if r := Validate(Patch{}); r.HasErrors() {
		t.Errorf("nil fields should be skipped, got %v", r.Errors)
	}

	long, bad := "toolong", "not a domain"
	r := Validate(&Patch{Name: &long, Domain: &bad})
	if len(r.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", r.Errors)
	}
	if r.All() != "Name must be at most 5 characters.; Domain must be a valid domain name." {
		t.Errorf("All() = %q", r.All())
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type Invite struct {
		Email string `validate:"required,email" label:"Email"`
		Role  string `validate:"required,role" label:"Role"`
		Tier  string `validate:"tier" label:"Tier"`
		Kind  string `validate:"oneof=a b" label:"Kind"`
	}

	if r := Validate(Invite{Email: "a@example.com", Role: "organization_user"}); r.HasErrors() {
		t.Errorf("valid invite has errors: %v", r.Errors)
	}

	r := Validate(Invite{Email: "a@example.com", Role: "boss", Tier: "gold", Kind: "c"})
	if len(r.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %v", r.Errors)
	}
	wantRules := []string{"role", "tier", "oneof"}
	for i, rule := range wantRules {
		if r.Errors[i].Rule != rule {
			t.Errorf("Errors[%d].Rule = %q, want %q", i, r.Errors[i].Rule, rule)
		}
	}
}

func TestValidate_Timezone(t *testing.T) {
	type Prefs struct {
		TZ string `json:"timezone" validate:"timezone" label:"Time zone"`
	}
	if r := Validate(Prefs{TZ: "Europe/Paris"}); r.HasErrors() {
		t.Errorf("known zone rejected: %v", r.Errors)
	}
	if r := Validate(Prefs{}); r.HasErrors() {
		t.Errorf("empty zone should be skipped: %v", r.Errors)
	}
	r := Validate(Prefs{TZ: "Mars/Olympus"})
	if !r.HasErrors() || r.Errors[0].Field != "timezone" {
		t.Fatalf("expected timezone error, got %v", r.Errors)
	}
}

func TestValidate_MinCountsRunes(t *testing.T) {
	type In struct {
		Password string `validate:"min=6" label:"Password"`
	}
	if r := Validate(In{Password: "ééééé"}); !r.HasErrors() {
		t.Error("five runes should fail min=6")
	}
	if r := Validate(In{Password: "éééééé"}); r.HasErrors() {
		t.Errorf("six runes should pass min=6: %v", r.Errors)
	}
}

func TestResult_FirstAndAll(t *testing.T) {
	r := &Result{}
	if r.First() != "" || r.All() != "" {
		t.Error("empty result should have empty messages")
	}
	r.Errors = []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}
	if r.First() != "Error 1" {
		t.Errorf("First() = %q", r.First())
	}
	if r.All() != "Error 1; Error 2" {
		t.Errorf("All() = %q", r.All())
	}
}
