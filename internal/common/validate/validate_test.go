package validate

import (
	"strings"
	"testing"
)

type registerPayload struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=5,max=50"`
	FullName   string `json:"fullName" validate:"required,min=1,max=50"`
	GivenName  string `json:"givenName" validate:"required"`
	FamilyName string `json:"familyName" validate:"required"`
	Role       string `json:"role" validate:"required,oneof='Guest' 'Ride Operator' 'Maintenance Supervisor'"`
}

func validPayload() registerPayload {
	return registerPayload{
		Email:      "rider@example.com",
		Password:   "superSecret1",
		FullName:   "Rita Rider",
		GivenName:  "Rita",
		FamilyName: "Rider",
		Role:       "Ride Operator",
	}
}

func TestStructValid(t *testing.T) {
	p := validPayload()
	if details := Struct(&p); details != nil {
		t.Fatalf("expected no errors, got %v", details)
	}
}

func TestStructReportsMissingFieldNames(t *testing.T) {
	p := registerPayload{Email: "rider@example.com", Role: "Guest"}
	details := Struct(&p)
	if len(details) != 4 {
		t.Fatalf("expected 4 missing fields, got %d: %v", len(details), details)
	}

	joined := strings.Join(details, "; ")
	for _, name := range []string{"password", "fullName", "givenName", "familyName"} {
		if !strings.Contains(joined, `"`+name+`"`) {
			t.Errorf("missing field %q not reported: %v", name, details)
		}
	}
	for _, name := range []string{"email", "role"} {
		if strings.Contains(joined, `"`+name+`"`) {
			t.Errorf("present field %q wrongly reported: %v", name, details)
		}
	}
}

func TestStructUsesJSONNames(t *testing.T) {
	p := validPayload()
	p.FullName = ""
	details := Struct(&p)
	if len(details) != 1 || !strings.Contains(details[0], `"fullName"`) {
		t.Fatalf("expected json field name in message, got %v", details)
	}
}

func TestStructRoleEnum(t *testing.T) {
	p := validPayload()
	p.Role = "Janitor"
	details := Struct(&p)
	if len(details) != 1 || !strings.Contains(details[0], `"role"`) {
		t.Fatalf("expected role enum violation, got %v", details)
	}

	for _, role := range []string{"Guest", "Ride Operator", "Maintenance Supervisor"} {
		p.Role = role
		if details := Struct(&p); details != nil {
			t.Errorf("role %q should be accepted: %v", role, details)
		}
	}
}

func TestStructBounds(t *testing.T) {
	p := validPayload()
	p.Password = "shrt"
	if details := Struct(&p); len(details) != 1 || !strings.Contains(details[0], `"password"`) {
		t.Fatalf("expected password min violation, got %v", details)
	}

	p = validPayload()
	p.Email = "not-an-email"
	if details := Struct(&p); len(details) != 1 || !strings.Contains(details[0], `"email"`) {
		t.Fatalf("expected email format violation, got %v", details)
	}
}
