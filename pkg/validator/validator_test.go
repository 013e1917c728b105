package validator

import (
	"errors"
	"strings"
	"testing"
)

type optFloat struct {
	v   float64
	set bool
}

func (o optFloat) ValidationValue() (any, bool) { return o.v, o.set }

func TestValidateStruct(t *testing.T) {
	type TestStruct struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required"`
	}

	tests := []struct {
		name     string
		input    TestStruct
		expected bool
	}{
		{
			name: "valid struct",
			input: TestStruct{
				Email:    "test@example.com",
				Password: "password123",
				Name:     "Jane Doe",
			},
			expected: true,
		},
		{
			name: "missing required field",
			input: TestStruct{
				Email:    "test@example.com",
				Password: "password123",
			},
			expected: false,
		},
		{
			name: "invalid email",
			input: TestStruct{
				Email:    "invalid-email",
				Password: "password123",
				Name:     "Jane Doe",
			},
			expected: false,
		},
		{
			name: "password too short",
			input: TestStruct{
				Email:    "test@example.com",
				Password: "short",
				Name:     "Jane Doe",
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			isValid := err == nil

			if isValid != tt.expected {
				t.Errorf("ValidateStruct() = %v, expected %v, error: %v", isValid, tt.expected, err)
			}
		})
	}
}

func TestStructCollectsAllErrors(t *testing.T) {
	type Input struct {
		Name  string `json:"business_name" validate:"required"`
		Count int    `json:"employee_count" validate:"gte=1"`
		Share int    `json:"share" validate:"lte=100"`
	}

	err := ValidateStruct(Input{Count: 0, Share: 120})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var msgs Errors
	if !errors.As(err, &msgs) {
		t.Fatalf("expected Errors, got %T", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d: %v", len(msgs), msgs)
	}

	want := []string{
		"business_name is required",
		"employee_count must be greater than or equal to 1",
		"share must be less than or equal to 100",
	}
	for i, w := range want {
		if msgs[i] != w {
			t.Errorf("message %d = %q, want %q", i, msgs[i], w)
		}
	}
}

func TestOptionalValues(t *testing.T) {
	type Input struct {
		Percentage optFloat `json:"renewable_energy_percentage" validate:"omitempty,gte=0,lte=100"`
	}

	v := New(optFloat{})

	tests := []struct {
		name    string
		input   Input
		wantErr string
	}{
		{name: "unset passes", input: Input{}},
		{name: "in range passes", input: Input{Percentage: optFloat{v: 40, set: true}}},
		{name: "above range fails", input: Input{Percentage: optFloat{v: 140, set: true}}, wantErr: "renewable_energy_percentage must be less than or equal to 100"},
		{name: "below range fails", input: Input{Percentage: optFloat{v: -1, set: true}}, wantErr: "renewable_energy_percentage must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Test@Example.COM", "test@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"user\x00@example.com", "user@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeEmail(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeEmail(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
