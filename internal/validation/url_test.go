package validation

import (
	"strings"
	"testing"
)

func TestNewAPIURLValidator(t *testing.T) {
	v := NewAPIURLValidator()
	if v.AllowLocalhost {
		t.Error("Expected AllowLocalhost to be false for the provider validator")
	}
	if v.AllowPrivateIPs {
		t.Error("Expected AllowPrivateIPs to be false for the provider validator")
	}
	if !v.RequireHTTPS {
		t.Error("Expected RequireHTTPS for the provider validator")
	}
	if v.MaxLength != 2048 {
		t.Errorf("Expected MaxLength to be 2048, got %d", v.MaxLength)
	}
}

func TestValidateAndNormalize(t *testing.T) {
	v := NewAPIURLValidator()

	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
		errorMsg    string
	}{
		{name: "empty URL", input: "", shouldError: true, errorMsg: "URL cannot be empty"},
		{name: "whitespace-only URL", input: "   ", shouldError: true, errorMsg: "URL cannot be empty"},
		{name: "missing scheme gets https", input: "api.us.nylas.com/v3", expected: "https://api.us.nylas.com/v3"},
		{name: "trailing slash trimmed", input: "https://api.us.nylas.com/v3/", expected: "https://api.us.nylas.com/v3"},
		{name: "plain http rejected", input: "http://api.us.nylas.com/v3", shouldError: true, errorMsg: "must use https"},
		{name: "ftp rejected", input: "ftp://api.us.nylas.com", shouldError: true, errorMsg: "http or https"},
		{name: "localhost rejected", input: "https://localhost:8080", shouldError: true, errorMsg: "localhost"},
		{name: "loopback IP rejected", input: "https://127.0.0.1", shouldError: true, errorMsg: "localhost"},
		{name: "private IP rejected", input: "https://192.168.1.10/v3", shouldError: true, errorMsg: "private IP"},
		{name: "credentials rejected", input: "https://user:pw@api.us.nylas.com", shouldError: true, errorMsg: "credentials"},
		{name: "query rejected", input: "https://api.us.nylas.com/v3?x=1", shouldError: true, errorMsg: "query"},
		{name: "traversal rejected", input: "https://api.us.nylas.com/v3/../admin", shouldError: true, errorMsg: "traversal"},
		{name: "script characters rejected", input: "https://api.us.nylas.com/<script>", shouldError: true, errorMsg: "invalid characters"},
		{name: "too long", input: "https://api.us.nylas.com/" + strings.Repeat("a", 2050), shouldError: true, errorMsg: "too long"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(test.input)
			if test.shouldError {
				if err == nil {
					t.Fatalf("expected error containing %q, got %q", test.errorMsg, got)
				}
				if !strings.Contains(err.Error(), test.errorMsg) {
					t.Errorf("expected error containing %q, got %q", test.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.expected {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", test.input, got, test.expected)
			}
		})
	}
}

func TestPermissiveValidatorAllowsLocalServer(t *testing.T) {
	v := NewPermissiveAPIURLValidator()

	for _, input := range []string{"http://127.0.0.1:4321", "http://localhost:4321/", "http://10.0.0.5:4321"} {
		if _, err := v.ValidateAndNormalize(input); err != nil {
			t.Errorf("ValidateAndNormalize(%q) failed: %v", input, err)
		}
	}

	if _, err := v.ValidateAndNormalize("http://0.0.0.0:4321"); err == nil {
		t.Error("unspecified address should be rejected even in permissive mode")
	}
}
