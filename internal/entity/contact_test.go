package entity

import "testing"

func TestContactHelpers(t *testing.T) {
	c := Contact{FirstName: " Ana", LastName: "", Phone: " 5551234 ", Mobile: "  "}
	if got := c.Name(); got != "Ana" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
	if got := c.PhoneToValidate(); got != "5551234" {
		t.Fatalf("expected phone fallback, got %q", got)
	}

	c.Mobile = "+351912345678"
	if got := c.PhoneToValidate(); got != "+351912345678" {
		t.Fatalf("expected mobile to win, got %q", got)
	}

	if got := ContactIDForRow(7); got != "customer-7" {
		t.Fatalf("unexpected id %q", got)
	}
}
