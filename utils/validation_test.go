package utils

import (
	"testing"

	"agriportal-go/models"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"9876543210", true},
		{"919876543210", true},
		{"12345", false},
		{"98765-43210", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidatePhone(tt.phone); got != tt.want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestValidateIFSC(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"SBIN0001234", true},
		{"HDFC0ABC123", true},
		{"sbin0001234", false},
		{"SBIN1001234", false},
		{"SBIN000123", false},
	}
	for _, tt := range tests {
		if got := ValidateIFSC(tt.code); got != tt.want {
			t.Errorf("ValidateIFSC(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestValidateFarmerRegistration(t *testing.T) {
	valid := models.FarmerRegisterRequest{
		Name:        "Ramesh",
		Phone:       "9876543210",
		Password:    "secret1",
		Village:     "Khed",
		District:    "Pune",
		State:       "Maharashtra",
		Crops:       []string{"Rice"},
		BankAccount: "123456789012",
		IFSCCode:    "SBIN0001234",
	}
	if err := ValidateStruct(valid); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	invalid := valid
	invalid.Phone = "123"
	invalid.Crops = nil
	invalid.IFSCCode = "bad"
	err := ValidateStruct(invalid)
	if err == nil {
		t.Fatal("expected validation error")
	}

	details := FormatValidationError(err)
	for _, field := range []string{"phone", "crops", "ifsccode"} {
		if _, ok := details[field]; !ok {
			t.Errorf("expected error detail for %s, got %v", field, details)
		}
	}
}

func TestSanitizeList(t *testing.T) {
	got := SanitizeList([]string{" Rice ", "", "  ", "Wheat"})
	if len(got) != 2 || got[0] != "Rice" || got[1] != "Wheat" {
		t.Errorf("unexpected result %v", got)
	}
}
