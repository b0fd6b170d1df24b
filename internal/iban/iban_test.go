package iban

import (
	"strings"
	"testing"
)

func mustGenerate(t *testing.T, countryCode, bankCode string) string {
	t.Helper()
	n, err := Generate(countryCode, bankCode)
	if err != nil {
		t.Fatalf("Generate(%s, %s): %v", countryCode, bankCode, err)
	}
	return n
}

func TestGenerateValidateRoundTrip(t *testing.T) {
	codes := map[string]int{
		"TN": 24, "FR": 27, "DE": 22, "ES": 24,
		"IT": 27, "GB": 22, "BE": 16, "NL": 18,
	}
	for code, length := range codes {
		for i := 0; i < 50; i++ {
			n := mustGenerate(t, code, "EGA")
			if len(n) != length {
				t.Fatalf("Generate(%s) length = %d, want %d (%s)", code, len(n), length, n)
			}
			if !strings.HasPrefix(n, code) {
				t.Fatalf("Generate(%s) = %s, missing country prefix", code, n)
			}
			if !Validate(n) {
				t.Fatalf("Validate(Generate(%s)) = false (%s)", code, n)
			}
		}
	}
}

func TestGenerateUnknownCountryDefaultsTo24(t *testing.T) {
	n := mustGenerate(t, "XX", "EGA")
	if len(n) != 24 {
		t.Fatalf("unknown country length = %d, want 24 (%s)", len(n), n)
	}
	if !Validate(n) {
		t.Fatalf("Validate(%s) = false", n)
	}
}

func TestGenerateLowercaseInput(t *testing.T) {
	n := mustGenerate(t, "tn", "ega")
	if !strings.HasPrefix(n, "TN") {
		t.Fatalf("Generate(tn) = %s, want TN prefix", n)
	}
	if !Validate(n) {
		t.Fatalf("Validate(%s) = false", n)
	}
}

func TestGenerateRejectsBadCodes(t *testing.T) {
	cases := []struct {
		name        string
		countryCode string
		bankCode    string
	}{
		{"hyphenated bank code", "TN", "EG-A"},
		{"bank code with space", "TN", "EG A"},
		{"empty bank code", "TN", ""},
		{"digit in country code", "T1", "EGA"},
		{"three-letter country code", "TUN", "EGA"},
		{"empty country code", "", "EGA"},
	}
	for _, tc := range cases {
		if n, err := Generate(tc.countryCode, tc.bankCode); err == nil {
			t.Errorf("%s: Generate(%q, %q) = %s, want error", tc.name, tc.countryCode, tc.bankCode, n)
		}
	}
}

func TestValidateKnownIBAN(t *testing.T) {
	// Standard example IBAN with a correct checksum.
	if !Validate("GB82WEST12345698765432") {
		t.Error("known-good IBAN rejected")
	}
	// Same number with the check digits flipped.
	if Validate("GB28WEST12345698765432") {
		t.Error("corrupted check digits accepted")
	}
	// All-zero BBAN for TN reduces to check digits 59.
	if !Validate("TN59" + strings.Repeat("0", 20)) {
		t.Error("TN59 zero-tail IBAN rejected")
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"TN591234567890",                      // 14 chars, below minimum
		strings.Repeat("D", 35),               // above maximum
		"1N5912345678901234567890",            // digit where letter expected
		"TNX912345678901234567890",            // letter where check digit expected
		"tn591234567890123456789012",          // lowercase country code
		"TN59123456789012345678901?",          // invalid character
		"TN60" + strings.Repeat("0", 20),      // wrong checksum
	}
	for _, s := range cases {
		if Validate(s) {
			t.Errorf("Validate(%q) = true, want false", s)
		}
	}
}

func TestValidateIdempotent(t *testing.T) {
	inputs := []string{
		mustGenerate(t, "TN", "EGA"),
		"not-an-iban",
		"TN0000000000000000000000",
	}
	for _, s := range inputs {
		first := Validate(s)
		for i := 0; i < 5; i++ {
			if Validate(s) != first {
				t.Fatalf("Validate(%q) not idempotent", s)
			}
		}
	}
}
