// Package iban generates and validates IBAN-style account numbers with an
// embedded ISO 7064 mod-97 checksum. Generation is purely computational:
// uniqueness of the random tail is probabilistic, so callers must re-check
// against their store and regenerate on collision.
package iban

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// ibanLengths maps a country code to the total account-number length.
// Countries not listed fall back to defaultLength.
var ibanLengths = map[string]int{
	"TN": 24,
	"FR": 27,
	"DE": 22,
	"ES": 24,
	"IT": 27,
	"GB": 22,
	"BE": 16,
	"NL": 18,
}

const (
	defaultLength = 24
	minLength     = 15
	maxLength     = 34
)

var (
	prefixPattern      = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}`)
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	bankCodePattern    = regexp.MustCompile(`^[0-9A-Z]+$`)
)

// Generate builds an account number as countryCode + checkDigits + bankCode +
// random digits, sized per the country table. The check digits are computed so
// that Validate accepts the result. Codes with characters outside [0-9A-Z]
// cannot be expanded by the checksum and are rejected.
func Generate(countryCode, bankCode string) (string, error) {
	code := strings.ToUpper(countryCode)
	bank := strings.ToUpper(bankCode)
	if !countryCodePattern.MatchString(code) {
		return "", fmt.Errorf("invalid country code %q", countryCode)
	}
	if !bankCodePattern.MatchString(bank) {
		return "", fmt.Errorf("invalid bank code %q", bankCode)
	}

	length := defaultLength
	if l, ok := ibanLengths[code]; ok {
		length = l
	}

	fill := length - len(code) - 2 - len(bank)
	if fill < 0 {
		fill = 0
	}
	tail := randomDigits(fill)

	// Reduce the rotated candidate with zeroed check digits, then derive the
	// check digits that make the full rotated number reduce to 1.
	rem, _ := mod97(bank + tail + code + "00")
	check := (98 - rem) % 97

	return code + pad2(check) + bank + tail, nil
}

// Validate reports whether s is a well-formed account number with a correct
// mod-97 checksum.
func Validate(s string) bool {
	if len(s) < minLength || len(s) > maxLength {
		return false
	}
	if !prefixPattern.MatchString(s) {
		return false
	}
	rem, ok := mod97(s[4:] + s[:4])
	return ok && rem == 1
}

// mod97 reduces the numeral expansion of s modulo 97, mapping letters A-Z to
// the two-digit values 10-35. Reducing digit by digit keeps the arithmetic in
// int range regardless of input length. ok is false when s contains a
// character outside [0-9A-Z].
func mod97(s string) (rem int, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			rem = (rem*10 + v/10) % 97
			rem = (rem*10 + v%10) % 97
		default:
			return 0, false
		}
	}
	return rem, true
}

func pad2(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func randomDigits(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		d, _ := rand.Int(rand.Reader, big.NewInt(10))
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf)
}
