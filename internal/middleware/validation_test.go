package middleware

import (
	"testing"
)

type amountForm struct {
	Amount string `validate:"required,amount"`
}

type rateForm struct {
	Rate string `validate:"omitempty,rate"`
}

func TestValidateAmountTag(t *testing.T) {
	valid := []string{"0.01", "50", "12345.6789"}
	for _, v := range valid {
		if errs := ValidateRequest(amountForm{Amount: v}); errs != nil {
			t.Errorf("amount %q rejected: %v", v, errs)
		}
	}

	invalid := []string{"0", "-5", "ten", "1,50", ""}
	for _, v := range invalid {
		errs := ValidateRequest(amountForm{Amount: v})
		if errs == nil {
			t.Errorf("amount %q accepted, want rejection", v)
		}
	}
}

func TestValidateRateTag(t *testing.T) {
	valid := []string{"", "0", "2.5", "3.75"}
	for _, v := range valid {
		if errs := ValidateRequest(rateForm{Rate: v}); errs != nil {
			t.Errorf("rate %q rejected: %v", v, errs)
		}
	}

	invalid := []string{"-0.5", "lots"}
	for _, v := range invalid {
		if errs := ValidateRequest(rateForm{Rate: v}); errs == nil {
			t.Errorf("rate %q accepted, want rejection", v)
		}
	}
}

func TestValidationMessages(t *testing.T) {
	errs := ValidateRequest(amountForm{Amount: "-1"})
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want one", errs)
	}
	if errs[0].Type != "amount" || errs[0].Message == "" {
		t.Errorf("error = %+v, want amount tag with a message", errs[0])
	}
}
