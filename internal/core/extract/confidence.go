package extract

import (
	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
)

// Presence weights out of 100.
const (
	weightGross      = 20
	weightNet        = 20
	weightPeriod     = 15
	weightEmployer   = 10
	weightEmployee   = 10
	weightEarnings   = 10
	weightDeductions = 10
	weightFrequency  = 5
)

// Score is the weighted completeness of r in [0, 1].
func Score(r *ExtractionResult) float64 {
	if r == nil {
		return 0
	}
	total := 0
	if r.GrossPay != 0 {
		total += weightGross
	}
	if r.NetPay != 0 {
		total += weightNet
	}
	if r.PayPeriodStart != "" && r.PayPeriodEnd != "" {
		total += weightPeriod
	}
	if r.Employer.Name != "" {
		total += weightEmployer
	}
	if r.Employee.Name != "" {
		total += weightEmployee
	}
	if len(r.Earnings) > 0 {
		total += weightEarnings
	}
	if len(r.Deductions) > 0 || len(r.Taxes) > 0 {
		total += weightDeductions
	}
	if r.PayFrequency.Resolved() {
		total += weightFrequency
	}
	return float64(total) / 100
}

// Validate applies sanity corrections in place and reports whether any dates
// were repaired.
func Validate(r *ExtractionResult) (datesRepaired bool) {
	if r.GrossPay != 0 && r.NetPay != 0 && r.NetPay > r.GrossPay {
		r.GrossPay, r.NetPay = r.NetPay, r.GrossPay
	}
	for _, d := range []*string{&r.PayPeriodStart, &r.PayPeriodEnd, &r.PayDate} {
		if *d == "" || normalize.IsISODate(*d) {
			continue
		}
		if fixed := normalize.RepairOCRDate(*d); fixed != *d {
			*d = fixed
			datesRepaired = true
		}
	}
	return datesRepaired
}
