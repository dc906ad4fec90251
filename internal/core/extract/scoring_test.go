package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
)

func TestInferFrequency(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		start, end string
		want       constants.PayFrequency
	}{
		{"bi-weekly is not weekly", "Pay Frequency: Bi-Weekly", "", "", constants.Biweekly},
		{"biweekly wins over dates", "paid biweekly", "2024-01-01", "2024-01-31", constants.Biweekly},
		{"weekly", "Paid weekly", "", "", constants.Weekly},
		{"semi-monthly is not monthly", "Semi-Monthly payroll", "", "", constants.SemiMonthly},
		{"monthly", "monthly salary", "", "", constants.Monthly},
		{"seven days", "", "2024-01-01", "2024-01-07", constants.Weekly},
		{"fourteen days from the 8th", "", "2024-01-08", "2024-01-21", constants.Biweekly},
		{"fourteen days from the 1st", "", "2024-01-01", "2024-01-14", constants.SemiMonthly},
		{"second half of month", "", "2024-01-16", "2024-01-31", constants.SemiMonthly},
		{"thirty-one days", "", "2024-01-01", "2024-01-31", constants.Monthly},
		{"ten days", "", "2024-01-01", "2024-01-10", constants.Unknown},
		{"end before start", "", "2024-01-15", "2024-01-01", constants.Unknown},
		{"unparsed dates", "", "Jan 1", "2024-01-15", constants.Unknown},
		{"nothing", "", "", "", constants.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferFrequency(tt.text, tt.start, tt.end))
		})
	}
}

func fullResult() *ExtractionResult {
	r := newResult()
	r.GrossPay = 237500
	r.NetPay = 159206
	r.PayPeriodStart = "2024-01-01"
	r.PayPeriodEnd = "2024-01-15"
	r.Employer.Name = "Acme"
	r.Employee.Name = "Jane"
	r.Earnings = append(r.Earnings, EarningItem{Description: "Regular", Amount: 237500})
	r.Deductions = append(r.Deductions, DeductionItem{Description: "Dental", Amount: 1250})
	return r
}

func TestScore(t *testing.T) {
	assert.GreaterOrEqual(t, Score(fullResult()), 0.9)

	r := fullResult()
	r.PayFrequency = constants.SemiMonthly
	assert.InDelta(t, 1.0, Score(r), 1e-9)

	onlyPay := newResult()
	onlyPay.GrossPay, onlyPay.NetPay = 100, 80
	s := Score(onlyPay)
	assert.GreaterOrEqual(t, s, 0.3)
	assert.LessOrEqual(t, s, 0.5)

	assert.LessOrEqual(t, Score(newResult()), 0.1)
	assert.Zero(t, Score(nil))

	oneDate := newResult()
	oneDate.PayPeriodStart = "2024-01-01"
	assert.Zero(t, Score(oneDate))

	taxesOnly := newResult()
	taxesOnly.Taxes = append(taxesOnly.Taxes, TaxItem{Description: "Medicare", Amount: 3806})
	assert.InDelta(t, 0.1, Score(taxesOnly), 1e-9)
}

func TestValidate(t *testing.T) {
	t.Run("swaps net above gross", func(t *testing.T) {
		r := newResult()
		r.GrossPay, r.NetPay = 100000, 200000
		Validate(r)
		assert.Equal(t, normalize.Money(200000), r.GrossPay)
		assert.Equal(t, normalize.Money(100000), r.NetPay)
	})
	t.Run("no swap when one side is missing", func(t *testing.T) {
		r := newResult()
		r.NetPay = 200000
		Validate(r)
		assert.Zero(t, r.GrossPay)
		assert.Equal(t, normalize.Money(200000), r.NetPay)
	})
	t.Run("repairs OCR dates", func(t *testing.T) {
		r := newResult()
		r.PayPeriodStart = "O1/O1/2024"
		r.PayPeriodEnd = "2024-01-15"
		r.PayDate = "not a date"
		assert.True(t, Validate(r))
		assert.Equal(t, "2024-01-01", r.PayPeriodStart)
		assert.Equal(t, "2024-01-15", r.PayPeriodEnd)
		assert.Equal(t, "not a date", r.PayDate)
	})
	t.Run("clean dates untouched", func(t *testing.T) {
		r := fullResult()
		assert.False(t, Validate(r))
	})
}
