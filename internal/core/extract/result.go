package extract

import (
	"encoding/json"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
)

// ExtractionResult is the structured record produced for one document. It is
// created per call and filled in place by each stage.
type ExtractionResult struct {
	GrossPay        normalize.Money            `json:"gross_pay"`
	NetPay          normalize.Money            `json:"net_pay"`
	PayPeriodStart  string                     `json:"pay_period_start,omitempty"`
	PayPeriodEnd    string                     `json:"pay_period_end,omitempty"`
	PayDate         string                     `json:"pay_date,omitempty"`
	PayFrequency    constants.PayFrequency     `json:"pay_frequency"`
	Employer        EmployerInfo               `json:"employer"`
	Employee        EmployeeInfo               `json:"employee"`
	Earnings        []EarningItem              `json:"earnings"`
	Deductions      []DeductionItem            `json:"deductions"`
	Taxes           []TaxItem                  `json:"taxes"`
	YTD             map[string]normalize.Money `json:"ytd,omitempty"`
	ConfidenceScore float64                    `json:"confidence_score"`
	Provider        constants.Provider         `json:"provider,omitempty"`

	// RawText is kept for diagnostics and never serialized.
	RawText string `json:"-"`
}

type EmployerInfo struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	EIN     string `json:"ein,omitempty"`
}

type EmployeeInfo struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id,omitempty"`
	SSNLast4   string `json:"ssn_last4,omitempty"`
}

type EarningItem struct {
	Description string          `json:"description"`
	Hours       *float64        `json:"hours,omitempty"`
	Rate        *float64        `json:"rate,omitempty"`
	Amount      normalize.Money `json:"amount"`
}

type DeductionItem struct {
	Description string          `json:"description"`
	Amount      normalize.Money `json:"amount"`
	PreTax      bool            `json:"pre_tax"`
}

type TaxItem struct {
	Description string          `json:"description"`
	Amount      normalize.Money `json:"amount"`
}

func newResult() *ExtractionResult {
	return &ExtractionResult{
		PayFrequency: constants.Unknown,
		Provider:     constants.Generic,
		Earnings:     []EarningItem{},
		Deductions:   []DeductionItem{},
		Taxes:        []TaxItem{},
	}
}

// MarshalJSON keeps the item lists as arrays even on a zero-value result.
func (r ExtractionResult) MarshalJSON() ([]byte, error) {
	type plain ExtractionResult
	p := plain(r)
	if p.Earnings == nil {
		p.Earnings = []EarningItem{}
	}
	if p.Deductions == nil {
		p.Deductions = []DeductionItem{}
	}
	if p.Taxes == nil {
		p.Taxes = []TaxItem{}
	}
	if p.PayFrequency == "" {
		p.PayFrequency = constants.Unknown
	}
	return json.Marshal(p)
}

// TotalDeductions sums deduction items.
func (r *ExtractionResult) TotalDeductions() normalize.Money {
	var sum normalize.Money
	for _, d := range r.Deductions {
		sum += d.Amount
	}
	return sum
}

// TotalTaxes sums tax items.
func (r *ExtractionResult) TotalTaxes() normalize.Money {
	var sum normalize.Money
	for _, t := range r.Taxes {
		sum += t.Amount
	}
	return sum
}
