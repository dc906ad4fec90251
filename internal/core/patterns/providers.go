package patterns

import (
	"strings"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
)

// Expression fragments shared by the default patterns. Money captures the
// amount without the currency sign; date captures one of normalize.DateExpr.
const (
	money  = `\$?\s*((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?)\b`
	sep    = `\s*[:\-]?\s*`
	rangeT = `\s*(?:-|–|—|to|through|thru)\s*`
)

var date = "(" + normalize.DateExpr + ")"

// expr expands {money}, {date}, {sep} and {to} placeholders.
func expr(s string) string {
	return strings.NewReplacer(
		"{money}", money,
		"{date}", date,
		"{sep}", sep,
		"{to}", rangeT,
	).Replace(s)
}

// DefaultLibrary builds the vendor and generic pattern sets. Vendor order is
// the classifier's iteration order.
func DefaultLibrary() *Library {
	b := NewBuilder()
	registerVendors(b)
	registerGeneric(b)
	return b.MustBuild()
}

func registerVendors(b *Builder) {
	b.Vendor(constants.ADP, "adp", "adp.com", "automatic data processing", "workforce now")
	b.Pattern(constants.ADP, "adp_gross_pay", FieldGrossPay, 0.9, expr(`(?i)\bgross\s+pay\s+{money}`)).
		Pattern(constants.ADP, "adp_net_pay", FieldNetPay, 0.9, expr(`(?i)\bnet\s+pay\s+{money}`)).
		Pattern(constants.ADP, "adp_net_check", FieldNetPay, 0.85, expr(`(?i)\bnet\s+check{sep}{money}`)).
		Pattern(constants.ADP, "adp_period_beginning", FieldPeriodStart, 0.95, expr(`(?i)period\s+beginning{sep}{date}`)).
		Pattern(constants.ADP, "adp_period_ending", FieldPeriodEnd, 0.95, expr(`(?i)period\s+ending{sep}{date}`)).
		Pattern(constants.ADP, "adp_pay_date", FieldPayDate, 0.9, expr(`(?i)\bpay\s+date{sep}{date}`)).
		Pattern(constants.ADP, "adp_federal_income_tax", FieldTax, 0.9, expr(`(?i)federal\s+income\s+tax\s+-?{money}`)).
		Pattern(constants.ADP, "adp_social_security_tax", FieldTax, 0.9, expr(`(?i)social\s+security\s+tax\s+-?{money}`)).
		Pattern(constants.ADP, "adp_medicare_tax", FieldTax, 0.9, expr(`(?i)medicare\s+tax\s+-?{money}`)).
		Pattern(constants.ADP, "adp_file_number", FieldEmployeeID, 0.85, `(?i)file\s*(?:#|no\.?|number)\s*:?\s*(\d{3,})`)

	b.Vendor(constants.Paychex, "paychex", "paychex.com", "paychex flex")
	b.Pattern(constants.Paychex, "paychex_gross_earnings", FieldGrossPay, 0.9, expr(`(?i)(?:total\s+)?gross\s+earnings{sep}{money}`)).
		Pattern(constants.Paychex, "paychex_net_pay", FieldNetPay, 0.9, expr(`(?i)\bnet\s+pay{sep}{money}`)).
		Pattern(constants.Paychex, "paychex_check_date", FieldPayDate, 0.9, expr(`(?i)check\s+date{sep}{date}`)).
		Pattern(constants.Paychex, "paychex_period_start", FieldPeriodStart, 0.9, expr(`(?i)period\s+start(?:\s+date)?{sep}{date}`)).
		Pattern(constants.Paychex, "paychex_period_end", FieldPeriodEnd, 0.9, expr(`(?i)period\s+end(?:\s+date)?{sep}{date}`)).
		Pattern(constants.Paychex, "paychex_fed_income_tax", FieldTax, 0.9, expr(`(?i)fed(?:eral)?\s+income\s+tax{sep}-?{money}`)).
		Pattern(constants.Paychex, "paychex_employee_number", FieldEmployeeID, 0.9, `(?i)employee\s+(?:number|no\.?)\s*:?\s*(\d{3,})`)

	b.Vendor(constants.Gusto, "gusto", "gusto.com", "zenpayroll")
	b.Pattern(constants.Gusto, "gusto_pay_period", FieldDateRange, 0.95, expr(`(?i)pay\s+period{sep}{date}{to}{date}`)).
		Pattern(constants.Gusto, "gusto_pay_day", FieldPayDate, 0.9, expr(`(?i)pay\s*day{sep}{date}`)).
		Pattern(constants.Gusto, "gusto_gross_earnings", FieldGrossPay, 0.9, expr(`(?i)gross\s+earnings{sep}{money}`)).
		Pattern(constants.Gusto, "gusto_net_pay", FieldNetPay, 0.9, expr(`(?i)\bnet\s+pay{sep}{money}`)).
		Pattern(constants.Gusto, "gusto_employee_taxes", FieldTax, 0.85, expr(`(?i)employee\s+taxes{sep}{money}`))

	b.Vendor(constants.QuickBooks, "quickbooks", "intuit", "intuit.com")
	b.Pattern(constants.QuickBooks, "qb_total_pay", FieldGrossPay, 0.85, expr(`(?i)total\s+pay{sep}{money}`)).
		Pattern(constants.QuickBooks, "qb_net_pay", FieldNetPay, 0.9, expr(`(?i)\bnet\s+pay{sep}{money}`)).
		Pattern(constants.QuickBooks, "qb_pay_period", FieldDateRange, 0.9, expr(`(?i)pay\s+period{sep}{date}{to}{date}`)).
		Pattern(constants.QuickBooks, "qb_pay_date", FieldPayDate, 0.9, expr(`(?i)\bpay\s+date{sep}{date}`))

	b.Vendor(constants.Workday, "workday", "myworkday", "workday.com")
	b.Pattern(constants.Workday, "workday_period_start", FieldPeriodStart, 0.95, expr(`(?i)period\s+start\s+date{sep}{date}`)).
		Pattern(constants.Workday, "workday_period_end", FieldPeriodEnd, 0.95, expr(`(?i)period\s+end\s+date{sep}{date}`)).
		Pattern(constants.Workday, "workday_check_date", FieldPayDate, 0.9, expr(`(?i)check\s+date{sep}{date}`)).
		Pattern(constants.Workday, "workday_gross_pay", FieldGrossPay, 0.9, expr(`(?i)\bgross\s+pay{sep}{money}`)).
		Pattern(constants.Workday, "workday_net_pay", FieldNetPay, 0.9, expr(`(?i)\bnet\s+pay{sep}{money}`)).
		Pattern(constants.Workday, "workday_employee_id", FieldEmployeeID, 0.9, `(?i)employee\s+id\s*:?\s*(\d{4,})`)

	b.Vendor(constants.Paycom, "paycom", "paycom.com", "paycomonline")
	b.Pattern(constants.Paycom, "paycom_gross_wages", FieldGrossPay, 0.9, expr(`(?i)gross\s+wages{sep}{money}`)).
		Pattern(constants.Paycom, "paycom_net_pay", FieldNetPay, 0.9, expr(`(?i)\bnet\s+pay{sep}{money}`)).
		Pattern(constants.Paycom, "paycom_check_date", FieldPayDate, 0.9, expr(`(?i)check\s+date{sep}{date}`)).
		Pattern(constants.Paycom, "paycom_period_start", FieldPeriodStart, 0.9, expr(`(?i)period\s+start{sep}{date}`)).
		Pattern(constants.Paycom, "paycom_period_end", FieldPeriodEnd, 0.9, expr(`(?i)period\s+end{sep}{date}`))
}

func registerGeneric(b *Builder) {
	g := constants.Generic
	b.Pattern(g, "total_gross", FieldGrossPay, 0.75, expr(`(?i)total\s+gross(?:\s+pay)?{sep}{money}`)).
		Pattern(g, "gross_pay", FieldGrossPay, 0.7, expr(`(?i)\bgross(?:\s+(?:pay|earnings|wages|amount))?{sep}{money}`)).
		Pattern(g, "net_pay", FieldNetPay, 0.7, expr(`(?i)\bnet\s*(?:pay|amount|check|wages){sep}{money}`)).
		Pattern(g, "take_home", FieldNetPay, 0.6, expr(`(?i)take[\s-]*home(?:\s+pay)?{sep}{money}`)).
		Pattern(g, "pay_period", FieldDateRange, 0.8, expr(`(?i)(?:pay\s*)?period(?:\s+(?:dates?|covered))?{sep}{date}{to}{date}`)).
		Pattern(g, "period_start", FieldPeriodStart, 0.7, expr(`(?i)period\s*(?:begin(?:ning|s)?|start(?:ing|s)?|from)(?:\s+date)?{sep}{date}`)).
		Pattern(g, "period_end", FieldPeriodEnd, 0.7, expr(`(?i)period\s*(?:end(?:ing|s)?|through|thru)(?:\s+date)?{sep}{date}`)).
		Pattern(g, "pay_date", FieldPayDate, 0.75, expr(`(?i)(?:pay|check|payment|deposit|advice)\s*date{sep}{date}`)).
		Pattern(g, "ytd_gross", FieldYTDGross, 0.6, expr(`(?i)(?:ytd\s+gross|gross\s+ytd|year[\s-]to[\s-]date\s+gross)(?:\s+pay)?{sep}{money}`)).
		Pattern(g, "ytd_net", FieldYTDNet, 0.6, expr(`(?i)(?:ytd\s+net|net\s+ytd|year[\s-]to[\s-]date\s+net)(?:\s+pay)?{sep}{money}`)).
		Pattern(g, "employee_id", FieldEmployeeID, 0.7, `(?i)(?:employee|emp\.?)\s*(?:id|#|no\.?|number)\s*[:#\-]?\s*([a-z0-9][a-z0-9\-]{2,})`).
		Pattern(g, "employer_name", FieldEmployerName, 0.7, `(?im)^[ \t]*(?:employer|company)(?:[ \t]+name)?[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`).
		Pattern(g, "employee_name", FieldEmployeeName, 0.7, `(?im)^[ \t]*(?:employee(?:[ \t]+name)?|name)[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`).
		Pattern(g, "ssn_last4", FieldSSNLast4, 0.8, `(?i)(?:ssn|social\s+security\s+(?:no\.?|number|#))\s*[:#]?\s*(?:[x*]{3}|\d{3})[\s\-]?(?:[x*]{2}|\d{2})[\s\-]?(\d{4})\b`).
		Pattern(g, "ein", FieldEIN, 0.8, `(?i)\b(?:f?ein|federal\s+(?:tax\s+)?id|employer\s+id(?:entification)?(?:\s+(?:no\.?|number))?)\s*[:#]?\s*(\d{2}-?\d{7})\b`).
		Pattern(g, "federal_tax", FieldTax, 0.6, expr(`(?i)fed(?:eral)?\s+(?:income\s+)?(?:tax|withholding){sep}-?{money}`)).
		Pattern(g, "fica_tax", FieldTax, 0.6, expr(`(?i)(?:social\s+security|fica|oasdi)(?:\s+tax)?{sep}-?{money}`)).
		Pattern(g, "medicare_tax", FieldTax, 0.6, expr(`(?i)medicare(?:\s+tax)?{sep}-?{money}`)).
		Pattern(g, "state_tax", FieldTax, 0.55, expr(`(?i)state\s+(?:income\s+)?(?:tax|withholding){sep}-?{money}`)).
		Pattern(g, "retirement", FieldRetirement, 0.6, expr(`(?i)(?:401\s*\(?k\)?|403\s*\(?b\)?|retirement){sep}-?{money}`)).
		Pattern(g, "health_benefit", FieldBenefit, 0.55, expr(`(?i)(?:medical|dental|vision|health)(?:\s+(?:insurance|ins\.?|plan))?{sep}-?{money}`)).
		Pattern(g, "pay_frequency", FieldFrequency, 0.7, `(?i)(?:pay\s+)?frequency\s*[:\-]?\s*(bi-?weekly|weekly|semi-?monthly|monthly)`)
}
