package constants

// Provider names the payroll vendor whose template produced a paystub.
type Provider string

const (
	ADP        Provider = "ADP"
	Paychex    Provider = "Paychex"
	Gusto      Provider = "Gusto"
	QuickBooks Provider = "QuickBooks"
	Workday    Provider = "Workday"
	Paycom     Provider = "Paycom"
	Generic    Provider = "Generic"
)
