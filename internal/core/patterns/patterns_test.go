package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/paystubs/constants"
)

func TestDefaultLibraryBuilds(t *testing.T) {
	lib := DefaultLibrary()
	assert.Equal(t, []constants.Provider{
		constants.ADP, constants.Paychex, constants.Gusto,
		constants.QuickBooks, constants.Workday, constants.Paycom,
	}, lib.Providers())

	adp := lib.Provider(constants.ADP)
	generic := lib.Provider(constants.Generic)
	require.NotEmpty(t, generic.Patterns)
	// vendor patterns come first, then the generic set
	assert.Equal(t, "adp_gross_pay", adp.Patterns[0].Name)
	assert.Equal(t, generic.Patterns[len(generic.Patterns)-1].Name, adp.Patterns[len(adp.Patterns)-1].Name)
}

func TestBuilderRejectsBadPatterns(t *testing.T) {
	_, err := NewBuilder().
		Pattern(constants.Generic, "broken", FieldGrossPay, 0.5, `(unclosed`).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	_, err = NewBuilder().
		Pattern(constants.Generic, "heavy", FieldGrossPay, 1.5, `gross`).
		Build()
	require.Error(t, err)
}

func TestDetect(t *testing.T) {
	lib := DefaultLibrary()
	tests := []struct {
		name string
		text string
		want constants.Provider
	}{
		{"adp by name", "ADP Earnings Statement\nGross Pay 100.00", constants.ADP},
		{"gusto by domain", "Questions? Visit gusto.com", constants.Gusto},
		{"intuit maps to quickbooks", "Powered by Intuit Payroll", constants.QuickBooks},
		{"workday", "Printed from MyWorkday", constants.Workday},
		{"generic", "Acme Corp pay statement", constants.Generic},
		{"first registered vendor wins", "Paychex Flex import from ADP", constants.ADP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lib.Detect(tt.text))
		})
	}
}

func TestMatchUnknownProviderFallsBackToGeneric(t *testing.T) {
	lib := DefaultLibrary()
	set := lib.Match("Gross Pay: $2,375.00\nNet Pay: $1,592.06", constants.Provider("Nope"))
	m, ok := set.Best(FieldGrossPay)
	require.True(t, ok)
	assert.Equal(t, "2,375.00", m.First(1))

	m, ok = set.Best(FieldNetPay)
	require.True(t, ok)
	assert.Equal(t, "1,592.06", m.First(1))
}

func TestBestPrefersConfidenceThenOrder(t *testing.T) {
	lib := NewBuilder().
		Pattern(constants.Generic, "loose", FieldGrossPay, 0.5, `(?i)gross\D*([\d.,]+)`).
		Pattern(constants.Generic, "first_tie", FieldNetPay, 0.7, `(?i)net\D*([\d.,]+)`).
		Pattern(constants.Generic, "second_tie", FieldNetPay, 0.7, `(?i)take home\D*([\d.,]+)`).
		Pattern(constants.Generic, "strict", FieldGrossPay, 0.9, `(?i)total gross\D*([\d.,]+)`).
		MustBuild()

	set := lib.Match("Total Gross 10.00\nNet 8.00\nTake home 7.00", constants.Generic)
	assert.Equal(t, 4, set.Len())

	gross, ok := set.Best(FieldGrossPay)
	require.True(t, ok)
	assert.Equal(t, "strict", gross.Pattern.Name)

	net, ok := set.Best(FieldNetPay)
	require.True(t, ok)
	assert.Equal(t, "first_tie", net.Pattern.Name)

	_, ok = set.Best(FieldEIN)
	assert.False(t, ok)

	names := []string{}
	for _, m := range set.All() {
		names = append(names, m.Pattern.Name)
	}
	assert.Equal(t, []string{"loose", "first_tie", "second_tie", "strict"}, names)
	assert.Len(t, set.ByField(FieldNetPay), 2)
}

func TestGenericPatterns(t *testing.T) {
	lib := DefaultLibrary()
	text := "Employer: Acme Widgets LLC\n" +
		"Employee Name: Jane Q Public\n" +
		"Employee ID: E-10442\n" +
		"SSN: XXX-XX-6789\n" +
		"EIN: 12-3456789\n" +
		"Pay Period: 01/01/2024 - 01/15/2024\n" +
		"Pay Date: 01/19/2024\n" +
		"Pay Frequency: Bi-Weekly\n"
	set := lib.Match(text, constants.Generic)

	tests := []struct {
		field FieldType
		group int
		want  string
	}{
		{FieldEmployerName, 1, "Acme Widgets LLC"},
		{FieldEmployeeName, 1, "Jane Q Public"},
		{FieldEmployeeID, 1, "E-10442"},
		{FieldSSNLast4, 1, "6789"},
		{FieldEIN, 1, "12-3456789"},
		{FieldDateRange, 1, "01/01/2024"},
		{FieldDateRange, 2, "01/15/2024"},
		{FieldPayDate, 1, "01/19/2024"},
		{FieldFrequency, 1, "Bi-Weekly"},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			m, ok := set.Best(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.First(tt.group))
		})
	}
}

func TestVendorPatterns(t *testing.T) {
	lib := DefaultLibrary()
	text := "ADP Earnings Statement\n" +
		"Period Beginning: 01/01/2024\n" +
		"Period Ending: 01/14/2024\n" +
		"Pay Date: 01/19/2024\n" +
		"Gross Pay $2,000.00\n"
	provider := lib.Detect(text)
	require.Equal(t, constants.ADP, provider)
	set := lib.Match(text, provider)

	start, ok := set.Best(FieldPeriodStart)
	require.True(t, ok)
	assert.Equal(t, "adp_period_beginning", start.Pattern.Name)
	assert.Equal(t, "01/01/2024", start.First(1))

	gross, ok := set.Best(FieldGrossPay)
	require.True(t, ok)
	assert.Equal(t, "adp_gross_pay", gross.Pattern.Name)
	assert.InDelta(t, 0.9, gross.Confidence, 1e-9)
}
