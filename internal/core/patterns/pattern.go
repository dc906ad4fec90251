// Package patterns holds the provider-aware regular-expression library used to
// pull paystub fields out of text, the keyword classifier that picks a
// provider, and the matching engine that resolves the best match per field.
//
// A Library is immutable once built and is safe for concurrent use.
package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/paystubs/constants"
)

// FieldType is the semantic category a pattern captures.
type FieldType string

const (
	FieldGrossPay     FieldType = "gross_pay"
	FieldNetPay       FieldType = "net_pay"
	FieldTax          FieldType = "tax"
	FieldBenefit      FieldType = "benefit"
	FieldRetirement   FieldType = "retirement"
	FieldDateRange    FieldType = "date_range"
	FieldPeriodStart  FieldType = "period_start"
	FieldPeriodEnd    FieldType = "period_end"
	FieldPayDate      FieldType = "pay_date"
	FieldYTDGross     FieldType = "ytd_gross"
	FieldYTDNet       FieldType = "ytd_net"
	FieldEmployeeID   FieldType = "employee_id"
	FieldEmployerName FieldType = "employer_name"
	FieldEmployeeName FieldType = "employee_name"
	FieldSSNLast4     FieldType = "ssn_last4"
	FieldEIN          FieldType = "ein"
	FieldFrequency    FieldType = "frequency"
)

// Pattern is a named regular expression with the field it captures and a
// fixed weight reflecting how specific and unambiguous it is.
type Pattern struct {
	Name       string
	Regex      *regexp.Regexp
	Field      FieldType
	Confidence float64
}

// Provider is a payroll vendor: classifier keywords plus its ordered patterns.
type Provider struct {
	Name     constants.Provider
	Keywords []string
	Patterns []Pattern
}

// Library is the immutable set of providers. Build one with NewBuilder or
// DefaultLibrary at startup and share it.
type Library struct {
	providers []Provider // classifier order, Generic excluded
	byName    map[constants.Provider]*Provider
	generic   *Provider
}

// Builder assembles a Library. Patterns are compiled as they are added so a
// bad expression fails at startup, not per document.
type Builder struct {
	order   []constants.Provider
	vendors map[constants.Provider]*Provider
	generic Provider
	errs    []string
}

func NewBuilder() *Builder {
	return &Builder{
		vendors: make(map[constants.Provider]*Provider),
		generic: Provider{Name: constants.Generic},
	}
}

// Vendor registers (or extends) a vendor. Registration order is the
// classifier's iteration order.
func (b *Builder) Vendor(name constants.Provider, keywords ...string) *Builder {
	if name == constants.Generic {
		return b
	}
	p, ok := b.vendors[name]
	if !ok {
		p = &Provider{Name: name}
		b.vendors[name] = p
		b.order = append(b.order, name)
	}
	for _, k := range keywords {
		p.Keywords = append(p.Keywords, strings.ToLower(k))
	}
	return b
}

// Pattern adds a pattern to a vendor, or to the generic set when provider is
// constants.Generic.
func (b *Builder) Pattern(provider constants.Provider, name string, field FieldType, confidence float64, expr string) *Builder {
	re, err := regexp.Compile(expr)
	if err != nil {
		b.errs = append(b.errs, fmt.Sprintf("%s/%s: %v", provider, name, err))
		return b
	}
	if confidence < 0 || confidence > 1 {
		b.errs = append(b.errs, fmt.Sprintf("%s/%s: confidence %.2f out of range", provider, name, confidence))
		return b
	}
	pat := Pattern{Name: name, Regex: re, Field: field, Confidence: confidence}
	if provider == constants.Generic {
		b.generic.Patterns = append(b.generic.Patterns, pat)
		return b
	}
	b.Vendor(provider)
	b.vendors[provider].Patterns = append(b.vendors[provider].Patterns, pat)
	return b
}

// Build freezes the library. Every vendor's pattern list is its own patterns
// followed by the generic ones, so a vendor document still gets generic coverage.
func (b *Builder) Build() (*Library, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("invalid patterns: %s", strings.Join(b.errs, "; "))
	}
	lib := &Library{
		byName: make(map[constants.Provider]*Provider, len(b.order)+1),
	}
	generic := Provider{
		Name:     constants.Generic,
		Patterns: append([]Pattern(nil), b.generic.Patterns...),
	}
	lib.generic = &generic
	lib.byName[constants.Generic] = lib.generic

	lib.providers = make([]Provider, 0, len(b.order))
	for _, name := range b.order {
		v := b.vendors[name]
		pats := make([]Pattern, 0, len(v.Patterns)+len(generic.Patterns))
		pats = append(pats, v.Patterns...)
		pats = append(pats, generic.Patterns...)
		lib.providers = append(lib.providers, Provider{
			Name:     v.Name,
			Keywords: append([]string(nil), v.Keywords...),
			Patterns: pats,
		})
	}
	for i := range lib.providers {
		lib.byName[lib.providers[i].Name] = &lib.providers[i]
	}
	return lib, nil
}

// MustBuild is Build for package-level defaults and tests.
func (b *Builder) MustBuild() *Library {
	lib, err := b.Build()
	if err != nil {
		panic(err)
	}
	return lib
}

// Provider returns the named provider, falling back to Generic when unknown.
func (l *Library) Provider(name constants.Provider) *Provider {
	if p, ok := l.byName[name]; ok {
		return p
	}
	return l.generic
}

// Providers lists vendor names in classifier order.
func (l *Library) Providers() []constants.Provider {
	out := make([]constants.Provider, 0, len(l.providers))
	for _, p := range l.providers {
		out = append(out, p.Name)
	}
	return out
}
