package dformat

import (
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/datawire/dworld/dlocale"
)

// A Style selects how a NumberFormatter renders its input.
type Style int

const (
	// Decimal renders plain decimal numbers with locale-appropriate grouping: "1,234.5".
	Decimal Style = iota
	// Percent multiplies by 100 and appends the locale's percent sign: "25%".
	Percent
)

func (s Style) String() string {
	switch s {
	case Decimal:
		return "decimal"
	case Percent:
		return "percent"
	default:
		return "invalid"
	}
}

// A NumberFormatter renders numbers the way a given locale writes them.
type NumberFormatter struct {
	Locale dlocale.Locale
	Style  Style

	// Zero means "whatever the locale and style default to".
	MinFractionDigits int
	MaxFractionDigits int
}

func (f NumberFormatter) options() []number.Option {
	var opts []number.Option
	if f.MinFractionDigits > 0 {
		opts = append(opts, number.MinFractionDigits(f.MinFractionDigits))
	}
	if f.MaxFractionDigits > 0 {
		opts = append(opts, number.MaxFractionDigits(f.MaxFractionDigits))
	}
	return opts
}

// Format renders v, which must be one of Go's integer or floating-point types.
func (f NumberFormatter) Format(v interface{}) string {
	printer := message.NewPrinter(f.Locale.Tag())
	switch f.Style {
	case Percent:
		return printer.Sprintf("%v", number.Percent(v, f.options()...))
	default:
		return printer.Sprintf("%v", number.Decimal(v, f.options()...))
	}
}

// LiveNumberFormatter returns a producer of NumberFormatters: each call starts from a Decimal
// formatter for the environment's locale and passes it through settings (which may be nil).
func LiveNumberFormatter(settings func(NumberFormatter) NumberFormatter) func() NumberFormatter {
	return func() NumberFormatter {
		f := NumberFormatter{Locale: dlocale.LiveLocale(), Style: Decimal}
		if settings != nil {
			f = settings(f)
		}
		return f
	}
}

// MockNumberFormatter is the NumberFormatter that a mock World starts with: Decimal, for the mock
// locale.
func MockNumberFormatter() NumberFormatter {
	return NumberFormatter{Locale: dlocale.MockLocale(), Style: Decimal}
}
