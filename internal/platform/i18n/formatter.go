package i18n

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Formatter renders amounts as locale-specific currency strings. The
// separators and prefix come from the Definition, never from the process
// environment, so one request can safely format for its own locale.
type Formatter struct {
	def        Definition
	permissive bool
}

// FormatterOption customises construction of a Formatter.
type FormatterOption func(*Formatter)

// WithPermissiveMode makes the formatter render invalid amounts as an empty
// string instead of failing. Intended for development environments only.
func WithPermissiveMode() FormatterOption {
	return func(f *Formatter) {
		f.permissive = true
	}
}

// NewFormatter builds a Formatter for the supplied locale definition.
func NewFormatter(def Definition, opts ...FormatterOption) *Formatter {
	f := &Formatter{def: def}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Definition exposes the locale this formatter renders for.
func (f *Formatter) Definition() Definition {
	return f.def
}

// Format renders the amount with the locale's prefix, grouping, and decimal
// conventions. Non-finite input is ErrInvalidAmount unless permissive mode
// is enabled, in which case it renders as "".
func (f *Formatter) Format(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		if f.permissive {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	rendered := strconv.FormatFloat(amount, 'f', f.def.Digits, 64)

	intPart := rendered
	fracPart := ""
	if idx := strings.IndexByte(rendered, '.'); idx >= 0 {
		intPart, fracPart = rendered[:idx], rendered[idx+1:]
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(f.def.Prefix)
	b.WriteString(groupThousands(intPart, f.def.ThousandSeparator))
	if fracPart != "" {
		b.WriteString(f.def.DecimalSeparator)
		b.WriteString(fracPart)
	}

	out := b.String()
	if f.def.PostFormat != nil {
		out = f.def.PostFormat(out)
	}
	return out, nil
}

// groupThousands inserts the separator every three digits from the right.
func groupThousands(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
