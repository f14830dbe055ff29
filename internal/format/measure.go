package format

import (
	"math"
	"strconv"
	"strings"
)

// FormatMillimetres renders a distance with one decimal and thousand
// separators, e.g. "1,234.5mm".
func FormatMillimetres(mm float64) string {
	return formatOneDecimal(mm) + "mm"
}

// FormatArea renders an area in square millimetres, e.g. "100.0mm²".
func FormatArea(mm2 float64) string {
	return formatOneDecimal(mm2) + "mm²"
}

func formatOneDecimal(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', 1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	return FormatNumberString(intPart) + "." + frac
}

// FormatNumberString inserts thousand separators into a string of digits,
// with an optional leading minus sign.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var b strings.Builder
	b.Grow(n + n/3)
	head := n % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return prefix + b.String()
}
