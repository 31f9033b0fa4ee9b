package clustering

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatComponents renders a component vector the way the trace visualizer
// expects it: "[1.0, 2.5, 1.0E10]".
func FormatComponents(c []float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range c {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatComponent(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

// formatComponent uses plain decimal notation with at least one fractional
// digit for magnitudes in [1e-3, 1e7), and d.dddE±n notation otherwise.
func formatComponent(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(v)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(v, 'E', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mantissa + "E" + strconv.Itoa(e)
}

// ParseComponents is the inverse of FormatComponents.
func ParseComponents(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("clustering: component vector %q is not bracketed", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return []float64{}, nil
	}
	fields := strings.Split(body, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("clustering: component %d of %q: %w", i, s, err)
		}
		out[i] = v
	}
	return out, nil
}
