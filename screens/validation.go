package screens

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount reads a money value typed with either a comma or a dot as the
// decimal separator ("10,50" == "10.50").
func ParseAmount(s string) (float64, bool) {
	normalised := strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	v, err := strconv.ParseFloat(normalised, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParsePositiveAmount is ParseAmount restricted to values above zero.
func ParsePositiveAmount(s string) (float64, bool) {
	v, ok := ParseAmount(s)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// ParsePositiveInt parses a whole number greater than zero.
func ParsePositiveInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseOptionalAmount returns nil for an empty field and false for garbage.
func parseOptionalAmount(s string) (*float64, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	v, ok := ParseAmount(s)
	if !ok {
		return nil, false
	}
	return &v, true
}

// parseOptionalInt returns nil for an empty field and false for garbage.
func parseOptionalInt(s string) (*int, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return &v, true
}

func anyEmpty(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}
