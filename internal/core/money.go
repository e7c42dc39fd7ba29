// Package core holds the domain model of the finance tracker.
//
// This file contains the exact-arithmetic money type and the parsing
// helpers used to read monetary amounts from user input. All monetary
// math happens in integer kopecks; floats appear only in display
// percentages.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a signed monetary amount in kopecks.
// Positive amounts are income, negative amounts are expenses.
type Money struct {
	Kopecks int64
}

// FromRubles builds a Money value from whole rubles.
func FromRubles(rubles int64) Money {
	return Money{Kopecks: rubles * 100}
}

// Rubles returns the ruble value as a float64 for display purposes.
// Use kopecks for calculations to avoid floating-point drift.
func (m Money) Rubles() float64 {
	return float64(m.Kopecks) / 100.0
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Kopecks: m.Kopecks + other.Kopecks}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Kopecks: m.Kopecks - other.Kopecks}
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Kopecks: -m.Kopecks}
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m.Kopecks < 0 {
		return Money{Kopecks: -m.Kopecks}
	}
	return m
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Kopecks == 0
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Kopecks < 0
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.Kopecks > other.Kopecks
}

// DivRound divides the amount by n, rounding half-up to the kopeck.
// Non-positive divisors return zero; the zero-divisor steady states
// (zero days left, no months to deadline) are expected, not errors.
func (m Money) DivRound(n int64) Money {
	if n <= 0 {
		return Money{}
	}
	k := m.Kopecks
	neg := k < 0
	if neg {
		k = -k
	}
	q := (k + n/2) / n
	if neg {
		q = -q
	}
	return Money{Kopecks: q}
}

// String formats the amount as rubles with two decimals, e.g. "1234.50".
func (m Money) String() string {
	k := m.Kopecks
	sign := ""
	if k < 0 {
		sign = "-"
		k = -k
	}
	return fmt.Sprintf("%s%d.%02d", sign, k/100, k%100)
}

// ParseAmount converts a decimal string to a positive Money value.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. Signs are not
// accepted: the transaction type decides the sign, not the input.
// Returns ErrInvalidAmount for malformed, negative, or zero input.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		frac = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			frac += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	kopecks := iv*100 + frac
	if kopecks <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Kopecks: kopecks}, nil
}
