package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies are charged by the provider in whole units.
var zeroDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

// CurrencyExponent returns the number of minor-unit digits for an ISO currency code.
func CurrencyExponent(currency string) int32 {
	if _, ok := zeroDecimalCurrencies[strings.ToLower(strings.TrimSpace(currency))]; ok {
		return 0
	}
	return 2
}

// MinorToMajor converts a provider minor-unit amount (e.g. cents) to major units.
func MinorToMajor(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -CurrencyExponent(currency))
}

// MajorToMinor converts a major-unit amount to provider minor units, rounding half away from zero.
func MajorToMinor(major decimal.Decimal, currency string) int64 {
	return major.Shift(CurrencyExponent(currency)).Round(0).IntPart()
}
