package swap

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// decimalPattern matches a plain non-negative decimal number such as "2.5" or "100".
// Signs, exponents and special float values are rejected up front so the conversion
// below never has to reason about them.
var decimalPattern = regexp.MustCompile(`^([0-9]+)(?:\.([0-9]+))?$`)

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// ToBaseUnits converts a human-readable decimal amount to integer base units for a
// token with the given decimal precision. Fractional digits beyond the precision are
// truncated toward zero, never rounded up, so the converted amount can never exceed
// what the user typed.
//
// This is the only place in the codebase where human amounts become base units;
// every other component works with the integer result.
func ToBaseUnits(human string, decimals uint8) (uint64, error) {
	human = strings.TrimSpace(human)
	if human == "" {
		return 0, errors.Wrap(ErrInvalidAmount, "empty amount")
	}
	if strings.HasPrefix(human, "-") {
		return 0, errors.Wrapf(ErrInvalidAmount, "negative amount %q", human)
	}

	matches := decimalPattern.FindStringSubmatch(human)
	if matches == nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "malformed amount %q", human)
	}

	intPart := matches[1]
	fracPart := matches[2]

	// Truncate the fraction to the token's precision, then right-pad to exactly
	// that many digits so the two parts concatenate into a base-unit integer.
	if len(fracPart) > int(decimals) {
		fracPart = fracPart[:decimals]
	}
	for len(fracPart) < int(decimals) {
		fracPart += "0"
	}

	base, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidAmount, "malformed amount %q", human)
	}
	if base.Cmp(maxUint64) > 0 {
		return 0, errors.Wrapf(ErrInvalidAmount, "amount %q exceeds 64-bit base units", human)
	}

	return base.Uint64(), nil
}

// FromBaseUnits converts integer base units back to a human-readable decimal string
// for a token with the given precision. Trailing fractional zeros are trimmed.
func FromBaseUnits(base uint64, decimals uint8) string {
	digits := new(big.Int).SetUint64(base).String()

	if decimals == 0 {
		return digits
	}

	for len(digits) <= int(decimals) {
		digits = "0" + digits
	}

	cut := len(digits) - int(decimals)
	intPart := digits[:cut]
	fracPart := strings.TrimRight(digits[cut:], "0")

	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}
