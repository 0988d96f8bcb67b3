package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
)

// AmountString renders a base-unit amount as whole units with thousands separators,
// e.g. "50,000.25 PCR".
func AmountString(amount *uint256.Int, decimals uint8, symbol string) string {
	unit := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	whole, frac := new(uint256.Int).DivMod(amount, unit, new(uint256.Int))

	res := humanize.BigComma(whole.ToBig())
	if !frac.IsZero() {
		digits := frac.Dec()
		digits = strings.Repeat("0", int(decimals)-len(digits)) + digits
		res += "." + strings.TrimRight(digits, "0")
	}
	if symbol != "" {
		res += " " + symbol
	}
	return res
}

func RateString(rate uint64, accuracy uint64) string {
	return fmt.Sprintf("%v%%", humanize.Ftoa(float64(rate)*100/float64(accuracy)))
}

func DurationString(seconds uint64) string {
	return fmt.Sprintf("%v sec", humanize.Comma(int64(seconds)))
}

func UnixTimeString(unix uint64) string {
	if unix == 0 {
		return "never"
	}
	return humanize.Time(time.Unix(int64(unix), 0))
}
