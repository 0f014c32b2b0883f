package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMoney renders minor units as "1 234.50 CZK".
func FormatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	major, minor := amount/100, amount%100
	out := fmt.Sprintf("%s%s.%02d", sign, formatThousand(major), minor)
	if currency != "" {
		out += " " + currency
	}
	return out
}

func formatThousand(n int64) string {
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(' ')
		}
		out.WriteRune(c)
	}
	return out.String()
}
