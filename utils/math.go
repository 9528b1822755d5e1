package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds an amount to 2 decimal places for presentation
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// FormatMoney renders an amount the way the app shows it, e.g. "KES 15,000.00"
func FormatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(MoneyPlaces)
	sign := ""
	if fixed[0] == '-' {
		sign, fixed = "-", fixed[1:]
	}

	whole, frac := fixed[:len(fixed)-MoneyPlaces-1], fixed[len(fixed)-MoneyPlaces:]
	grouped := make([]byte, 0, len(whole)+len(whole)/3)
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, whole[i])
	}

	return "KES " + sign + string(grouped) + "." + frac
}

// AddMonths advances a date by n calendar months, clamping the day to the
// last day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(date time.Time, n int) time.Time {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location()).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()

	day := date.Day()
	if day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// MonthsBetween counts whole calendar months from start to end
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}
