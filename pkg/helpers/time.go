package helpers

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ISOLayout is UTC with millisecond precision, e.g. 2025-01-01T00:00:00.000Z.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatISO renders t in UTC using ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// FormatDate renders a calendar date for humans, e.g. January 2, 2006.
func FormatDate(t time.Time) string {
	return t.UTC().Format("January 2, 2006")
}

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders an amount as US dollars with grouping and two decimals.
func FormatUSD(amount float64) string {
	return usPrinter.Sprintf("$%.2f", amount)
}
