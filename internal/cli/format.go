package cli

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// formatCount renders "1,234 variants".
func formatCount(noun string, n int) string {
	return message.NewPrinter(language.English).Sprintf("%d %s", n, noun)
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
