package discord

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// formatPrice renders a coin amount with thousands separators
func formatPrice(amount int64) string {
	return pricePrinter.Sprintf("%d", amount)
}

// discordTimestamp converts an RFC3339 time string into a Discord relative
// timestamp marker. Returns false if the string does not parse.
func discordTimestamp(rfc3339 string) (string, bool) {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return "", false
	}
	return relativeTimestamp(t), true
}

// relativeTimestamp renders a Discord relative timestamp marker for t
func relativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}
