package quote

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// dateLayouts maps a base language to its numeric date layout.
var dateLayouts = map[string]string{
	"en": "01/02/2006",
	"es": "02/01/2006",
	"pt": "02/01/2006",
	"fr": "02/01/2006",
	"it": "02/01/2006",
	"de": "02.01.2006",
	"nl": "02-01-2006",
	"ja": "2006/01/02",
	"zh": "2006/01/02",
}

// FormatCurrency renders amount with locale digit grouping, prefixed by the ISO currency code.
func FormatCurrency(amount decimal.Decimal, currencyCode, lang string) string {
	code := strings.ToUpper(currencyCode)
	if unit, err := currency.ParseISO(currencyCode); err == nil {
		code = unit.String()
	}

	f, _ := amount.Round(2).Float64()
	p := message.NewPrinter(parseLanguage(lang))
	return p.Sprintf("%s %.2f", code, f)
}

// FormatDate renders t as a numeric date in the convention of lang. Unknown languages get ISO 8601.
func FormatDate(t time.Time, lang string) string {
	base, _ := parseLanguage(lang).Base()
	layout, ok := dateLayouts[base.String()]
	if !ok {
		layout = time.DateOnly
	}
	return t.Format(layout)
}

func parseLanguage(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}
