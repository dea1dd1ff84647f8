package dashboard

import (
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders timestamps and numbers for a viewer locale.
type Formatter struct {
	Location *time.Location
}

var mondayLocales = map[string]monday.Locale{
	"es":    monday.LocaleEsES,
	"es-es": monday.LocaleEsES,
	"en":    monday.LocaleEnUS,
	"en-us": monday.LocaleEnUS,
	"en-gb": monday.LocaleEnGB,
	"pt":    monday.LocalePtPT,
	"pt-br": monday.LocalePtBR,
	"fr":    monday.LocaleFrFR,
}

var dateLayouts = map[monday.Locale]string{
	monday.LocaleEnUS: "Jan 2, 2006, 3:04:05 PM",
}

const defaultDateLayout = "2 Jan 2006, 15:04:05"

// Timestamp formats t in the formatter location using the locale month names.
func (f Formatter) Timestamp(t time.Time, locale string) string {
	if t.IsZero() {
		return ""
	}
	if f.Location != nil {
		t = t.In(f.Location)
	}
	var loc monday.Locale = monday.LocaleEsES
	for _, candidate := range localeCandidates(locale) {
		if match, ok := mondayLocales[candidate]; ok {
			loc = match
			break
		}
	}
	layout, ok := dateLayouts[loc]
	if !ok {
		layout = defaultDateLayout
	}
	return monday.Format(t, layout, loc)
}

// Decimal formats v with one decimal place and locale separators.
func (f Formatter) Decimal(v float64, locale string) string {
	return printerFor(locale).Sprintf("%.1f", v)
}

// Integer formats n with locale digit grouping.
func (f Formatter) Integer(n int, locale string) string {
	return printerFor(locale).Sprintf("%d", n)
}

func printerFor(locale string) *message.Printer {
	tag, err := language.Parse(normalizeLocale(locale))
	if err != nil {
		tag = language.Spanish
	}
	return message.NewPrinter(tag)
}
