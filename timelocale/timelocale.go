// Package timelocale renders a UTC instant as wall-clock text for each of
// the bot's supported languages. It is pure: every function is total for the
// supported locales, and an unsupported locale is a programming error.
package timelocale

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Locale identifies one of the supported notification languages.
type Locale string

const (
	English    Locale = "en"
	Portuguese Locale = "pt"
	Spanish    Locale = "es"
)

// Locales lists the supported locales in display order.
var Locales = []Locale{English, Portuguese, Spanish}

var zoneNames = map[Locale]string{
	English:    "UTC",
	Portuguese: "Europe/Lisbon",
	Spanish:    "Europe/Madrid",
}

var zones = make(map[Locale]*time.Location, len(zoneNames))

func init() {
	for locale, name := range zoneNames {
		zone, err := time.LoadLocation(name)
		if err != nil {
			panic(fmt.Sprintf("timelocale: load %v: %v", name, err))
		}
		zones[locale] = zone
	}
}

var weekdaysPT = [7]string{
	"domingo",
	"segunda-feira",
	"terça-feira",
	"quarta-feira",
	"quinta-feira",
	"sexta-feira",
	"sábado",
}

var monthsPT = [13]string{
	"",
	"janeiro",
	"fevereiro",
	"março",
	"abril",
	"maio",
	"junho",
	"julho",
	"agosto",
	"setembro",
	"outubro",
	"novembro",
	"dezembro",
}

var weekdaysES = [7]string{
	"domingo",
	"lunes",
	"martes",
	"miércoles",
	"jueves",
	"viernes",
	"sábado",
}

var monthsES = [13]string{
	"",
	"enero",
	"febrero",
	"marzo",
	"abril",
	"mayo",
	"junio",
	"julio",
	"agosto",
	"septiembre",
	"octubre",
	"noviembre",
	"diciembre",
}

// Render converts the given instant into every supported locale's wall-clock
// representation.
func Render(t time.Time) map[Locale]string {
	rendered := make(map[Locale]string, len(Locales))
	for _, locale := range Locales {
		rendered[locale] = Format(locale, t)
	}
	return rendered
}

// Format renders the instant in a single locale's timezone and date
// conventions.
func Format(locale Locale, t time.Time) string {
	local := t.In(zone(locale))

	switch locale {
	case English:
		return local.Format("Monday, January 2 at 15:04") + " GMT"
	case Portuguese:
		return fmt.Sprintf(
			"%v, %v de %v às %v",
			weekdaysPT[local.Weekday()],
			local.Day(),
			monthsPT[local.Month()],
			local.Format("15:04"),
		)
	case Spanish:
		return fmt.Sprintf(
			"%v, %v de %v a las %v",
			weekdaysES[local.Weekday()],
			local.Day(),
			monthsES[local.Month()],
			local.Format("15:04"),
		)
	}

	panic(fmt.Sprintf("timelocale: unsupported locale %q", locale))
}

// Label returns the flag and language name shown next to a locale's time.
func Label(locale Locale) string {
	switch locale {
	case English:
		return "🇺🇸 English (GMT)"
	case Portuguese:
		return "🇵🇹 Português"
	case Spanish:
		return "🇪🇸 Español"
	}

	panic(fmt.Sprintf("timelocale: unsupported locale %q", locale))
}

func zone(locale Locale) *time.Location {
	z, ok := zones[locale]
	if !ok {
		panic(fmt.Sprintf("timelocale: unsupported locale %q", locale))
	}
	return z
}
