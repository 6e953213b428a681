package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Locale holds the display names for weekdays and months.
// Labels are for display only; classification always uses time.Weekday.
type Locale struct {
	Code     string
	weekdays [7]string  // indexed by time.Weekday
	months   [12]string // January first
}

var (
	// English is the default locale
	English = Locale{
		Code: "en",
		weekdays: [7]string{
			"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
		},
		months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
	}

	// Ukrainian matches the labels of the paper timesheet
	Ukrainian = Locale{
		Code: "uk",
		weekdays: [7]string{
			"Неділя", "Понеділок", "Вівторок", "Середа", "Четвер", "П’ятниця", "Субота",
		},
		months: [12]string{
			"Січень", "Лютий", "Березень", "Квітень", "Травень", "Червень",
			"Липень", "Серпень", "Вересень", "Жовтень", "Листопад", "Грудень",
		},
	}
)

// LocaleByCode returns the locale for "en" or "uk" (case-insensitive)
func LocaleByCode(code string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", "en":
		return English, nil
	case "uk", "ua":
		return Ukrainian, nil
	default:
		return Locale{}, fmt.Errorf("unknown locale %q (supported: en, uk)", code)
	}
}

// Weekday returns the display name of the weekday
func (l Locale) Weekday(d time.Weekday) string {
	return l.weekdays[d]
}

// Month returns the display name of the month
func (l Locale) Month(m time.Month) string {
	return l.months[m-1]
}
