package activity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Weekday values as stored by the backend (accent-free).
const (
	Monday    = "Lunes"
	Tuesday   = "Martes"
	Wednesday = "Miercoles"
	Thursday  = "Jueves"
	Friday    = "Viernes"
	Saturday  = "Sabado"
	Sunday    = "Domingo"
)

// Weekdays lists every weekday in calendar order.
var Weekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Activity is a scheduled class with time, capacity, and descriptive metadata.
// Activities are owned by the backend; this app only holds transient snapshots.
// JSON names follow the backend's wire format.
type Activity struct {
	ID          int    `json:"id_actividad"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Instructor  string `json:"instructor"`
	Category    string `json:"categoria"`
	Weekday     string `json:"dia"`         // one of Weekdays
	StartTime   string `json:"hora_inicio"` // HH:MM
	EndTime     string `json:"hora_fin"`    // HH:MM
	Capacity    int    `json:"cupo"`
	Remaining   int    `json:"lugares"` // computed by the backend
	PhotoURL    string `json:"foto_url"`
}

// IsWeekday reports whether day names a weekday, ignoring case and accents.
func IsWeekday(day string) bool {
	day = StripAccents(day)
	for _, d := range Weekdays {
		if strings.EqualFold(d, day) {
			return true
		}
	}
	return false
}

// StripAccents removes combining marks, e.g. "Miércoles" becomes "Miercoles".
// PRE: none
// POST: Returns s in NFC form without diacritics; s is returned unchanged on transform failure
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
