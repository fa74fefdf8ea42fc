package i18n

import (
	"strconv"
	"time"
)

type unit struct {
	threshold int64
	suffix    string
}

// Abbreviation units per language, largest first.
var numberUnits = map[Language][]unit{
	Chinese: {{10000, "万"}, {1000, "千"}},
	English: {{1000000, "M"}, {1000, "K"}},
}

// FormatNumber abbreviates large counters for the active language with one
// decimal place, e.g. 1500 is "1.5千" in Chinese and "1.5K" in English.
// Halves round up, so 1250 is "1.3K".
func (r *Runtime) FormatNumber(n int64) string {
	for _, u := range numberUnits[r.Language()] {
		if n >= u.threshold {
			tenths := (n*10 + u.threshold/2) / u.threshold
			return strconv.FormatInt(tenths/10, 10) + "." + strconv.FormatInt(tenths%10, 10) + u.suffix
		}
	}
	return strconv.FormatInt(n, 10)
}

var dateLayouts = map[Language]string{
	Chinese: "2006/1/2 15:04:05",
	English: "1/2/2006 3:04:05 PM",
}

// Server timestamps without a zone are read in the runtime's location.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// A bare date is midnight UTC.
const dateOnly = "2006-01-02"

// FormatDate renders an ISO-8601 timestamp in the runtime's location using the
// active language's layout. Input that does not parse is returned unchanged.
func (r *Runtime) FormatDate(iso string) string {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		t, err = r.parseZoneless(iso)
		if err != nil {
			return iso
		}
	}

	layout, ok := dateLayouts[r.Language()]
	if !ok {
		layout = dateLayouts[English]
	}
	return t.In(r.loc).Format(layout)
}

func (r *Runtime) parseZoneless(iso string) (time.Time, error) {
	t, err := time.Parse(dateOnly, iso)
	if err == nil {
		return t, nil
	}
	for _, layout := range isoLayouts {
		if t, err = time.ParseInLocation(layout, iso, r.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
