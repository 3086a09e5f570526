package sr

import (
	"fmt"
	"strings"
	"time"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
)

// ParseDateTime converts a DT value, including partial values such as
// "2020" or "202006151200" and an optional UTC offset, to a time.Time.
// Missing components default to their lowest value.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if !dicom.IsValidDateTime(value) || value == "" {
		return time.Time{}, fmt.Errorf("date/time %q: %w", value, srerrors.ErrInvalidValue)
	}
	zone := time.UTC
	if i := strings.IndexAny(value, "+-"); i >= 0 {
		offset, err := time.Parse("-0700", value[i:])
		if err != nil {
			return time.Time{}, fmt.Errorf("date/time %q: %w", value, srerrors.ErrInvalidValue)
		}
		zone = offset.Location()
		value = value[:i]
	}
	layout := "20060102150405"
	if len(value) < len(layout) {
		layout = layout[:len(value)]
	}
	if dot := strings.IndexByte(value, '.'); dot >= 0 {
		layout += "." + strings.Repeat("0", len(value)-dot-1)
	}
	t, err := time.ParseInLocation(layout, value, zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("date/time %q: %w", value, srerrors.ErrInvalidValue)
	}
	return t, nil
}

// dicomDateToXML converts YYYYMMDD to YYYY-MM-DD.
func dicomDateToXML(value string) string {
	if len(value) != 8 {
		return value
	}
	return value[0:4] + "-" + value[4:6] + "-" + value[6:8]
}

// dicomTimeToXML converts HHMMSS[.FFFFFF] to HH:MM:SS[.FFFFFF].
func dicomTimeToXML(value string) string {
	frac := ""
	if dot := strings.IndexByte(value, '.'); dot >= 0 {
		value, frac = value[:dot], value[dot:]
	}
	var parts []string
	for i := 0; i+2 <= len(value); i += 2 {
		parts = append(parts, value[i:i+2])
	}
	for len(parts) < 3 {
		parts = append(parts, "00")
	}
	return strings.Join(parts, ":") + frac
}

// dicomDateTimeToXML converts a DT value to an ISO 8601 string.
func dicomDateTimeToXML(value string) string {
	zone := ""
	if i := strings.IndexAny(value, "+-"); i >= 0 {
		value, zone = value[:i], value[i:]
		if len(zone) == 5 {
			zone = zone[:3] + ":" + zone[3:]
		}
	}
	if len(value) < 8 {
		return value + zone
	}
	out := dicomDateToXML(value[:8])
	if len(value) > 8 {
		out += "T" + dicomTimeToXML(value[8:])
	}
	return out + zone
}

func xmlDateToDICOM(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), "-", "")
}

func xmlTimeToDICOM(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), ":", "")
}

func xmlDateTimeToDICOM(value string) string {
	value = strings.TrimSpace(value)
	date, clock, found := strings.Cut(value, "T")
	zone := ""
	if found {
		if i := strings.IndexAny(clock, "+-Z"); i >= 0 {
			clock, zone = clock[:i], clock[i:]
		}
	} else if len(date) > 10 {
		date, zone = date[:10], date[10:]
	}
	if zone == "Z" {
		zone = "+0000"
	}
	return xmlDateToDICOM(date) + xmlTimeToDICOM(clock) + strings.ReplaceAll(zone, ":", "")
}

// readableDateTime formats a DT value as "YYYY-MM-DD HH:MM:SS" for
// printing, falling back to the raw value.
func readableDateTime(value string) string {
	t, err := ParseDateTime(value)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02 15:04:05")
}

func readableDate(value string) string {
	if t, err := time.Parse("20060102", value); err == nil {
		return t.Format("2006-01-02")
	}
	return value
}

func readableTime(value string) string {
	if len(value) >= 4 {
		return dicomTimeToXML(value)
	}
	return value
}
