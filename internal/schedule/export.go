/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

var icalDays = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// ICalExport contains the iCal export data.
type ICalExport struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ExportICal renders the weekly lineup as an iCalendar feed of weekly
// recurring events anchored in the week starting at weekOf. Malformed entries
// and shows without a positive window are left out.
func ExportICal(stationName string, shows Schedule, weekOf time.Time) *ICalExport {
	loc := weekOf.Location()
	y, m, d := weekOf.Date()
	weekStart := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:-//HOTMESS Radio//Schedule Export//EN\r\n")
	buf.WriteString(fmt.Sprintf("X-WR-CALNAME:%s Schedule\r\n", escapeICalText(stationName)))
	buf.WriteString(fmt.Sprintf("X-WR-TIMEZONE:%s\r\n", loc.String()))
	buf.WriteString("CALSCALE:GREGORIAN\r\n")
	buf.WriteString("METHOD:PUBLISH\r\n")

	stamp := formatICalTime(time.Now())
	for i := range shows {
		sl, err := compile(&shows[i], i)
		if err != nil || sl.end <= sl.start {
			continue
		}

		var byDay []string
		first := -1
		for offset := 0; offset < 7; offset++ {
			day := weekStart.AddDate(0, 0, offset).Weekday()
			if sl.days[day] {
				byDay = append(byDay, icalDays[day])
				if first < 0 {
					first = offset
				}
			}
		}
		date := weekStart.AddDate(0, 0, first)

		buf.WriteString("BEGIN:VEVENT\r\n")
		buf.WriteString(fmt.Sprintf("UID:%s-%d@hotmess\r\n", slugify(sl.show.Title), i))
		buf.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))
		buf.WriteString(fmt.Sprintf("DTSTART;TZID=%s:%s\r\n", loc.String(), formatICalLocal(At(date, sl.start))))
		buf.WriteString(fmt.Sprintf("DTEND;TZID=%s:%s\r\n", loc.String(), formatICalLocal(At(date, sl.end))))
		buf.WriteString(fmt.Sprintf("RRULE:FREQ=WEEKLY;BYDAY=%s\r\n", strings.Join(byDay, ",")))
		buf.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICalText(sl.show.Title)))
		if sl.show.Host != "" {
			buf.WriteString(fmt.Sprintf("DESCRIPTION:Hosted by %s\r\n", escapeICalText(sl.show.Host)))
		}
		buf.WriteString("END:VEVENT\r\n")
	}

	buf.WriteString("END:VCALENDAR\r\n")

	return &ICalExport{
		Data:        buf.Bytes(),
		Filename:    fmt.Sprintf("%s-schedule-%s.ics", slugify(stationName), weekStart.Format("2006-01-02")),
		ContentType: "text/calendar; charset=utf-8",
	}
}

func formatICalTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func formatICalLocal(t time.Time) string {
	return t.Format("20060102T150405")
}

func escapeICalText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
