// Package wire renders normalized busy reports as iCalendar VFREEBUSY
// documents. The engine itself only produces structured instants; all
// textual formatting lives here.
package wire

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"busyfeed/internal/model"
)

const utcLayout = "20060102T150405Z"

// Render serializes a reporting window and its merged busy intervals as
// a VCALENDAR containing a single VFREEBUSY component. All instants are
// written as UTC with the explicit Z marker. now is caller-supplied so
// output stays deterministic under test.
func Render(win model.Window, intervals []model.Interval, service string, now time.Time) string {
	cal := ical.NewCalendarFor(service)
	cal.SetMethod(ical.MethodPublish)

	fb := &ical.VBusy{}
	fb.SetProperty(ical.ComponentPropertyUniqueId, fmt.Sprintf("%s-%s@%s", win.StartDate, win.EndDateInclusive, service))
	fb.SetProperty(ical.ComponentPropertyDtstamp, now.UTC().Format(utcLayout))
	fb.SetProperty(ical.ComponentPropertyDtStart, win.Start.UTC().Format(utcLayout))
	fb.SetProperty(ical.ComponentPropertyDtEnd, win.EndExclusive.UTC().Format(utcLayout))

	for _, iv := range intervals {
		fb.AddProperty(
			ical.ComponentPropertyFreebusy,
			fmt.Sprintf("%s/%s", iv.Start.UTC().Format(utcLayout), iv.End.UTC().Format(utcLayout)),
			&ical.KeyValues{Key: "FBTYPE", Value: []string{"BUSY"}},
		)
	}

	cal.Components = append(cal.Components, fb)
	return cal.Serialize(&ical.SerializationConfiguration{
		MaxLength: 75,
		NewLine:   "\r\n",
	})
}

// reportInterval is the JSON shape of one busy interval.
type reportInterval struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	AllDay bool   `json:"all_day"`
}

// Report is the JSON shape of a normalized busy report.
type Report struct {
	WindowStartDate string           `json:"window_start_date"`
	WindowEndDate   string           `json:"window_end_date"`
	WindowStart     string           `json:"window_start"`
	WindowEnd       string           `json:"window_end"`
	Busy            []reportInterval `json:"busy"`
}

// NewReport converts a window and merged intervals into the JSON view.
func NewReport(win model.Window, intervals []model.Interval) Report {
	r := Report{
		WindowStartDate: win.StartDate.String(),
		WindowEndDate:   win.EndDateInclusive.String(),
		WindowStart:     win.Start.UTC().Format(time.RFC3339),
		WindowEnd:       win.EndExclusive.UTC().Format(time.RFC3339),
		Busy:            make([]reportInterval, 0, len(intervals)),
	}
	for _, iv := range intervals {
		r.Busy = append(r.Busy, reportInterval{
			Start:  iv.Start.UTC().Format(time.RFC3339),
			End:    iv.End.UTC().Format(time.RFC3339),
			AllDay: iv.Kind == model.KindAllDay,
		})
	}
	return r
}
