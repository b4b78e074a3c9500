package wire

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"busyfeed/internal/model"
)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func testWindow() model.Window {
	return model.Window{
		StartDate:        model.CalendarDate{Year: 2025, Month: time.January, Day: 1},
		EndDateInclusive: model.CalendarDate{Year: 2025, Month: time.January, Day: 7},
		Start:            utc(2025, 1, 1, 5, 0),
		EndExclusive:     utc(2025, 1, 8, 5, 0),
	}
}

func TestRenderVFreeBusy(t *testing.T) {
	intervals := []model.Interval{
		{Start: utc(2025, 1, 6, 14, 0), End: utc(2025, 1, 6, 16, 0), Kind: model.KindTimed},
		{Start: utc(2025, 1, 7, 5, 0), End: utc(2025, 1, 8, 5, 0), Kind: model.KindAllDay},
	}

	out := Render(testWindow(), intervals, "busyfeed", utc(2025, 1, 1, 12, 0))

	require.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	require.Contains(t, out, "BEGIN:VFREEBUSY\r\n")
	require.Contains(t, out, "END:VFREEBUSY\r\n")
	require.Contains(t, out, "DTSTART:20250101T050000Z\r\n")
	require.Contains(t, out, "DTEND:20250108T050000Z\r\n")
	require.Contains(t, out, "DTSTAMP:20250101T120000Z\r\n")
	require.Contains(t, out, "FREEBUSY;FBTYPE=BUSY:20250106T140000Z/20250106T160000Z\r\n")
	require.Contains(t, out, "FREEBUSY;FBTYPE=BUSY:20250107T050000Z/20250108T050000Z\r\n")

	// Every line ends in CRLF; no bare LF anywhere in the document.
	require.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
}

func TestRenderDeterministic(t *testing.T) {
	now := utc(2025, 1, 1, 12, 0)
	a := Render(testWindow(), nil, "busyfeed", now)
	b := Render(testWindow(), nil, "busyfeed", now)
	require.Equal(t, a, b)
}

func TestNewReport(t *testing.T) {
	intervals := []model.Interval{
		{Start: utc(2025, 1, 6, 14, 0), End: utc(2025, 1, 6, 16, 0), Kind: model.KindTimed},
		{Start: utc(2025, 1, 7, 5, 0), End: utc(2025, 1, 8, 5, 0), Kind: model.KindAllDay},
	}

	r := NewReport(testWindow(), intervals)

	require.Equal(t, "2025-01-01", r.WindowStartDate)
	require.Equal(t, "2025-01-07", r.WindowEndDate)
	require.Equal(t, "2025-01-01T05:00:00Z", r.WindowStart)
	require.Equal(t, "2025-01-08T05:00:00Z", r.WindowEnd)
	require.Len(t, r.Busy, 2)
	require.Equal(t, "2025-01-06T14:00:00Z", r.Busy[0].Start)
	require.False(t, r.Busy[0].AllDay)
	require.True(t, r.Busy[1].AllDay)
}

func TestNewReportEmpty(t *testing.T) {
	r := NewReport(testWindow(), nil)
	require.NotNil(t, r.Busy)
	require.Empty(t, r.Busy)
}
