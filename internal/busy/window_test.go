package busy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"busyfeed/internal/model"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestBuildWindowOneWeek(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	win, err := BuildWindow(1, now, ny)
	require.NoError(t, err)

	require.Equal(t, model.CalendarDate{Year: 2025, Month: time.January, Day: 1}, win.StartDate)
	require.Equal(t, model.CalendarDate{Year: 2025, Month: time.January, Day: 7}, win.EndDateInclusive)
	require.Equal(t, time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC), win.Start)
	require.Equal(t, time.Date(2025, 1, 8, 5, 0, 0, 0, time.UTC), win.EndExclusive)
}

func TestBuildWindowTodayInOwnerZone(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	// 03:00Z on Jan 2 is still Jan 1 evening in New York.
	now := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)

	win, err := BuildWindow(1, now, ny)
	require.NoError(t, err)
	require.Equal(t, model.CalendarDate{Year: 2025, Month: time.January, Day: 1}, win.StartDate)
}

func TestBuildWindowSpansDSTTransition(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	// Window covering the 2025-03-09 spring-forward: one local week is
	// an hour short in UTC.
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

	win, err := BuildWindow(1, now, ny)
	require.NoError(t, err)
	require.Equal(t, 7*24*time.Hour-time.Hour, win.EndExclusive.Sub(win.Start))
}

func TestBuildWindowWeeksBounds(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_, err := BuildWindow(0, now, ny)
	require.Error(t, err)

	_, err = BuildWindow(105, now, ny)
	require.Error(t, err)

	win, err := BuildWindow(104, now, ny)
	require.NoError(t, err)
	require.True(t, win.Start.Before(win.EndExclusive))
}

func TestBuildWindowRequiresOwnerZone(t *testing.T) {
	_, err := BuildWindow(1, time.Now(), nil)
	require.Error(t, err)
}
