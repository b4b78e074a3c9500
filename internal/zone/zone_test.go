package zone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"busyfeed/internal/model"
)

func TestLoad(t *testing.T) {
	loc, err := Load("America/New_York")
	require.NoError(t, err)
	require.NotNil(t, loc)

	_, err = Load("Not/AZone")
	require.ErrorIs(t, err, ErrInvalidZone)

	_, err = Load("")
	require.ErrorIs(t, err, ErrInvalidZone)
}

func TestLocalToInstantDSTSensitivity(t *testing.T) {
	ny, err := Load("America/New_York")
	require.NoError(t, err)

	// New York springs forward on 2025-03-09. Identical wall-clock
	// fields on either side map to instants one hour apart in offset.
	before := LocalToInstant(model.CalendarDate{Year: 2025, Month: time.March, Day: 8}, 12, 0, 0, ny)
	after := LocalToInstant(model.CalendarDate{Year: 2025, Month: time.March, Day: 10}, 12, 0, 0, ny)

	require.Equal(t, time.Date(2025, 3, 8, 17, 0, 0, 0, time.UTC), before)
	require.Equal(t, time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC), after)
}

func TestLocalMidnightRoundTrip(t *testing.T) {
	ny, err := Load("America/New_York")
	require.NoError(t, err)

	dates := []model.CalendarDate{
		{Year: 2025, Month: time.January, Day: 1},
		{Year: 2025, Month: time.March, Day: 9},    // spring forward
		{Year: 2025, Month: time.November, Day: 2}, // fall back
		{Year: 2025, Month: time.December, Day: 31},
	}
	for _, d := range dates {
		instant := Midnight(d, ny)
		require.Equal(t, d, model.DateOf(instant, ny), d.String())
	}
}

func TestGapResolutionIsDeterministic(t *testing.T) {
	ny, err := Load("America/New_York")
	require.NoError(t, err)

	// 02:30 on 2025-03-09 does not exist in New York. The conversion
	// must still yield a stable instant on that calendar day.
	d := model.CalendarDate{Year: 2025, Month: time.March, Day: 9}
	got := LocalToInstant(d, 2, 30, 0, ny)
	again := LocalToInstant(d, 2, 30, 0, ny)
	require.Equal(t, got, again)
	require.Equal(t, d, model.DateOf(got, ny))
}

func TestFixedOffsetToInstant(t *testing.T) {
	d := model.CalendarDate{Year: 2025, Month: time.January, Day: 6}

	got := FixedOffsetToInstant(d, 9, 0, 0, 1, 5, 30)
	require.Equal(t, time.Date(2025, 1, 6, 3, 30, 0, 0, time.UTC), got)

	got = FixedOffsetToInstant(d, 9, 0, 0, -1, 5, 0)
	require.Equal(t, time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC), got)
}

func TestAddDaysCrossesMonthAndYear(t *testing.T) {
	d := model.CalendarDate{Year: 2025, Month: time.December, Day: 30}
	require.Equal(t, model.CalendarDate{Year: 2026, Month: time.January, Day: 3}, d.AddDays(4))

	require.Equal(t, model.CalendarDate{Year: 2025, Month: time.December, Day: 28}, d.AddDays(-2))

	// Leap day.
	d = model.CalendarDate{Year: 2024, Month: time.February, Day: 28}
	require.Equal(t, model.CalendarDate{Year: 2024, Month: time.February, Day: 29}, d.AddDays(1))
}
