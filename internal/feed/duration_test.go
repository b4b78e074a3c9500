package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"PT1H30M", 90 * time.Minute},
		{"P1DT1H", 25 * time.Hour},
		{"P2D", 48 * time.Hour},
		{"PT15M", 15 * time.Minute},
		{"PT30S", 30 * time.Second},
		{"PT45M", 45 * time.Minute},
		{"PT1H30S", time.Hour + 30*time.Second},
		{"P1DT30M", 24*time.Hour + 30*time.Minute},
		{"P1DT30S", 24*time.Hour + 30*time.Second},
		{"P", 0},
		{"PT", 0},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseDurationMilliseconds(t *testing.T) {
	// The two reference values from the wire grammar.
	d, err := ParseDuration("PT1H30M")
	require.NoError(t, err)
	require.EqualValues(t, 5_400_000, d.Milliseconds())

	d, err = ParseDuration("P1DT1H")
	require.NoError(t, err)
	require.EqualValues(t, 90_000_000, d.Milliseconds())
}

func TestParseDurationRejects(t *testing.T) {
	for _, in := range []string{"", "1H", "P1W", "P1DT1X", "PT1H2", "PTH", "P1D2H"} {
		_, err := ParseDuration(in)
		require.Error(t, err, in)
	}
}

func TestParseDurationClampsAt366Days(t *testing.T) {
	d, err := ParseDuration("P4000D")
	require.NoError(t, err)
	require.Equal(t, maxDuration, d)

	d, err = ParseDuration("P365DT999999999H")
	require.NoError(t, err)
	require.Equal(t, maxDuration, d)

	// Just under the cap stays exact.
	d, err = ParseDuration("P365D")
	require.NoError(t, err)
	require.Equal(t, 365*24*time.Hour, d)
}
