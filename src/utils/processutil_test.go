package utils

import (
	"math"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2022-01-01 00:04:16", time.Date(2022, 1, 1, 0, 4, 16, 0, time.UTC)},
		{"2022-01-01 00:04:16.250", time.Date(2022, 1, 1, 0, 4, 16, 250000000, time.UTC)},
		{"2022-01-01T23:59:59", time.Date(2022, 1, 1, 23, 59, 59, 0, time.UTC)},
		{"2022-03-05", time.Date(2022, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2022/03/05 08:00", time.Date(2022, 3, 5, 8, 0, 0, 0, time.UTC)},
		{"3/5/2022 8:15", time.Date(2022, 3, 5, 8, 15, 0, 0, time.UTC)},
		{"  2022-03-05  ", time.Date(2022, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"44562", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"44562.5", time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseTime(c.in)
		require.NoError(t, err, c.in)
		assert.True(t, c.want.Equal(got), "%q: want %v got %v", c.in, c.want, got)
	}
}

func TestParseTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "NaN", "NaT", "yesterday", "2022-13-40", "-5"} {
		_, err := ParseTime(in)
		assert.ErrorIs(t, err, ErrUnparseableTime, in)
	}
}

func TestFloorDayKeepsWallClock(t *testing.T) {
	got, err := ParseTime("2022-01-01T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2022-01-01", FloorDay(got))
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 12.5, ParseFloat(" 12.5 "))
	assert.Equal(t, -3.0, ParseFloat("-3"))
	assert.True(t, math.IsNaN(ParseFloat("")))
	assert.True(t, math.IsNaN(ParseFloat("warm")))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "15.0", FormatFloat(15))
	assert.Equal(t, "12.25", FormatFloat(12.25))
	assert.Equal(t, "-0.5", FormatFloat(-0.5))
	assert.Equal(t, "", FormatFloat(math.NaN()))
}

func TestHasColumn(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"a"}, series.String, "ride_id"),
		series.New([]string{"b"}, series.String, "started_at"),
	)
	assert.True(t, HasColumn(df, "started_at"))
	assert.False(t, HasColumn(df, "Started_At"))
	assert.True(t, Contains([]int{1, 2, 3}, 2))
	assert.False(t, Contains([]string{}, "x"))
}
