package processor

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("date,bike_rides_daily,temperature\n")
	for d := 12; d >= 1; d-- {
		fmt.Fprintf(&b, "2022-01-%02d,%d,%d.5\n", d, 100+d, d)
	}
	path := writeInput(t, dir, "daily.csv", b.String())

	var out bytes.Buffer
	require.NoError(t, Inspect(path, &out))
	text := out.String()

	assert.Contains(t, text, "[date bike_rides_daily temperature]")
	assert.Contains(t, text, "min/max date: 2022-01-01 00:00:00 2022-01-12 00:00:00")
	assert.Contains(t, text, "bike_rides_daily stats:")
	assert.Contains(t, text, "2022-01-12")
}

func TestInspect_WithoutDailyColumns(t *testing.T) {
	path := writeInput(t, t.TempDir(), "other.csv", "a,b\n1,2\n")
	var out bytes.Buffer
	require.NoError(t, Inspect(path, &out))
	assert.Contains(t, out.String(), "[a b]")
	assert.NotContains(t, out.String(), "min/max date")
	assert.NotContains(t, out.String(), "stats:")
}

func TestInspect_Missing(t *testing.T) {
	err := Inspect(filepath.Join(t.TempDir(), "nope.csv"), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestDateRange(t *testing.T) {
	lo, hi, ok := dateRange([]string{"2022-03-02", "bad", "2021-12-31", ""})
	require.True(t, ok)
	assert.Equal(t, "2021-12-31 00:00:00", lo)
	assert.Equal(t, "2022-03-02 00:00:00", hi)

	_, _, ok = dateRange([]string{"x"})
	assert.False(t, ok)
}
