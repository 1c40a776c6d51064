package storage

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func dailyFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"2022-01-01", "2022-01-02"}, series.String, "date"),
		series.New([]int{2, 1}, series.Int, "bike_rides_daily"),
		series.New([]float64{15, math.NaN()}, series.Float, "temperature"),
	)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "daily.csv")
	require.NoError(t, WriteCSV(path, dailyFrame()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,bike_rides_daily,temperature\n2022-01-01,2,15.0\n2022-01-02,1,\n", string(data))

	// 没有遗留临时文件
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteCSV_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer\n"), 0o644))
	require.NoError(t, WriteCSV(path, dailyFrame()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestWriteCSV_FrameError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.csv")
	bad := dailyFrame().Select([]string{"missing"})
	require.Error(t, WriteCSV(path, bad))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteCSV_MissingStringsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reduced.csv")
	df := dataframe.New(
		series.New([]string{"r1", "r2"}, series.String, "ride_id"),
		series.New([]string{"NaN", "member"}, series.String, "member_casual"),
	)
	require.True(t, df.Col("member_casual").Elem(0).IsNA())
	require.NoError(t, WriteCSV(path, df))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ride_id,member_casual\nr1,\nr2,member\n", string(data))
	assert.Equal(t, "", CellString(df.Col("member_casual"), 0))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.xlsx")
	require.NoError(t, WriteXLSX(path, "daily", dailyFrame()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("daily")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "bike_rides_daily", "temperature"}, rows[0])
	assert.Equal(t, []string{"2022-01-01", "2", "15"}, rows[1])
	// NaN单元格留空, GetRows会去掉行尾空单元格
	assert.Equal(t, []string{"2022-01-02", "1"}, rows[2])
}

func TestWriteManifest(t *testing.T) {
	type manifest struct {
		RunID string `yaml:"run_id"`
		Rows  int    `yaml:"rows"`
	}
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, WriteManifest(path, manifest{RunID: "abc", Rows: 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got manifest
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, manifest{RunID: "abc", Rows: 3}, got)
}
