package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestReadCSVToDataFrame_KeepsRawStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.csv")
	writeFile(t, path, []byte("ride_id,started_at,TAVG\n"+
		"A1,2022-01-01 00:04:16,NA\n"+
		"A2,2022-01-01 09:00:00,\n"+
		"007,2022-01-02 10:00:00,3.5\n"))

	df, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ride_id", "started_at", "TAVG"}, df.Names())
	assert.Equal(t, 3, df.Nrow())
	// 不做类型推断: 前导零和NA原样保留
	assert.Equal(t, []string{"A1", "A2", "007"}, df.Col("ride_id").Records())
	assert.Equal(t, []string{"NA", "", "3.5"}, df.Col("TAVG").Records())
}

func TestReadCSVToDataFrame_StripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	writeFile(t, path, append([]byte("\xef\xbb\xbf"), []byte("date,temp\n2022-01-01,1\n")...))

	df, err := Load(path, Options{Encoding: "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "temp"}, df.Names())
}

func TestReadCSVToDataFrame_Windows1252(t *testing.T) {
	raw := "start_station_name,date\nCaf\xe9 Plaza,2022-01-01\n"
	path := filepath.Join(t.TempDir(), "latin.csv")
	writeFile(t, path, []byte(raw))

	df, err := Load(path, Options{Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Café Plaza"}, df.Col("start_station_name").Records())

	// 同样的字节按utf-8读取不会得到 é
	encoded, err := charmap.Windows1252.NewEncoder().String("Café Plaza")
	require.NoError(t, err)
	assert.Equal(t, "Caf\xe9 Plaza", encoded)
}

func TestReadCSVToDataFrame_TSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.tsv")
	writeFile(t, path, []byte("date\ttemp\n2022-01-01\t4\n"))

	df, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, df.Col("temp").Records())
}

func TestReadCSVToDataFrame_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	writeFile(t, path, []byte("ride_id,started_at,temperature\n"))

	df, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ride_id", "started_at", "temperature"}, df.Names())
	assert.Equal(t, 0, df.Nrow())
	assert.Empty(t, df.Col("started_at").Records())
}

func TestReadCSVToDataFrame_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.csv")
	writeFile(t, path, nil)

	_, err := Load(path, Options{})
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "x.csv")
	writeFile(t, path, []byte("a\n1\n"))
	_, err = Load(path, Options{Encoding: "klingon"})
	assert.Error(t, err)
}

func TestReadXLSXToDataFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "trips"))
	rows := [][]interface{}{
		{"ride_id", "started_at", "temperature"},
		{"r1", "2022-01-01 08:00:00", 10.5},
		{"r2", "2022-01-02 09:30:00"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("trips", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	df, err := Load(path, Options{SheetName: "trips"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ride_id", "started_at", "temperature"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"10.5", ""}, df.Col("temperature").Records())

	_, err = Load(path, Options{SheetName: "missing"})
	assert.Error(t, err)

	_, err = Load(path, Options{HeaderRow: 10})
	assert.Error(t, err)
}

func TestFileMonitor_FiresAfterWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "merged.csv")
	writeFile(t, target, []byte("date\n"))

	monitor, err := NewFileMonitor(target, 50*time.Millisecond)
	require.NoError(t, err)
	defer monitor.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan string, 4)
	go func() {
		_ = monitor.Watch(ctx, func(p string) { fired <- p })
	}()

	// 其它文件的变化不触发
	writeFile(t, filepath.Join(dir, "other.csv"), []byte("x\n"))
	time.Sleep(100 * time.Millisecond)
	writeFile(t, target, []byte("date\n2022-01-01\n"))

	select {
	case p := <-fired:
		assert.Equal(t, filepath.Base(target), filepath.Base(p))
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not fire")
	}
}
