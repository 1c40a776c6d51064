package processor

import (
	"os"
	"path/filepath"
	"testing"

	"CitibikeDashboard/src/config"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"
)

func defaultCandidates() ColumnCandidates {
	return CandidatesFrom(config.DefaultData())
}

// stringFrame 按列构造全字符串DataFrame, 与读取CSV后的形态一致
func stringFrame(names []string, rows ...[]string) dataframe.DataFrame {
	cols := make([]series.Series, len(names))
	for c, name := range names {
		values := make([]string, len(rows))
		for r, row := range rows {
			values[r] = row[c]
		}
		cols[c] = series.New(values, series.String, name)
	}
	return dataframe.New(cols...)
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
