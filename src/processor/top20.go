package processor

import (
	"fmt"
	"sort"

	"CitibikeDashboard/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// StationCount 站点出发次数
type StationCount struct {
	Station string
	Count   int
}

// TopStations 统计每个出发站点的行程数, 取前n名
// 次数相同时按站点名升序, 保证结果稳定
func TopStations(df dataframe.DataFrame, n int) ([]StationCount, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	if n <= 0 {
		return nil, fmt.Errorf("top stations: n must be positive, got %d", n)
	}
	if !utils.HasColumn(df, StationColumn) {
		return nil, fmt.Errorf("top stations: missing column %q", StationColumn)
	}
	if df.Nrow() == 0 {
		return []StationCount{}, nil
	}

	counts := make(map[string]int)
	for _, s := range df.Col(StationColumn).Records() {
		counts[s]++
	}

	out := make([]StationCount, 0, len(counts))
	for s, c := range counts {
		out = append(out, StationCount{Station: s, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Station < out[j].Station
	})

	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// TopStationsFrame 转换为 start_station_name,count 两列
func TopStationsFrame(rows []StationCount) dataframe.DataFrame {
	names := make([]string, len(rows))
	counts := make([]int, len(rows))
	for i, r := range rows {
		names[i] = r.Station
		counts[i] = r.Count
	}
	return dataframe.New(
		series.New(names, series.String, StationColumn),
		series.New(counts, series.Int, "count"),
	)
}
