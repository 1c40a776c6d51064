package processor

import (
	"fmt"
	"math"
	"sort"

	"CitibikeDashboard/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// 每日汇总文件的列名
const (
	DailyCountColumn = "bike_rides_daily"
	DailyTempColumn  = "temperature"
)

// DailyAggregate 每天一行: 骑行次数和当天所有温度读数的平均值
type DailyAggregate struct {
	Date           string
	RideCount      int
	AvgTemperature float64 // 当天没有任何有效温度时为NaN
}

// AggregateDaily 按 date 分组统计, 结果按日期升序
// 输入需已经过 Normalize, 含有 date 和 temperature 两列
func AggregateDaily(df dataframe.DataFrame) ([]DailyAggregate, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	for _, c := range []string{DateColumn, TemperatureColumn} {
		if !utils.HasColumn(df, c) {
			return nil, fmt.Errorf("daily aggregate: missing column %q", c)
		}
	}
	if df.Nrow() == 0 {
		return []DailyAggregate{}, nil
	}

	// gota的GroupBy会对每组重新做类型推断, 几百万行时太慢, 这里直接按列分组
	dates := df.Col(DateColumn).Records()
	temps := df.Col(TemperatureColumn).Float()

	index := make(map[string]int)
	var out []DailyAggregate
	var readings [][]float64
	for i, d := range dates {
		k, ok := index[d]
		if !ok {
			k = len(out)
			index[d] = k
			out = append(out, DailyAggregate{Date: d})
			readings = append(readings, nil)
		}
		out[k].RideCount++
		readings[k] = append(readings[k], temps[i])
	}
	for k := range out {
		out[k].AvgTemperature = meanIgnoringNaN(readings[k])
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// meanIgnoringNaN 只对非缺失值求平均, 全部缺失时返回NaN(不是0)
func meanIgnoringNaN(values []float64) float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	return stat.Mean(valid, nil)
}

// DailyFrame 转换为用于写文件的DataFrame
func DailyFrame(rows []DailyAggregate) dataframe.DataFrame {
	dates := make([]string, len(rows))
	counts := make([]int, len(rows))
	temps := make([]float64, len(rows))
	for i, r := range rows {
		dates[i] = r.Date
		counts[i] = r.RideCount
		temps[i] = r.AvgTemperature
	}
	return dataframe.New(
		series.New(dates, series.String, DateColumn),
		series.New(counts, series.Int, DailyCountColumn),
		series.New(temps, series.Float, DailyTempColumn),
	)
}
