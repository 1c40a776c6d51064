package processor

import (
	"fmt"
	"math"

	"CitibikeDashboard/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 标准化后的列名
const (
	DateColumn        = "date"
	TemperatureColumn = "temperature"
	StationColumn     = "start_station_name"
)

// Normalize 按解析出的列角色整理数据:
//  1. 日期列解析为时间, 解析失败的行被丢弃, 并生成按天截断的 date 列
//  2. 温度列转为数值列 temperature, 无法转换或没有温度列时为NaN
//  3. 站点列改名为 start_station_name, 没有站点列时填充占位符
//
// 返回整理后的数据和被丢弃的行数
func Normalize(df dataframe.DataFrame, roles Roles, placeholder string) (dataframe.DataFrame, int, error) {
	if df.Err != nil {
		return df, 0, df.Err
	}
	if !utils.HasColumn(df, roles.Date) {
		return df, 0, fmt.Errorf("%w: %q", ErrNoDateColumn, roles.Date)
	}

	// 1. 时间字段
	raw := df.Col(roles.Date).Records()
	keep := make([]int, 0, len(raw))
	stamps := make([]string, 0, len(raw))
	days := make([]string, 0, len(raw))
	for i, v := range raw {
		t, err := utils.ParseTime(v)
		if err != nil {
			continue
		}
		keep = append(keep, i)
		stamps = append(stamps, t.Format(utils.TimestampLayout))
		days = append(days, utils.FloorDay(t))
	}
	dropped := len(raw) - len(keep)

	df = subsetRows(df, keep)
	df = df.Mutate(series.New(stamps, series.String, roles.Date))
	// 日期角色本身就是 date 列时, 这里会把它覆盖为按天截断的值
	df = df.Mutate(series.New(days, series.String, DateColumn))

	// 2. 温度
	temps := make([]float64, df.Nrow())
	if roles.Temperature != "" {
		for i, v := range df.Col(roles.Temperature).Records() {
			temps[i] = utils.ParseFloat(v)
		}
	} else {
		for i := range temps {
			temps[i] = math.NaN()
		}
	}
	df = df.Mutate(series.New(temps, series.Float, TemperatureColumn))

	// 3. 站点
	switch {
	case roles.Station == StationColumn:
	case roles.Station != "" && utils.HasColumn(df, StationColumn):
		// 目标列名已被占用, 用解析出的站点列覆盖它
		df = df.Mutate(series.New(df.Col(roles.Station).Records(), series.String, StationColumn))
	case roles.Station != "":
		df = df.Rename(StationColumn, roles.Station)
	default:
		names := make([]string, df.Nrow())
		for i := range names {
			names[i] = placeholder
		}
		df = df.Mutate(series.New(names, series.String, StationColumn))
	}

	if df.Err != nil {
		return df, dropped, fmt.Errorf("normalize: %w", df.Err)
	}
	return df, dropped, nil
}

// subsetRows 按递增下标取行; gota不支持空选择, 没有行时返回同结构的空表
func subsetRows(df dataframe.DataFrame, idx []int) dataframe.DataFrame {
	if len(idx) == df.Nrow() {
		return df
	}
	if len(idx) == 0 {
		return emptyLike(df)
	}
	return df.Subset(idx)
}

// emptyLike 返回列名和类型相同、没有行的DataFrame
func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	cols := make([]series.Series, 0, df.Ncol())
	for _, name := range df.Names() {
		cols = append(cols, series.New([]string{}, df.Col(name).Type(), name))
	}
	return dataframe.New(cols...)
}
