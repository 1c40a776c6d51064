package utils

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05.999999999"
)

// 依次尝试的时间格式
var timeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-2006 15:04:05",
	"1/2/2006",
	"20060102",
}

// Excel序列号格式, 例如 44562 或 44562.5
var excelSerial = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

var ErrUnparseableTime = errors.New("unparseable time")

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	return Contains(df.Names(), name)
}

// ParseTime 解析时间字符串, 支持常见格式和Excel序列号
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" || s == "NaT" {
		return time.Time{}, ErrUnparseableTime
	}

	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	// 纯数字按Excel日期序列号处理(8位纯数字已在上面按yyyymmdd解析)
	if excelSerial.MatchString(s) {
		days, err := strconv.ParseFloat(s, 64)
		if err == nil && days > 0 && days < 2958466 {
			return ExcelToTime(days), nil
		}
	}
	return time.Time{}, ErrUnparseableTime
}

// ExcelToTime excel时间类型转time.Time类型
func ExcelToTime(excelDays float64) time.Time {
	// 1900日期系统以1899-12-30为基准, 已包含1900年闰年错误的修正
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	days := int(excelDays)
	fraction := excelDays - float64(days)

	// 四舍五入到秒, 避免浮点误差产生 23:59:59.999
	secs := math.Round(86400 * fraction)
	return base.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second)
}

// FloorDay 取当天零点, 保留原时区的墙上时间
func FloorDay(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseFloat 数值转换, 失败时返回NaN而不是错误
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// FormatFloat 输出浮点数, 整数值保留一位小数(15 -> 15.0), NaN输出空串
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
