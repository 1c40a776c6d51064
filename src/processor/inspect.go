package processor

import (
	"errors"
	"fmt"
	"io"
	"os"

	"CitibikeDashboard/src/utils"

	"github.com/go-gota/gota/dataframe"
)

// 预览的行数
const inspectHeadRows = 8

// Inspect 打印输出文件的前几行、列名、日期范围和每日骑行数的统计
func Inspect(path string, w io.Writer) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.HasHeader(true), dataframe.DetectTypes(true))
	if df.Err != nil {
		return fmt.Errorf("read %s: %w", path, df.Err)
	}

	head := df
	if df.Nrow() > inspectHeadRows {
		idx := make([]int, inspectHeadRows)
		for i := range idx {
			idx[i] = i
		}
		head = df.Subset(idx)
	}
	fmt.Fprintln(w, head.String())
	fmt.Fprintln(w, df.Names())

	if utils.HasColumn(df, DateColumn) {
		lo, hi, ok := dateRange(df.Col(DateColumn).Records())
		if ok {
			fmt.Fprintf(w, "min/max date: %s %s\n", lo, hi)
		}
	}

	if utils.HasColumn(df, DailyCountColumn) && df.Nrow() > 0 {
		desc := df.Select([]string{DailyCountColumn}).Describe()
		fmt.Fprintf(w, "%s stats:\n%s\n", DailyCountColumn, desc.String())
	}
	return nil
}

// dateRange 忽略无法解析的值
func dateRange(values []string) (lo, hi string, ok bool) {
	for _, v := range values {
		t, err := utils.ParseTime(v)
		if err != nil {
			continue
		}
		d := t.Format(utils.TimestampLayout)
		if !ok || d < lo {
			lo = d
		}
		if !ok || d > hi {
			hi = d
		}
		ok = true
	}
	return lo, hi, ok
}
