package storage

import (
	"CitibikeDashboard/src/utils"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// ensureDir 确保目录存在
func ensureDir(dirPath string) error {
	if info, err := os.Stat(dirPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", dirPath)
	}
	return os.MkdirAll(dirPath, 0o755)
}

// writeAtomic 先写入同目录下的临时文件, 成功后改名覆盖目标文件,
// 读者不会看到写了一半的文件
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := ensureDir(dir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// CellString 单元格的输出文本: 缺失值写空串, 整数值的浮点写 15.0
func CellString(s series.Series, i int) string {
	elem := s.Elem(i)
	if s.Type() == series.Float {
		return utils.FormatFloat(elem.Float())
	}
	if elem.IsNA() {
		return ""
	}
	return elem.String()
}

// WriteCSV 把DataFrame写成带标题行的CSV, 覆盖已存在的文件
func WriteCSV(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("write %s: %w", path, df.Err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		names := df.Names()
		if err := cw.Write(names); err != nil {
			return err
		}

		cols := make([]series.Series, len(names))
		for i, name := range names {
			cols[i] = df.Col(name)
		}

		record := make([]string, len(names))
		for row := 0; row < df.Nrow(); row++ {
			for c, col := range cols {
				record[c] = CellString(col, row)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// WriteXLSX 将DataFrame保存为Excel文件
func WriteXLSX(path, sheetName string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("write %s: %w", path, df.Err)
	}
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	// 写入列名
	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	// 写入数据, 缺失值留空
	for colIdx, colName := range colNames {
		col := df.Col(colName)
		for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			var val interface{}
			switch col.Type() {
			case series.Float:
				v := col.Elem(rowIdx).Float()
				if math.IsNaN(v) {
					continue
				}
				val = v
			case series.Int:
				v, err := col.Elem(rowIdx).Int()
				if err != nil {
					continue
				}
				val = v
			default:
				elem := col.Elem(rowIdx)
				if elem.IsNA() {
					continue
				}
				val = elem.String()
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return err
			}
		}
	}

	return writeAtomic(path, func(w io.Writer) error {
		if _, err := f.WriteTo(w); err != nil {
			return fmt.Errorf("保存Excel文件失败: %w", err)
		}
		return nil
	})
}

// WriteManifest 以YAML格式写出运行清单
func WriteManifest(path string, v interface{}) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		return enc.Close()
	})
}
