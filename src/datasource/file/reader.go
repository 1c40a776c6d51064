// reader.go
package file

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Options 读取配置
type Options struct {
	Encoding  string // 文本编码名(utf-8, gbk, windows-1252...), 仅CSV
	SheetName string // 工作表名, 仅xlsx, 为空取第一个
	HeaderRow int    // 标题行下标, 仅xlsx
}

// Load 按扩展名读取 .csv/.tsv/.xlsx 文件, 所有列均为字符串类型
func Load(path string, opts Options) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSXToDataFrame(path, opts.SheetName, opts.HeaderRow)
	case ".tsv":
		return ReadCSVToDataFrame(path, opts.Encoding, '\t')
	default:
		return ReadCSVToDataFrame(path, opts.Encoding, ',')
	}
}

// lookupEncoding 解析编码名, 为空时为utf-8
func lookupEncoding(name string) (encoding.Encoding, error) {
	if strings.TrimSpace(name) == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// decodeReader 转成utf-8并去掉BOM
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// ReadCSVToDataFrame 读取带标题行的分隔符文件
// 不做类型推断, 单元格原样保留为字符串, 由后续步骤各自转换
func ReadCSVToDataFrame(path, encodingName string, delimiter rune) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	r, err := decodeReader(f, encodingName)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	cr := csv.NewReader(r)
	cr.Comma = delimiter
	records, err := cr.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse csv %s: no header row", path)
	}
	// 只有标题行时返回同列名的空表, gota的LoadRecords不接受没有数据行的输入
	if len(records) == 1 {
		return headerOnly(records[0]), nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse csv %s: %w", path, df.Err)
	}
	return df, nil
}

// headerOnly 构造只有列名、没有行的字符串表
func headerOnly(headers []string) dataframe.DataFrame {
	cols := make([]series.Series, len(headers))
	for i, name := range headers {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}

// ReadXLSX 读取xlsx文件的指定工作表
func ReadXLSXToDataFrame(filePath, sheetName string, headerRow int) (dataframe.DataFrame, error) {
	// 1. 使用tealeg/xlsx打开Excel文件
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open xlsx file: %w", err)
	}

	// 2. 获取工作表
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("excel文件中没有工作表: %s", filePath)
	}
	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("sheet %q not found in %s", sheetName, filePath)
		}
		sheet = s
	}

	// 3. 转换为Gota DataFrame
	return convertSheetToDataFrame(sheet, headerRow)
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
func convertSheetToDataFrame(sheet *xlsx.Sheet, headerRow int) (dataframe.DataFrame, error) {
	if headerRow < 0 || len(sheet.Rows) <= headerRow {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q has no header row %d", sheet.Name, headerRow)
	}

	// 获取列名
	var headers []string
	for _, cell := range sheet.Rows[headerRow].Cells {
		headers = append(headers, strings.TrimSpace(cell.Value))
	}
	// 去掉行尾的空列名
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}
	if len(headers) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q has an empty header row", sheet.Name)
	}

	// 准备数据列
	dataRows := sheet.Rows[headerRow+1:]
	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(dataRows))
	}

	// 填充数据, 缺少的单元格补空串
	for _, row := range dataRows {
		if row == nil {
			continue
		}
		for i := range headers {
			value := ""
			if i < len(row.Cells) && row.Cells[i] != nil {
				value = row.Cells[i].Value
			}
			columns[i] = append(columns[i], value)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	df := dataframe.New(seriesList...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("convert sheet %q: %w", sheet.Name, df.Err)
	}
	return df, nil
}
