package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"CitibikeDashboard/src/config"
	"CitibikeDashboard/src/datasource/file"
	"CitibikeDashboard/src/storage"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInputNotFound 输入文件不存在, 整个流程终止
var ErrInputNotFound = errors.New("input file not found")

// Options 一次运行所需的全部参数
type Options struct {
	InputPath     string
	Read          file.Options
	DailyPath     string
	DailyXLSXPath string
	ReducedPath   string
	Top20Path     string
	ManifestPath  string

	Seed     uint64
	Fraction float64

	Candidates     ColumnCandidates
	Placeholder    string
	ReducedColumns []string
	TopN           int
}

// OptionsFromConfig 由配置文件生成运行参数
func OptionsFromConfig(cfg *config.Config, dcfg *config.DataConfig) Options {
	return Options{
		InputPath: cfg.InputPath,
		Read: file.Options{
			Encoding:  cfg.InputEncoding,
			SheetName: cfg.SheetName,
			HeaderRow: cfg.HeaderRow,
		},
		DailyPath:      cfg.DailyPath,
		DailyXLSXPath:  cfg.DailyXLSXPath,
		ReducedPath:    cfg.ReducedPath,
		Top20Path:      cfg.Top20Path,
		ManifestPath:   cfg.ManifestPath,
		Seed:           cfg.Sample.Seed,
		Fraction:       cfg.Sample.Fraction,
		Candidates:     CandidatesFrom(dcfg),
		Placeholder:    dcfg.StationPlaceholder,
		ReducedColumns: dcfg.ReducedColumns,
		TopN:           dcfg.TopN,
	}
}

// CandidatesFrom 读取配置中的候选列名
func CandidatesFrom(dcfg *config.DataConfig) ColumnCandidates {
	date, temperature, station := dcfg.Candidates()
	return ColumnCandidates{Date: date, Temperature: temperature, Station: station}
}

// Outputs 本次写出的文件
type Outputs struct {
	Daily     string `yaml:"daily"`
	DailyXLSX string `yaml:"daily_xlsx,omitempty"`
	Reduced   string `yaml:"reduced"`
	Top20     string `yaml:"top20,omitempty"`
}

// Result 运行结果, 同时作为运行清单写出
type Result struct {
	RunID       string    `yaml:"run_id"`
	StartedAt   time.Time `yaml:"started_at"`
	Input       string    `yaml:"input"`
	Resolved    Roles     `yaml:"resolved"`
	RowsRead    int       `yaml:"rows_read"`
	RowsDropped int       `yaml:"rows_dropped"`
	DailyRows   int       `yaml:"daily_rows"`
	SampleRows  int       `yaml:"sample_rows"`
	Seed        uint64    `yaml:"seed"`
	Fraction    float64   `yaml:"fraction"`
	Outputs     Outputs   `yaml:"outputs"`
}

// Pipeline 读取合并数据, 生成每日汇总和抽样文件
type Pipeline struct {
	opts   Options
	logger *storage.Logger
}

func NewPipeline(opts Options, logger *storage.Logger) *Pipeline {
	if logger == nil {
		logger = storage.NewNopLogger()
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Run 顺序执行: 读取 -> 标准化 -> 每日汇总 -> 列裁剪 -> 抽样 -> 写出
// 任何返回的错误都应终止本次运行
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Input:     p.opts.InputPath,
		Seed:      p.opts.Seed,
		Fraction:  p.opts.Fraction,
	}
	log := func(level storage.LogLevel, msg string, fields ...zap.Field) {
		p.logger.Log(level, msg, append(fields, zap.String("run_id", res.RunID))...)
	}

	// 1. 读取
	df, err := p.load()
	if err != nil {
		return nil, err
	}
	res.RowsRead = df.Nrow()
	log(storage.INFO, "loaded merged dataset",
		zap.String("input", p.opts.InputPath), zap.Int("rows", df.Nrow()), zap.Strings("columns", df.Names()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2-4. 列识别和标准化
	roles, err := ResolveRoles(df.Names(), p.opts.Candidates)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, p.opts.InputPath)
	}
	res.Resolved = roles
	if roles.Temperature == "" {
		log(storage.WARNING, "no temperature column found, temperature will be empty in daily file")
	}
	if roles.Station == "" {
		log(storage.WARNING, "no station column found, using placeholder", zap.String("placeholder", p.opts.Placeholder))
	}
	log(storage.INFO, "resolved columns",
		zap.String("date", roles.Date), zap.String("temperature", roles.Temperature), zap.String("station", roles.Station))

	df, dropped, err := Normalize(df, roles, p.opts.Placeholder)
	if err != nil {
		return nil, err
	}
	res.RowsDropped = dropped
	if dropped > 0 {
		log(storage.WARNING, "dropped rows with unparseable timestamps", zap.Int("dropped", dropped))
	}

	// 5. 每日汇总
	daily, err := AggregateDaily(df)
	if err != nil {
		return nil, err
	}
	res.DailyRows = len(daily)

	// 6-7. 列裁剪和抽样
	reduced := Sample(Project(df, p.opts.ReducedColumns), p.opts.Fraction, NewSource(p.opts.Seed))
	if reduced.Err != nil {
		return nil, fmt.Errorf("reduce: %w", reduced.Err)
	}
	res.SampleRows = reduced.Nrow()

	var top []StationCount
	if p.opts.Top20Path != "" {
		if top, err = TopStations(df, p.opts.TopN); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 8. 写出
	dailyDF := DailyFrame(daily)
	if err := storage.WriteCSV(p.opts.DailyPath, dailyDF); err != nil {
		return nil, fmt.Errorf("write daily aggregate: %w", err)
	}
	res.Outputs.Daily = p.opts.DailyPath
	log(storage.INFO, "saved daily aggregate", zap.String("path", p.opts.DailyPath), zap.Int("rows", len(daily)))

	if p.opts.DailyXLSXPath != "" {
		if err := storage.WriteXLSX(p.opts.DailyXLSXPath, "daily", dailyDF); err != nil {
			return nil, fmt.Errorf("write daily xlsx: %w", err)
		}
		res.Outputs.DailyXLSX = p.opts.DailyXLSXPath
	}

	if err := storage.WriteCSV(p.opts.ReducedPath, reduced); err != nil {
		return nil, fmt.Errorf("write reduced sample: %w", err)
	}
	res.Outputs.Reduced = p.opts.ReducedPath
	log(storage.INFO, "saved reduced sample",
		zap.String("path", p.opts.ReducedPath), zap.Int("rows", reduced.Nrow()), zap.Int("cols", reduced.Ncol()))

	if p.opts.Top20Path != "" {
		if err := storage.WriteCSV(p.opts.Top20Path, TopStationsFrame(top)); err != nil {
			return nil, fmt.Errorf("write top stations: %w", err)
		}
		res.Outputs.Top20 = p.opts.Top20Path
	}

	if p.opts.ManifestPath != "" {
		if err := storage.WriteManifest(p.opts.ManifestPath, res); err != nil {
			return nil, fmt.Errorf("write manifest: %w", err)
		}
	}
	return res, nil
}

// RunTopStations 只生成热门站点文件
func (p *Pipeline) RunTopStations(ctx context.Context) ([]StationCount, error) {
	if p.opts.Top20Path == "" {
		return nil, errors.New("top stations: output path is empty")
	}
	df, err := p.load()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 与完整流程相同, 日期无法解析的行不计入
	roles, err := ResolveRoles(df.Names(), p.opts.Candidates)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, p.opts.InputPath)
	}
	df, _, err = Normalize(df, roles, p.opts.Placeholder)
	if err != nil {
		return nil, err
	}

	top, err := TopStations(df, p.opts.TopN)
	if err != nil {
		return nil, err
	}
	if err := storage.WriteCSV(p.opts.Top20Path, TopStationsFrame(top)); err != nil {
		return nil, fmt.Errorf("write top stations: %w", err)
	}
	p.logger.Info("saved top stations", zap.String("path", p.opts.Top20Path), zap.Int("rows", len(top)))
	return top, nil
}

// load 输入文件不存在时返回 ErrInputNotFound
func (p *Pipeline) load() (dataframe.DataFrame, error) {
	if _, err := os.Stat(p.opts.InputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrInputNotFound, p.opts.InputPath)
		}
		return dataframe.DataFrame{}, err
	}
	p.logger.Info("reading merged csv (this may take a while)", zap.String("input", p.opts.InputPath))
	return file.Load(p.opts.InputPath, p.opts.Read)
}
