package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	InputPath     string `json:"input_path"`     // 上游合并后的骑行+天气数据
	InputEncoding string `json:"input_encoding"` // 输入文件编码, 为空时按utf-8处理
	SheetName     string `json:"sheet_name"`     // xlsx输入时读取的工作表, 为空取第一个
	HeaderRow     int    `json:"header_row"`     // xlsx标题行(从0开始)

	DailyPath     string `json:"daily_path"`      // 每日汇总输出
	DailyXLSXPath string `json:"daily_xlsx_path"` // 每日汇总的xlsx副本, 为空则不输出
	ReducedPath   string `json:"reduced_path"`    // 抽样输出
	Top20Path     string `json:"top20_path"`      // 热门站点输出, 为空则不输出
	ManifestPath  string `json:"manifest_path"`   // 运行清单, 为空则不输出

	Sample struct {
		Seed     uint64  `json:"seed"`     // 随机种子
		Fraction float64 `json:"fraction"` // 每行保留概率
	} `json:"sample"`

	Schedule struct {
		Interval Duration `json:"interval"` // 定时重新生成的间隔
	} `json:"schedule"`

	Watch struct {
		Debounce Duration `json:"debounce"` // 输入文件变化后的等待时间
	} `json:"watch"`

	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"`
	LogLevel   string `json:"log_level"`
}

// DataConfig 列名识别相关配置
type DataConfig struct {
	DateCandidates        []string `json:"date_candidates"`
	TemperatureCandidates []string `json:"temperature_candidates"`
	StationCandidates     []string `json:"station_candidates"`
	StationPlaceholder    string   `json:"station_placeholder"`
	ReducedColumns        []string `json:"reduced_columns"`
	TopN                  int      `json:"top_n"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	mu                 sync.RWMutex
)

// Default 返回内置默认配置
func Default() *Config {
	cfg := &Config{
		InputPath:    filepath.Join("data", "processed", "citibike_with_weather_merged.csv"),
		DailyPath:    filepath.Join("data", "processed", "daily_aggregated.csv"),
		ReducedPath:  filepath.Join("data", "reduced", "reduced_data_to_plot_7.csv"),
		Top20Path:    filepath.Join("docs", "top20.csv"),
		ManifestPath: filepath.Join("data", "reduced", "manifest.yaml"),
		LogName:      "app.log",
		LogMaxSize:   "10 * 1024 * 1024",
		LogLevel:     "info",
	}
	cfg.Sample.Seed = 32
	cfg.Sample.Fraction = 0.08 // 约为原始行数的8%
	cfg.Schedule.Interval = Duration(24 * time.Hour)
	cfg.Watch.Debounce = Duration(2 * time.Second)
	return cfg
}

// DefaultData 返回内置默认列配置
func DefaultData() *DataConfig {
	return &DataConfig{
		DateCandidates:        []string{"date", "started_at", "start_time", "start_date", "start_datetime"},
		TemperatureCandidates: []string{"temperature", "temp", "avgTemp", "tavg", "TAVG", "tavg_c", "tavg_celsius"},
		StationCandidates:     []string{"start_station_name", "from_station_name", "start_station", "from_station"},
		StationPlaceholder:    "UNKNOWN",
		ReducedColumns: []string{
			"ride_id", "date", "started_at", "start_station_name", "start_station_id",
			"end_station_name", "end_station_id", "start_lat", "start_lng", "end_lat", "end_lng",
			"member_casual", "temperature",
		},
		TopN: 20,
	}
}

// LoadConfig 只加载一次配置, 后续调用返回同一实例
func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, dcfg, nil
}

// readFile 读取文件, 文件不存在时返回nil以使用默认值
func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	cfg := Default()
	if len(data) > 0 {
		if err := json.Unmarshal(data, cfg); err != nil {
			errChan <- fmt.Errorf("解析Config失败: %w", err)
			return
		}
	}
	resultChan <- cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	dcfg := DefaultData()
	if len(data) > 0 {
		if err := json.Unmarshal(data, dcfg); err != nil {
			errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
			return
		}
	}
	resultChan <- dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg  *Config
		dcfg *DataConfig
		errs []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, nil, combineErrors(errs)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// applyEnv 使用 CITIBIKE_ 前缀的环境变量覆盖配置
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("CITIBIKE")
	for _, key := range []string{
		"input_path", "input_encoding", "daily_path", "daily_xlsx_path",
		"reduced_path", "top20_path", "manifest_path",
		"sample_seed", "sample_fraction", "log_name", "log_level",
	} {
		_ = v.BindEnv(key)
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setString("input_path", &cfg.InputPath)
	setString("input_encoding", &cfg.InputEncoding)
	setString("daily_path", &cfg.DailyPath)
	setString("daily_xlsx_path", &cfg.DailyXLSXPath)
	setString("reduced_path", &cfg.ReducedPath)
	setString("top20_path", &cfg.Top20Path)
	setString("manifest_path", &cfg.ManifestPath)
	setString("log_name", &cfg.LogName)
	setString("log_level", &cfg.LogLevel)

	if v.IsSet("sample_seed") {
		cfg.Sample.Seed = v.GetUint64("sample_seed")
	}
	if v.IsSet("sample_fraction") {
		cfg.Sample.Fraction = v.GetFloat64("sample_fraction")
	}
}

// Validate 校验必填项和取值范围
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("config: input_path is empty")
	}
	if c.DailyPath == "" || c.ReducedPath == "" {
		return errors.New("config: daily_path and reduced_path are required")
	}
	if c.Sample.Fraction <= 0 || c.Sample.Fraction > 1 {
		return fmt.Errorf("config: sample fraction %v out of range (0, 1]", c.Sample.Fraction)
	}
	return nil
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d Duration) String() string { return time.Duration(d).String() }

// Candidates 返回三种列角色的候选列表副本
func (dc *DataConfig) Candidates() (date, temperature, station []string) {
	mu.RLock()
	defer mu.RUnlock()
	return append([]string(nil), dc.DateCandidates...),
		append([]string(nil), dc.TemperatureCandidates...),
		append([]string(nil), dc.StationCandidates...)
}

func (dc *DataConfig) SetReducedColumns(cols []string) {
	mu.Lock()
	defer mu.Unlock()
	dc.ReducedColumns = cols
}
