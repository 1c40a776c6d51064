package cli

import (
	"fmt"

	"CitibikeDashboard/src/processor"

	"github.com/spf13/cobra"
)

// pipelineFlags 覆盖配置文件中的输入输出路径和抽样参数
type pipelineFlags struct {
	input     string
	encoding  string
	sheet     string
	daily     string
	dailyXLSX string
	reduced   string
	top20     string
	manifest  string
	seed      uint64
	fraction  float64
	columns   []string
}

func (pf *pipelineFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&pf.input, "input", "", "merged trip+weather file (.csv, .tsv or .xlsx)")
	f.StringVar(&pf.encoding, "encoding", "", "input text encoding, e.g. utf-8, windows-1252, gbk")
	f.StringVar(&pf.sheet, "sheet", "", "sheet to read when the input is xlsx")
	f.StringVar(&pf.daily, "daily", "", "daily aggregate output csv")
	f.StringVar(&pf.dailyXLSX, "daily-xlsx", "", "optional xlsx copy of the daily aggregate")
	f.StringVar(&pf.reduced, "reduced", "", "reduced sample output csv")
	f.StringVar(&pf.top20, "top20", "", "top stations output csv (empty disables it)")
	f.StringVar(&pf.manifest, "manifest", "", "run manifest yaml (empty disables it)")
	f.Uint64Var(&pf.seed, "seed", 0, "random seed for the sample")
	f.Float64Var(&pf.fraction, "fraction", 0, "probability of keeping each row, in (0, 1]")
	f.StringSliceVar(&pf.columns, "columns", nil, "comma separated allow-list for the reduced sample")
}

// options 合并配置和命令行参数; 只有显式给出的参数才会覆盖配置
func (a *app) options(cmd *cobra.Command, pf *pipelineFlags) (processor.Options, error) {
	changed := cmd.Flags().Changed
	cfg := a.cfg

	set := func(name, value string, dst *string) {
		if changed(name) {
			*dst = value
		}
	}
	set("input", pf.input, &cfg.InputPath)
	set("encoding", pf.encoding, &cfg.InputEncoding)
	set("sheet", pf.sheet, &cfg.SheetName)
	set("daily", pf.daily, &cfg.DailyPath)
	set("daily-xlsx", pf.dailyXLSX, &cfg.DailyXLSXPath)
	set("reduced", pf.reduced, &cfg.ReducedPath)
	set("top20", pf.top20, &cfg.Top20Path)
	set("manifest", pf.manifest, &cfg.ManifestPath)
	if changed("seed") {
		cfg.Sample.Seed = pf.seed
	}
	if changed("fraction") {
		cfg.Sample.Fraction = pf.fraction
	}
	if changed("columns") {
		if len(pf.columns) == 0 {
			return processor.Options{}, fmt.Errorf("--columns must name at least one column")
		}
		a.dcfg.SetReducedColumns(pf.columns)
	}

	if err := cfg.Validate(); err != nil {
		return processor.Options{}, err
	}
	return processor.OptionsFromConfig(cfg, a.dcfg), nil
}
