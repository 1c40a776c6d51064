package processor

import (
	"errors"
	"math/rand/v2"

	"CitibikeDashboard/src/utils"

	"github.com/go-gota/gota/dataframe"
)

// Uniform 产生[0,1)均匀分布随机数, *rand.Rand 满足该接口
type Uniform interface {
	Float64() float64
}

// NewSource 用固定种子构造随机源; 每次运行单独构造, 不使用全局随机数
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// ErrNoReducedColumns 白名单中的列一个都不存在
var ErrNoReducedColumns = errors.New("none of the reduced columns are present")

// Project 只保留白名单中实际存在的列, 顺序按白名单
func Project(df dataframe.DataFrame, allow []string) dataframe.DataFrame {
	if df.Err != nil {
		return df
	}
	names := df.Names()
	cols := make([]string, 0, len(allow))
	for _, c := range allow {
		if utils.Contains(names, c) && !utils.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return dataframe.DataFrame{Err: ErrNoReducedColumns}
	}
	return df.Select(cols)
}

// BernoulliMask 对每一行独立抽一个随机数, 小于等于p时保留
// 返回保留的行下标(递增); 输出行数是随机的, 期望为 p*n
func BernoulliMask(n int, p float64, rng Uniform) []int {
	keep := make([]int, 0, int(float64(n)*p)+1)
	for i := 0; i < n; i++ {
		if rng.Float64() <= p {
			keep = append(keep, i)
		}
	}
	return keep
}

// Sample 按概率p抽样; 相同的种子和输入得到完全相同的结果
func Sample(df dataframe.DataFrame, p float64, rng Uniform) dataframe.DataFrame {
	return subsetRows(df, BernoulliMask(df.Nrow(), p, rng))
}
