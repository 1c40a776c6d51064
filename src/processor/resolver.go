package processor

import (
	"errors"

	"CitibikeDashboard/src/utils"
)

// ErrNoDateColumn 找不到任何日期列, 后续聚合都依赖日期, 整个流程终止
var ErrNoDateColumn = errors.New("no date-like column found")

// ColumnCandidates 各列角色的候选列名, 按优先级排列
type ColumnCandidates struct {
	Date        []string
	Temperature []string
	Station     []string
}

// Roles 解析得到的实际列名, 空串表示没有找到
type Roles struct {
	Date        string `yaml:"date"`
	Temperature string `yaml:"temperature"`
	Station     string `yaml:"station"`
}

// ResolveColumn 返回第一个出现在columns中的候选列名(精确匹配)
func ResolveColumn(columns, candidates []string) (string, bool) {
	for _, c := range candidates {
		if utils.Contains(columns, c) {
			return c, true
		}
	}
	return "", false
}

// ResolveRoles 解析日期/温度/站点三种角色
// 日期必须存在; 温度和站点缺失时返回空串, 由标准化步骤填充缺失值或占位符
func ResolveRoles(columns []string, c ColumnCandidates) (Roles, error) {
	var roles Roles

	date, ok := ResolveColumn(columns, c.Date)
	if !ok {
		return roles, ErrNoDateColumn
	}
	roles.Date = date
	roles.Temperature, _ = ResolveColumn(columns, c.Temperature)
	roles.Station, _ = ResolveColumn(columns, c.Station)
	return roles, nil
}
