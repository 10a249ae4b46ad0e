package number

import "fmt"

// Stats 键空间占用统计
type Stats struct {
	TotalGenerated int64  `json:"total_generated"`
	TotalPossible  int64  `json:"total_possible"`
	PercentageUsed string `json:"percentage_used"`
}

// formatPercentage 将占用数格式化为百分比字符串。
//
// 空集合固定输出 "0%"；非空时固定 6 位小数，
// 即使舍入后全为零（如 count=1 时的 "0.000000%"）。
func formatPercentage(count int64) string {
	if count == 0 {
		return "0%"
	}
	pct := float64(count) / float64(KeyspaceSize) * 100
	return fmt.Sprintf("%.6f%%", pct)
}
