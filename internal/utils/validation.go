package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
)

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ParseMonthName 将英文月份名转换为 1 ~ 12，忽略大小写和首尾空白
func ParseMonthName(name string) (int32, error) {
	name = strings.TrimSpace(name)
	for i, m := range monthNames {
		if strings.EqualFold(m, name) {
			return int32(i + 1), nil
		}
	}
	return 0, fmt.Errorf("无法识别的月份 %q", name)
}

func MonthName(month int32) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("月份 %d 不在 1 到 12 之间", month)
	}
	return monthNames[month-1], nil
}

// ReorderAmount 补货量 = 预测需求减去一半的库存，不小于 0
func ReorderAmount(predictedDemand, stock int64) int64 {
	amount := math.Trunc(float64(predictedDemand) - float64(stock)/2)
	if amount < 0 {
		return 0
	}
	return int64(amount)
}

// UnitCost 按 30% 毛利估算的成本，保留两位小数
func UnitCost(price float64) float64 {
	return math.Round(price*0.7*100) / 100
}

// ValidateMonthlyRecord 检查导入的一行月度数据，row 为表格中的行号
func ValidateMonthlyRecord(row int, r *domain.MonthlyRecord) error {
	if r.ProductName == "" {
		return fmt.Errorf("第 %d 行缺少商品名", row)
	}
	if r.Category == "" {
		return fmt.Errorf("第 %d 行缺少商品类别", row)
	}
	if r.Price < 0 {
		return fmt.Errorf("第 %d 行商品价格不能为负数", row)
	}
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("第 %d 行月份不在 1 到 12 之间", row)
	}
	if r.Holidays < 0 || r.UnitsSold < 0 || r.RemainingStock < 0 {
		return fmt.Errorf("第 %d 行节假日数、销量和库存不能为负数", row)
	}
	return nil
}
