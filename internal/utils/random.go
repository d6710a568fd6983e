package utils

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"gonum.org/v1/gonum/stat/distuv"
)

// TrendDays 是销售趋势的天数
const TrendDays = 30

// GenerateDailyTrend 将月销量拆成 30 天的日销量，每天服从均值为日均销量、标准差为 20% 的正态分布
func GenerateDailyTrend(totalSold int64, rng *rand.Rand) []int64 {
	if totalSold <= 0 {
		return []int64{}
	}

	mean := float64(totalSold) / TrendDays
	dist := distuv.Normal{Mu: mean, Sigma: mean * 0.2, Src: rng}

	trend := make([]int64, TrendDays)
	for i := range trend {
		trend[i] = int64(max(0, math.Trunc(dist.Rand())))
	}
	return trend
}

var categories = []string{"Beverages", "Bakery", "Dairy", "Snacks", "Household"}

var seasonOfMonth = map[int32]string{
	12: "Winter", 1: "Winter", 2: "Winter",
	3: "Spring", 4: "Spring", 5: "Spring",
	6: "Summer", 7: "Summer", 8: "Summer",
	9: "Autumn", 10: "Autumn", 11: "Autumn",
}

func SeasonOfMonth(month int32) string {
	return seasonOfMonth[month]
}

var letters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomProductName(rng *rand.Rand) string {
	name := make([]rune, 4)
	for i := range name {
		name[i] = letters[rng.IntN(len(letters))]
	}
	return fmt.Sprintf("商品-%s%03d", string(name), rng.IntN(1000))
}

// GenerateRandomProductRecords 为一个随机商品生成从 startYear 一月开始连续 months 个月的记录
func GenerateRandomProductRecords(startYear int32, months int, rng *rand.Rand) []domain.MonthlyRecord {
	name := GenerateRandomProductName(rng)
	category := categories[rng.IntN(len(categories))]
	price := math.Round((0.5+rng.Float64()*20)*100) / 100
	base := 50 + rng.IntN(200)

	var supplierID *int64
	if rng.IntN(5) > 0 {
		id := int64(rng.IntN(100) + 1)
		supplierID = &id
	}

	records := make([]domain.MonthlyRecord, months)
	for i := range records {
		year := startYear + int32(i/12)
		month := int32(i%12) + 1
		holidays := int32(rng.IntN(4))

		records[i] = domain.MonthlyRecord{
			ProductName:    name,
			Category:       category,
			Price:          price,
			Year:           year,
			Month:          month,
			Season:         SeasonOfMonth(month),
			Holidays:       holidays,
			UnitsSold:      int64(base + rng.IntN(50) + int(holidays)*10),
			RemainingStock: int64(rng.IntN(base)),
			SupplierID:     supplierID,
		}
	}

	return records
}
