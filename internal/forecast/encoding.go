package forecast

import (
	"slices"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
)

// EncodingTable 把类别特征映射为 one-hot 列。
// 训练时构建一次，之后只读，每次预测都传入同一个表。
//
// 列布局：[截距, 类别..., 月份..., 季节..., 价格, 年份, 节假日数]
// 每组的第一个取值作为基准，不占列；没见过的取值同样按基准编码。
type EncodingTable struct {
	categories map[string]int
	months     map[int32]int
	seasons    map[string]int
	priceCol   int
	yearCol    int
	holidayCol int
	yearBase   int32
	width      int
}

func NewEncodingTable(records []domain.MonthlyRecord) *EncodingTable {
	var categories, seasons []string
	var months []int32
	yearBase := int32(0)

	for i, r := range records {
		categories = append(categories, r.Category)
		seasons = append(seasons, r.Season)
		months = append(months, r.Month)
		if i == 0 || r.Year < yearBase {
			yearBase = r.Year
		}
	}

	t := &EncodingTable{yearBase: yearBase}
	col := 1 // 第 0 列为截距

	t.categories, col = assignColumns(categories, col)
	t.months, col = assignColumns(months, col)
	t.seasons, col = assignColumns(seasons, col)

	t.priceCol = col
	t.yearCol = col + 1
	t.holidayCol = col + 2
	t.width = col + 3

	return t
}

// assignColumns 对去重排序后的取值分配列号，跳过第一个取值
func assignColumns[T string | int32](values []T, start int) (map[T]int, int) {
	levels := slices.Clone(values)
	slices.Sort(levels)
	levels = slices.Compact(levels)

	cols := make(map[T]int, len(levels))
	col := start
	for i, level := range levels {
		if i == 0 {
			continue
		}
		cols[level] = col
		col++
	}
	return cols, col
}

func (t *EncodingTable) Width() int {
	return t.width
}

// Encode 生成一行特征，返回的切片由调用者持有
func (t *EncodingTable) Encode(category string, month int32, season string, price float64, year int32, holidays int32) []float64 {
	x := make([]float64, t.width)
	x[0] = 1

	if col, ok := t.categories[category]; ok {
		x[col] = 1
	}
	if col, ok := t.months[month]; ok {
		x[col] = 1
	}
	if col, ok := t.seasons[season]; ok {
		x[col] = 1
	}

	x[t.priceCol] = price
	x[t.yearCol] = float64(year - t.yearBase)
	x[t.holidayCol] = float64(holidays)

	return x
}

func (t *EncodingTable) EncodeRecord(r domain.MonthlyRecord) []float64 {
	return t.Encode(r.Category, r.Month, r.Season, r.Price, r.Year, r.Holidays)
}
