package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodingTableLayout(t *testing.T) {
	table := NewEncodingTable(makeRecords())

	// 截距 + 1 个类别列 + 11 个月份列 + 1 个季节列 + 价格/年份/节假日
	assert.Equal(t, 1+1+11+1+3, table.Width())

	baseline := table.Encode("Bakery", 1, "Winter", 1.2, 2022, 0)
	assert.Equal(t, 1.0, baseline[0])
	assert.Equal(t, 1.0, sum(baseline[1:14]), "only the Winter season column should be hot")

	x := table.Encode("Beverages", 12, "Winter", 2.5, 2023, 2)
	assert.Equal(t, 3.0, sum(x[1:14]))
	assert.Equal(t, []float64{2.5, 1, 2}, x[14:])
}

func TestEncodingTableUnknownLevelsUseBaseline(t *testing.T) {
	table := NewEncodingTable(makeRecords())

	x := table.Encode("Toys", 1, "Monsoon", 0, 2022, 0)
	assert.Equal(t, 0.0, sum(x[1:]))
}

func TestEncodeReturnsFreshSlices(t *testing.T) {
	table := NewEncodingTable(makeRecords())

	a := table.Encode("Bakery", 2, "Winter", 1, 2022, 0)
	a[0] = 99
	b := table.Encode("Bakery", 2, "Winter", 1, 2022, 0)
	assert.Equal(t, 1.0, b[0])
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}
