package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// HolidayBonus 为有节假日的月份额外增加的销量
const HolidayBonus = 10

var (
	ErrNotTrained     = errors.New("需求预测模型未训练")
	ErrUnknownProduct = errors.New("商品不存在")
	ErrInvalidMonth   = errors.New("月份必须在 1 到 12 之间")
)

// Predictor 是一个岭回归的月度销量模型
type Predictor struct {
	table    *EncodingTable
	coef     []float64
	products map[string]domain.Product
}

// NewPredictor 用历史月度数据训练模型。没有数据时返回一个未训练的模型。
func NewPredictor(records []domain.MonthlyRecord, lambda float64) (*Predictor, error) {
	p := &Predictor{
		products: make(map[string]domain.Product),
	}
	if len(records) == 0 {
		return p, nil
	}

	// 商品信息取第一条记录
	for _, r := range records {
		if _, exists := p.products[r.ProductName]; exists {
			continue
		}
		p.products[r.ProductName] = domain.Product{
			Name:       r.ProductName,
			Category:   r.Category,
			Price:      r.Price,
			Season:     r.Season,
			SupplierID: r.SupplierID,
		}
	}

	table := NewEncodingTable(records)
	n, width := len(records), table.Width()

	x := mat.NewDense(n, width, nil)
	y := mat.NewVecDense(n, nil)
	for i, r := range records {
		x.SetRow(i, table.EncodeRecord(r))
		y.SetVec(i, float64(r.UnitsSold))
	}

	// (XᵀX + λI)β = Xᵀy，截距不做正则
	var a mat.Dense
	a.Mul(x.T(), x)
	for j := 1; j < width; j++ {
		a.Set(j, j, a.At(j, j)+lambda)
	}

	var b mat.VecDense
	b.MulVec(x.T(), y)

	var coef mat.VecDense
	if err := coef.SolveVec(&a, &b); err != nil {
		return nil, fmt.Errorf("无法训练需求预测模型: %w", err)
	}

	p.table = table
	p.coef = mat.Col(nil, 0, &coef)
	return p, nil
}

func (p *Predictor) Trained() bool {
	return p.table != nil
}

// PredictSingleItem 预测某个商品在指定年月的销量，有节假日时额外加 HolidayBonus
func (p *Predictor) PredictSingleItem(productName string, year, month, holidays int32) (int64, error) {
	if !p.Trained() {
		return 0, ErrNotTrained
	}
	if month < 1 || month > 12 {
		return 0, ErrInvalidMonth
	}

	product, ok := p.products[productName]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProduct, productName)
	}

	x := p.table.Encode(product.Category, month, product.Season, product.Price, year, holidays)
	prediction := floats.Dot(p.coef, x)

	if holidays > 0 {
		prediction += HolidayBonus
	}

	return int64(math.Max(0, prediction)), nil
}
