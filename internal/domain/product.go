package domain

type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Price      float64 `json:"price"`
	Season     string  `json:"season"`
	SupplierID *int64  `json:"supplierID"`
}

// MonthlyRecord 对应月度销售表中的一行
type MonthlyRecord struct {
	ProductName    string  `json:"productName"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Year           int32   `json:"year"`
	Month          int32   `json:"month"` // 1 ~ 12
	Season         string  `json:"season"`
	Holidays       int32   `json:"holidays"`
	UnitsSold      int64   `json:"unitsSold"`
	RemainingStock int64   `json:"remainingStock"`
	SupplierID     *int64  `json:"supplierID"`
}

type SalesSummary struct {
	TotalSold int64   `json:"totalSold"`
	Trend     []int64 `json:"trend"`
}

type ProductAnalysis struct {
	Category        string  `json:"category"`
	Product         string  `json:"product"`
	Stock           int64   `json:"stock"`
	PredictedDemand int64   `json:"predictedDemand"`
	ReorderAmount   int64   `json:"reorderAmount"`
	Price           float64 `json:"price"`
	Cost            float64 `json:"cost"`
}
