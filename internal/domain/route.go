package domain

// Route 表示一种运输方式，FixedCost 为每次下单的固定费用
type Route struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	FixedCost    float64 `json:"fixedCost"`
	LeadTimeDays int32   `json:"leadTimeDays"`
}

// DefaultRoutes 为默认的运输方式目录，运行期间不会被修改
var DefaultRoutes = []Route{
	{ID: 1, Name: "Road Freight", FixedCost: 50, LeadTimeDays: 3},
	{ID: 2, Name: "Air Express", FixedCost: 200, LeadTimeDays: 1},
	{ID: 3, Name: "Sea Freight", FixedCost: 20, LeadTimeDays: 7},
}
