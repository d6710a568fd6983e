package domain

// OptimizationJob 是通过消息队列投递给 worker 的批量优化任务
type OptimizationJob struct {
	Category string `json:"category"`
	Year     int32  `json:"year"`
	Month    int32  `json:"month"`
	Holidays int32  `json:"holidays"`
	Email    string `json:"email"`
}

type OptimizationOutcome struct {
	Product         string  `json:"product"`
	PredictedDemand int64   `json:"predictedDemand"`
	CurrentStock    int64   `json:"currentStock"`
	ReorderPoint    int64   `json:"reorderPoint"`
	SafetyStock     int64   `json:"safetyStock"`
	OptimalRoute    string  `json:"optimalRoute"`
	EstimatedCost   float64 `json:"estimatedCost"`
}
