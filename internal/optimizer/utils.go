package optimizer

// clamp 将 v 限制在 [lo, hi] 之间
func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// searchBounds 返回初始化时 reorderPoint 与 safetyStock 的上界
func searchBounds(predictedDemand float64) (int, int) {
	return int(predictedDemand), int(0.5 * predictedDemand)
}
