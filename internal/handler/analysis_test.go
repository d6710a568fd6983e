package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDemand(t *testing.T) {
	env := newTestEnv(t)

	_, resp := env.do(t, http.MethodPost, "/analysis/demand", map[string]any{
		"year": 2024, "month": 7, "holidays": 2,
	}, env.tokenCookie(t, "planner"))
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)

	sales := data["salesData"].(map[string]any)
	assert.EqualValues(t, 3000, sales["totalSold"])
	assert.Len(t, sales["trend"], 30)

	// Ghost 没有参与训练，被跳过
	analysis := data["productAnalysis"].([]any)
	require.Len(t, analysis, 2)

	bread := analysis[0].(map[string]any)
	assert.Equal(t, "Bakery", bread["category"])
	assert.Equal(t, "Bread", bread["product"])
	assert.EqualValues(t, 0, bread["reorderAmount"])

	cola := analysis[1].(map[string]any)
	assert.Equal(t, "Cola", cola["product"])
	assert.EqualValues(t, 80, cola["reorderAmount"])
	assert.InDelta(t, 2.5, cola["price"], 1e-9)
	assert.InDelta(t, 1.75, cola["cost"], 1e-9)
}

func TestAnalyzeDemandNotTrained(t *testing.T) {
	env := newTestEnv(t)
	env.forecaster.notTrained = true

	_, resp := env.do(t, http.MethodPost, "/analysis/demand", map[string]any{
		"year": 2024, "month": 7,
	}, env.tokenCookie(t, "planner"))
	assert.False(t, resp.Success)
	assert.Equal(t, "需求预测模型未训练", resp.Message)
}
