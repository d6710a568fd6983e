package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultForecastTTL = time.Hour

// Predictor 是被缓存的需求预测接口
type Predictor interface {
	PredictSingleItem(productName string, year, month, holidays int32) (int64, error)
}

// Forecaster 在预测模型前加一层 redis 缓存，redis 不可用时直接调用模型
type Forecaster struct {
	rdb       redis.Cmdable
	inner     Predictor
	ttl       time.Duration
	opTimeout time.Duration
}

func NewForecaster(rdb redis.Cmdable, inner Predictor, ttl, opTimeout time.Duration) *Forecaster {
	if ttl <= 0 {
		ttl = defaultForecastTTL
	}
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}

	return &Forecaster{
		rdb:       rdb,
		inner:     inner,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

func forecastKey(productName string, year, month, holidays int32) string {
	return fmt.Sprintf("forecast_%s_%d_%d_%d", productName, year, month, holidays)
}

func (f *Forecaster) PredictSingleItem(productName string, year, month, holidays int32) (int64, error) {
	key := forecastKey(productName, year, month, holidays)

	ctx, cancel := context.WithTimeout(context.Background(), f.opTimeout)
	defer cancel()

	cached, err := f.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if v, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
			return v, nil
		}
		slog.Warn("缓存中的预测值无法解析", "key", key, "value", cached)
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("读取预测缓存失败", "key", key, "error", err)
	}

	v, err := f.inner.PredictSingleItem(productName, year, month, holidays)
	if err != nil {
		// 错误不缓存
		return 0, err
	}

	if err := f.rdb.Set(ctx, key, v, f.ttl).Err(); err != nil {
		slog.Warn("写入预测缓存失败", "key", key, "error", err)
	}

	return v, nil
}

// Invalidate 删除所有预测缓存，在重新训练模型后调用
func (f *Forecaster) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := f.rdb.Scan(ctx, cursor, "forecast_*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := f.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
