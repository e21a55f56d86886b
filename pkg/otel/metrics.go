package otel

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	engineMetrics     *EngineMetrics
	engineMetricsOnce sync.Once
	restingOrders     atomic.Int64
)

// EngineMetrics holds the metric instruments for order book monitoring
type EngineMetrics struct {
	// Traffic metrics
	ordersTotal metric.Int64Counter
	tradesTotal metric.Int64Counter

	// Latency metrics
	matchDuration metric.Float64Histogram
}

// initEngineMetrics creates the engine instruments on the given meter
func initEngineMetrics(meter metric.Meter) error {
	var initErr error

	engineMetricsOnce.Do(func() {
		m := &EngineMetrics{}

		m.ordersTotal, initErr = meter.Int64Counter(
			"book.orders.total",
			metric.WithDescription("Total number of order operations processed"),
			metric.WithUnit("{order}"),
		)
		if initErr != nil {
			return
		}

		m.tradesTotal, initErr = meter.Int64Counter(
			"book.trades.total",
			metric.WithDescription("Total number of trades produced by matching"),
			metric.WithUnit("{trade}"),
		)
		if initErr != nil {
			return
		}

		m.matchDuration, initErr = meter.Float64Histogram(
			"book.match.duration",
			metric.WithDescription("Duration of one matching pass"),
			metric.WithUnit("s"),
		)
		if initErr != nil {
			return
		}

		_, initErr = meter.Int64ObservableGauge(
			"book.resting_orders",
			metric.WithDescription("Number of orders currently resting in the book"),
			metric.WithUnit("{order}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(restingOrders.Load())
				return nil
			}),
		)
		if initErr != nil {
			return
		}

		engineMetrics = m
	})

	return initErr
}

// RecordOrderProcessed counts one add/cancel/modify operation
func RecordOrderProcessed(ctx context.Context, op string) {
	if engineMetrics == nil {
		return
	}
	engineMetrics.ordersTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordMatch records the duration of one matching pass and the trades it produced
func RecordMatch(ctx context.Context, d time.Duration, trades int) {
	if engineMetrics == nil {
		return
	}
	engineMetrics.matchDuration.Record(ctx, d.Seconds())
	if trades > 0 {
		engineMetrics.tradesTotal.Add(ctx, int64(trades))
	}
}

// UpdateRestingOrders publishes the current resting-order count
func UpdateRestingOrders(n int64) {
	restingOrders.Store(n)
}
