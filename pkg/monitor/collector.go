package monitor

import (
	"context"
	"runtime"
	"time"

	"github.com/soldier-zzr/sqgl/pkg/metrics"

	"go.uber.org/zap"
)

// SystemCollector 系统指标采集器
type SystemCollector struct {
	logger    *zap.Logger
	startTime time.Time
	stopChan  chan struct{}
}

// NewSystemCollector 创建系统指标采集器
func NewSystemCollector(logger *zap.Logger) *SystemCollector {
	return &SystemCollector{
		logger:    logger,
		startTime: time.Now(),
		stopChan:  make(chan struct{}),
	}
}

// Start 启动采集器，每15秒采集一次
func (c *SystemCollector) Start(ctx context.Context) {
	c.logger.Info("系统指标采集器启动")

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("系统指标采集器收到停止信号")
			return

		case <-c.stopChan:
			c.logger.Info("系统指标采集器被手动停止")
			return

		case <-ticker.C:
			c.collect()
		}
	}
}

// Stop 停止采集器
func (c *SystemCollector) Stop() {
	c.logger.Info("正在停止系统指标采集器...")
	close(c.stopChan)
}

// collect 采集系统指标
func (c *SystemCollector) collect() {
	uptime := time.Since(c.startTime).Seconds()
	goroutines := runtime.NumGoroutine()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics.UpdateSystemMetrics(uptime, goroutines, memStats.Alloc)

	c.logger.Debug("系统指标采集完成",
		zap.Float64("uptime_seconds", uptime),
		zap.Int("goroutines", goroutines),
		zap.Uint64("memory_bytes", memStats.Alloc),
	)
}
