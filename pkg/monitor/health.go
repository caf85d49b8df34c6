package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger 可被健康检查探测的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker 健康检查器，探测订单库连通性
type HealthChecker struct {
	store  Pinger
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(store Pinger, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		store:  store,
		logger: logger,
	}
}

// HealthStatus 健康状态
type HealthStatus struct {
	Status     string                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Uptime     float64                    `json:"uptime_seconds"`
	Components map[string]ComponentStatus `json:"components"`
}

// ComponentStatus 组件状态
type ComponentStatus struct {
	Status  string  `json:"status"` // healthy, unhealthy
	Message string  `json:"message,omitempty"`
	Latency float64 `json:"latency_ms,omitempty"`
}

// Check 执行健康检查
func (h *HealthChecker) Check(ctx context.Context, startTime time.Time) *HealthStatus {
	status := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().Format(time.RFC3339),
		Uptime:     time.Since(startTime).Seconds(),
		Components: make(map[string]ComponentStatus),
	}

	storeStatus := h.checkStore(ctx)
	status.Components["store"] = storeStatus
	if storeStatus.Status != "healthy" {
		status.Status = "unhealthy"
	}

	return status
}

// checkStore 检查订单库连通性
func (h *HealthChecker) checkStore(ctx context.Context) ComponentStatus {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("订单库Ping失败", zap.Error(err))
		return ComponentStatus{
			Status:  "unhealthy",
			Message: err.Error(),
		}
	}

	return ComponentStatus{
		Status:  "healthy",
		Latency: float64(time.Since(start).Milliseconds()),
	}
}

// HandleHealth HTTP处理函数
func (h *HealthChecker) HandleHealth(startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context(), startTime)

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "healthy" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if err := json.NewEncoder(w).Encode(status); err != nil {
			h.logger.Error("编码健康检查响应失败", zap.Error(err))
		}
	}
}

// HandleLiveness 存活检查（简单返回200）
func (h *HealthChecker) HandleLiveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"alive"}`))
	}
}
