package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus指标定义

var (
	// 导入指标
	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sqgl_import_rows_total",
		Help: "导入候选按分区统计的累计行数",
	}, []string{"partition"})

	ImportBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sqgl_import_batch_total",
		Help: "导入批次提交的累计次数",
	}, []string{"status"})

	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sqgl_import_duration_seconds",
		Help:    "单个CSV从解析到提交的耗时（秒）",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})

	// 订单库指标
	StoreOpTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sqgl_store_op_total",
		Help: "订单库操作的累计次数",
	}, []string{"op", "status"})

	StoreOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sqgl_store_op_duration_seconds",
		Help:    "订单库操作耗时（秒）",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"op"})

	// 目录监听指标
	WatcherScanTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sqgl_watcher_scan_total",
		Help: "监听目录扫描的累计次数",
	})

	WatcherFileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sqgl_watcher_file_total",
		Help: "监听目录处理文件的累计数量",
	}, []string{"status"})

	// 系统指标
	SystemUptime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sqgl_system_uptime_seconds",
		Help: "系统运行时长（秒）",
	})

	SystemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sqgl_system_goroutines",
		Help: "当前Goroutine数量",
	})

	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sqgl_system_memory_usage_bytes",
		Help: "内存使用量（字节）",
	})
)

// RecordImportPartition 记录一次分流结果
func RecordImportPartition(addable, duplicate, noPermission, nonQipan int) {
	ImportRowsTotal.WithLabelValues("addable").Add(float64(addable))
	ImportRowsTotal.WithLabelValues("duplicate").Add(float64(duplicate))
	ImportRowsTotal.WithLabelValues("no_permission").Add(float64(noPermission))
	ImportRowsTotal.WithLabelValues("non_qipan").Add(float64(nonQipan))
}

// RecordImportBatch 记录批次提交结果
func RecordImportBatch(status string) {
	ImportBatchTotal.WithLabelValues(status).Inc()
}

// RecordImportDuration 记录单个CSV的处理耗时
func RecordImportDuration(seconds float64) {
	ImportDuration.Observe(seconds)
}

// RecordStoreOp 记录订单库操作
func RecordStoreOp(op, status string, duration float64) {
	StoreOpTotal.WithLabelValues(op, status).Inc()
	StoreOpDuration.WithLabelValues(op).Observe(duration)
}

// RecordWatcherScan 记录一次目录扫描
func RecordWatcherScan() {
	WatcherScanTotal.Inc()
}

// RecordWatcherFile 记录监听目录处理的文件
func RecordWatcherFile(status string) {
	WatcherFileTotal.WithLabelValues(status).Inc()
}

// UpdateSystemMetrics 更新系统指标
func UpdateSystemMetrics(uptime float64, goroutines int, memoryUsage uint64) {
	SystemUptime.Set(uptime)
	SystemGoroutines.Set(float64(goroutines))
	SystemMemoryUsage.Set(float64(memoryUsage))
}
