package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soldier-zzr/sqgl/internal/config"
	"github.com/soldier-zzr/sqgl/internal/reconcile"
	"github.com/soldier-zzr/sqgl/internal/service"
	"github.com/soldier-zzr/sqgl/internal/store"
	"github.com/soldier-zzr/sqgl/internal/watcher"
	"github.com/soldier-zzr/sqgl/pkg/monitor"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchUser string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "常驻监听目录自动导入CSV",
	Long: `周期扫描配置的待导入目录，新出现的CSV自动走对账流程。
开启auto_approve后直接提交，否则只输出预览日志。
同时提供Prometheus指标和健康检查端点。`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchUser, "user", "u", "", "操作人用户名（默认取配置里的watch.user）")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, orderStore, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	username := watchUser
	if username == "" {
		username = cfg.Watch.User
	}
	actor, err := cfg.FindUser(username)
	if err != nil {
		return err
	}

	log.Info("🚀 目录监听服务启动",
		zap.String("app_name", cfg.App.Name),
		zap.String("version", version),
		zap.String("environment", cfg.App.Environment),
		zap.String("operator", actor.OperatorName()),
		zap.String("driver", cfg.Store.Driver),
		zap.String("metrics", cfg.Metrics.GetAddress()),
		zap.String("health", cfg.Health.GetAddress()),
	)

	importSvc := service.NewImportService(orderStore, reconcile.NewEngine(log), log)
	w := watcher.New(&cfg.Watch, importSvc, actor, log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Start(ctx)
	}()

	systemCollector := monitor.NewSystemCollector(log)
	go systemCollector.Start(ctx)

	metricsServer := startMetricsServer(cfg, log)
	healthServer := startHealthServer(cfg, orderStore, log)

	log.Info("✅ 所有组件初始化完成，服务正常运行",
		zap.String("metrics", fmt.Sprintf("http://localhost%s%s", cfg.Metrics.GetAddress(), cfg.Metrics.Path)),
		zap.String("health", fmt.Sprintf("http://localhost%s%s", cfg.Health.GetAddress(), cfg.Health.Path)),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-watchErr:
		if err != nil {
			log.Error("目录监听器异常退出", zap.Error(err))
		}
	case sig := <-sigChan:
		log.Info("收到退出信号，开始优雅关闭...", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	gracefulShutdown(shutdownCtx, log, w, systemCollector, metricsServer, healthServer, orderStore)
	log.Info("✅ 服务已安全停止")
	return nil
}

func startMetricsServer(cfg *config.Config, log *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Metrics.GetAddress(),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("📊 Prometheus指标服务启动",
			zap.String("address", srv.Addr),
			zap.String("path", cfg.Metrics.Path))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics服务启动失败", zap.Error(err))
		}
	}()
	return srv
}

func startHealthServer(cfg *config.Config, orderStore store.OrderStore, log *zap.Logger) *http.Server {
	healthChecker := monitor.NewHealthChecker(orderStore, log)

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Health.Path, healthChecker.HandleHealth(time.Now()))
	mux.HandleFunc("/liveness", healthChecker.HandleLiveness())

	srv := &http.Server{
		Addr:              cfg.Health.GetAddress(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("💖 健康检查服务启动",
			zap.String("address", srv.Addr),
			zap.String("health", cfg.Health.Path),
			zap.String("liveness", "/liveness"))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("健康检查服务启动失败", zap.Error(err))
		}
	}()
	return srv
}

// gracefulShutdown 优雅关闭所有组件
func gracefulShutdown(
	ctx context.Context,
	log *zap.Logger,
	w *watcher.Watcher,
	systemCollector *monitor.SystemCollector,
	metricsServer *http.Server,
	healthServer *http.Server,
	orderStore store.OrderStore,
) {
	log.Info("开始执行优雅关闭...")

	w.Stop()
	log.Info("目录监听器已停止")

	systemCollector.Stop()
	log.Info("系统指标采集器已停止")

	if err := metricsServer.Shutdown(ctx); err != nil {
		log.Error("关闭Metrics服务失败", zap.Error(err))
	} else {
		log.Info("Metrics服务已关闭")
	}

	if err := healthServer.Shutdown(ctx); err != nil {
		log.Error("关闭健康检查服务失败", zap.Error(err))
	} else {
		log.Info("健康检查服务已关闭")
	}

	if err := orderStore.Close(); err != nil {
		log.Error("关闭订单库失败", zap.Error(err))
	} else {
		log.Info("订单库已关闭")
	}

	log.Info("所有组件已安全关闭")
}
