package cmd

import (
	"fmt"
	"os"

	"github.com/soldier-zzr/sqgl/internal/config"
	"github.com/soldier-zzr/sqgl/internal/logger"
	"github.com/soldier-zzr/sqgl/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sqgl",
	Short: "社群转化订单管理工具",
	Long: `社群转化订单管理工具。

把飞书表格导出的成交记录CSV对账合并进订单库：
自动归一化手机号和尾款状态、按渠道分类金额、
跳过重复和无权限的记录，并保留每笔订单的状态变更留痕。`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "配置文件路径")
}

// setup 加载配置、初始化日志和订单库，所有子命令共用
func setup() (*config.Config, *zap.Logger, store.OrderStore, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:         cfg.App.LogLevel,
		IsDevelopment: cfg.IsDevelopment(),
		FilePath:      cfg.App.LogFile,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	orderStore, err := newStore(cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("初始化订单库失败: %w", err)
	}

	return cfg, log, orderStore, nil
}

// newStore 按配置的驱动打开订单库
func newStore(cfg *config.Config, log *zap.Logger) (store.OrderStore, error) {
	switch cfg.Store.Driver {
	case config.DriverFile:
		return store.NewFileStore(cfg.Store.FilePath, log)
	case config.DriverMySQL, config.DriverSQLite:
		db, err := store.OpenDatabase(&cfg.Store, log)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db, log), nil
	default:
		return nil, fmt.Errorf("不支持的订单库驱动: %s", cfg.Store.Driver)
	}
}
