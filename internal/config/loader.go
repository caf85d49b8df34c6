package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件路径
	v.SetConfigFile(configPath)

	// 设置配置文件类型
	v.SetConfigType("yaml")

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 设置默认值
	setDefaults(&cfg)

	// 验证配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(cfg *Config) {
	// 应用配置默认值
	if cfg.App.Name == "" {
		cfg.App.Name = "sqgl"
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}

	// 订单库默认值：本地文件库
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverFile
	}
	if cfg.Store.Driver == DriverFile && cfg.Store.FilePath == "" {
		cfg.Store.FilePath = "data/db.json"
	}
	if cfg.Store.MySQL.MaxOpenConns == 0 {
		cfg.Store.MySQL.MaxOpenConns = 100
	}
	if cfg.Store.MySQL.MaxIdleConns == 0 {
		cfg.Store.MySQL.MaxIdleConns = 10
	}
	if cfg.Store.MySQL.ConnMaxLifetime == 0 {
		cfg.Store.MySQL.ConnMaxLifetime = 3600
	}

	// 监听目录默认值
	if cfg.Watch.Interval == 0 {
		cfg.Watch.Interval = 30
	}
	if cfg.Watch.InboxDir == "" {
		cfg.Watch.InboxDir = "data/inbox"
	}
	if cfg.Watch.DoneDir == "" {
		cfg.Watch.DoneDir = "data/done"
	}
	if cfg.Watch.FailedDir == "" {
		cfg.Watch.FailedDir = "data/failed"
	}

	// 监控配置默认值
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// 健康检查配置默认值
	if cfg.Health.Port == 0 {
		cfg.Health.Port = 8080
	}
	if cfg.Health.Path == "" {
		cfg.Health.Path = "/health"
	}
}
