package config

import (
	"fmt"
	"time"

	"github.com/soldier-zzr/sqgl/internal/model"
)

// 订单库驱动
const (
	DriverFile   = "file"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Store   StoreConfig   `mapstructure:"store"`
	Users   []UserConfig  `mapstructure:"users"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"` // 为空则只输出到stdout
}

// StoreConfig 订单库配置
type StoreConfig struct {
	Driver     string      `mapstructure:"driver"`      // file | mysql | sqlite
	FilePath   string      `mapstructure:"file_path"`   // file驱动的JSON文档路径
	SQLitePath string      `mapstructure:"sqlite_path"` // sqlite驱动的库文件路径
	MySQL      MySQLConfig `mapstructure:"mysql"`
}

// MySQLConfig MySQL连接配置
type MySQLConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// GetDSN 获取数据库连接字符串
func (c *MySQLConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// GetMaxLifetime 获取连接最大生命周期
func (c *MySQLConfig) GetMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Second
}

// UserConfig 团队成员配置
type UserConfig struct {
	Username    string `mapstructure:"username"`
	DisplayName string `mapstructure:"display_name"`
	Role        string `mapstructure:"role"` // admin | member
}

// WatchConfig 导入目录监听配置
type WatchConfig struct {
	InboxDir    string `mapstructure:"inbox_dir"`    // 待导入CSV目录
	DoneDir     string `mapstructure:"done_dir"`     // 导入成功归档目录
	FailedDir   string `mapstructure:"failed_dir"`   // 导入失败归档目录
	Interval    int    `mapstructure:"interval"`     // 扫描间隔（秒）
	AutoApprove bool   `mapstructure:"auto_approve"` // 是否跳过人工确认直接提交
	User        string `mapstructure:"user"`         // 以哪个成员身份导入
}

// GetInterval 获取扫描间隔
func (c *WatchConfig) GetInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

// GetAddress 获取监控地址
func (c *MetricsConfig) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

// HealthConfig 健康检查配置
type HealthConfig struct {
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

// GetAddress 获取健康检查地址
func (c *HealthConfig) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate 验证配置
func (cfg *Config) Validate() error {
	switch cfg.Store.Driver {
	case DriverFile:
		if cfg.Store.FilePath == "" {
			return fmt.Errorf("file驱动必须配置订单文件路径")
		}
	case DriverMySQL:
		if cfg.Store.MySQL.Host == "" {
			return fmt.Errorf("数据库地址不能为空")
		}
		if cfg.Store.MySQL.Database == "" {
			return fmt.Errorf("数据库名称不能为空")
		}
	case DriverSQLite:
		if cfg.Store.SQLitePath == "" {
			return fmt.Errorf("sqlite驱动必须配置库文件路径")
		}
	default:
		return fmt.Errorf("不支持的订单库驱动: %s", cfg.Store.Driver)
	}

	if len(cfg.Users) == 0 {
		return fmt.Errorf("至少要配置一个成员")
	}
	seen := make(map[string]bool, len(cfg.Users))
	for _, u := range cfg.Users {
		if u.Username == "" || u.DisplayName == "" {
			return fmt.Errorf("成员的username和display_name不能为空")
		}
		if u.Role != model.RoleAdmin && u.Role != model.RoleMember {
			return fmt.Errorf("成员 %s 的角色必须是 admin 或 member", u.Username)
		}
		if seen[u.Username] {
			return fmt.Errorf("成员 %s 重复配置", u.Username)
		}
		seen[u.Username] = true
	}

	return nil
}

// FindUser 按用户名找到操作人，找不到返回错误
func (cfg *Config) FindUser(username string) (*model.User, error) {
	for _, u := range cfg.Users {
		if u.Username == username {
			return &model.User{
				Username:    u.Username,
				DisplayName: u.DisplayName,
				Role:        u.Role,
			}, nil
		}
	}
	return nil, fmt.Errorf("未配置的成员: %s", username)
}

// IsDevelopment 是否开发环境
func (cfg *Config) IsDevelopment() bool {
	return cfg.App.Environment == "development"
}

// IsProduction 是否生产环境
func (cfg *Config) IsProduction() bool {
	return cfg.App.Environment == "production"
}
