package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soldier-zzr/sqgl/internal/model"
	"github.com/soldier-zzr/sqgl/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormStore 数据库订单库，mysql和sqlite共用。
// "插到最前"体现为按创建时间倒序列出
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore 创建数据库订单库
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	return &GormStore{db: db, logger: logger}
}

// List 按操作人可见范围列出订单，最新的排在最前
func (s *GormStore) List(ctx context.Context, actor *model.User) ([]*model.Order, error) {
	start := time.Now()
	query := s.db.WithContext(ctx).Model(&model.Order{}).Order("created_at DESC")
	if actor != nil && !actor.IsAdmin() {
		query = query.Where("owner = ?", actor.DisplayName)
	}

	var orders []*model.Order
	if err := query.Find(&orders).Error; err != nil {
		metrics.RecordStoreOp("list", "failed", time.Since(start).Seconds())
		return nil, fmt.Errorf("查询订单列表失败: %w", err)
	}

	for _, order := range orders {
		order.Sanitize()
	}
	metrics.RecordStoreOp("list", "success", time.Since(start).Seconds())
	return orders, nil
}

// Get 按ID取单条订单
func (s *GormStore) Get(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	order.Sanitize()
	return &order, nil
}

// Insert 写入新订单
func (s *GormStore) Insert(ctx context.Context, order *model.Order) error {
	start := time.Now()
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		metrics.RecordStoreOp("insert", "failed", time.Since(start).Seconds())
		return fmt.Errorf("写入订单失败: %w", err)
	}
	metrics.RecordStoreOp("insert", "success", time.Since(start).Seconds())
	return nil
}

// Replace 整单替换
func (s *GormStore) Replace(ctx context.Context, id string, order *model.Order) error {
	order.ID = id
	result := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).
		Select("*").Omit("id", "created_at").Updates(order)
	if result.Error != nil {
		return fmt.Errorf("更新订单失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 按ID删除
func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Order{})
	if result.Error != nil {
		return fmt.Errorf("删除订单失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordImportBatch 记一条导入留痕
func (s *GormStore) RecordImportBatch(ctx context.Context, batch *model.ImportBatch) error {
	if err := s.db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("写入导入留痕失败: %w", err)
	}
	return nil
}

// Ping 连通性检查
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭底层连接
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.logger.Info("正在关闭数据库连接...")
	return sqlDB.Close()
}
