package store

import (
	"context"
	"errors"

	"github.com/soldier-zzr/sqgl/internal/model"
)

// ErrNotFound 订单不存在
var ErrNotFound = errors.New("订单不存在")

// OrderStore 订单库。List对非管理员只返回本人名下订单，
// 与对账引擎的权限分流互为双保险
type OrderStore interface {
	// List 按操作人可见范围列出订单，最新的排在最前
	List(ctx context.Context, actor *model.User) ([]*model.Order, error)
	// Get 按ID取单条订单，不存在返回ErrNotFound
	Get(ctx context.Context, id string) (*model.Order, error)
	// Insert 新订单插到集合最前面
	Insert(ctx context.Context, order *model.Order) error
	// Replace 整单替换，不存在返回ErrNotFound
	Replace(ctx context.Context, id string, order *model.Order) error
	// Delete 按ID删除，不存在返回ErrNotFound
	Delete(ctx context.Context, id string) error
	// Ping 连通性检查
	Ping(ctx context.Context) error
	// Close 释放底层资源
	Close() error
}
