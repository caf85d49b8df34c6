package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/soldier-zzr/sqgl/internal/model"

	"go.uber.org/zap"
)

// orderDocument 文件库的持久化格式：单个JSON文档
type orderDocument struct {
	Orders []*model.Order `json:"orders"`
}

// FileStore 文件订单库：整库存成一个JSON文档，新订单插在最前。
// 单进程内用互斥锁串行化读写
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileStore 创建文件订单库，文件不存在时初始化成空库
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{path: path, logger: logger}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
		if err := s.write(&orderDocument{Orders: []*model.Order{}}); err != nil {
			return nil, fmt.Errorf("初始化订单文件失败: %w", err)
		}
		logger.Info("订单文件不存在，已初始化空库", zap.String("path", path))
	}

	return s, nil
}

// List 按操作人可见范围列出订单
func (s *FileStore) List(ctx context.Context, actor *model.User) ([]*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	orders := make([]*model.Order, 0, len(doc.Orders))
	for _, order := range doc.Orders {
		if actor != nil && !actor.IsAdmin() && order.Owner != actor.DisplayName {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// Get 按ID取单条订单
func (s *FileStore) Get(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for _, order := range doc.Orders {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, ErrNotFound
}

// Insert 新订单插到集合最前面
func (s *FileStore) Insert(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Orders = append([]*model.Order{order}, doc.Orders...)
	return s.write(doc)
}

// Replace 整单替换
func (s *FileStore) Replace(ctx context.Context, id string, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	for i, existing := range doc.Orders {
		if existing.ID == id {
			doc.Orders[i] = order
			return s.write(doc)
		}
	}
	return ErrNotFound
}

// Delete 按ID删除
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	for i, existing := range doc.Orders {
		if existing.ID == id {
			doc.Orders = append(doc.Orders[:i], doc.Orders[i+1:]...)
			return s.write(doc)
		}
	}
	return ErrNotFound
}

// Ping 确认订单文件可访问
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

// Close 文件库无持久连接，直接返回
func (s *FileStore) Close() error {
	return nil
}

// read 读取整个文档并做防御性清洗
func (s *FileStore) read() (*orderDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("读取订单文件失败: %w", err)
	}

	var doc orderDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析订单文件失败: %w", err)
	}
	if doc.Orders == nil {
		doc.Orders = []*model.Order{}
	}
	for _, order := range doc.Orders {
		order.Sanitize()
	}
	return &doc, nil
}

// write 先写临时文件再改名，避免写一半留下坏文档
func (s *FileStore) write(doc *orderDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化订单文件失败: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入订单文件失败: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("替换订单文件失败: %w", err)
	}
	return nil
}
