package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soldier-zzr/sqgl/internal/importer"
	"github.com/soldier-zzr/sqgl/internal/model"
	"github.com/soldier-zzr/sqgl/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 订单操作的业务错误
var (
	ErrPermissionDenied = errors.New("没有权限操作该订单")
	ErrInvalidAmount    = errors.New("请输入有效的金额")
	ErrMissingOwner     = errors.New("请填写负责人")
)

// OrderDraft 表单提交的订单内容，创建和编辑共用
type OrderDraft struct {
	ConversionDate     string
	OrderTime          string
	Phase              string
	GroupName          string
	Product            string
	SourceChannel      string
	SellPlatform       string
	FinalPaymentStatus string
	Nickname           string
	Phone              string
	FinalPhone         string
	Owner              string
	IPNo               string
	IPTime             string
	FollowUp           string
	Amount             float64
	Note               string
}

// OrderService 订单服务：增删改查加权限校验和状态留痕
type OrderService struct {
	store  store.OrderStore
	logger *zap.Logger
}

// NewOrderService 创建订单服务
func NewOrderService(orderStore store.OrderStore, logger *zap.Logger) *OrderService {
	return &OrderService{store: orderStore, logger: logger}
}

// List 列出操作人可见的订单
func (s *OrderService) List(ctx context.Context, actor *model.User) ([]*model.Order, error) {
	return s.store.List(ctx, actor)
}

// Create 新建订单并补记"新建"状态日志
func (s *OrderService) Create(ctx context.Context, actor *model.User, draft *OrderDraft) (*model.Order, error) {
	order, err := s.buildOrder(actor, draft)
	if err != nil {
		return nil, err
	}

	order.ID = uuid.NewString()
	order.CreatedBy = actor.Username
	order.StatusLogs = model.StatusLogList{
		model.NewStatusLog(model.StatusNew, order.FinalPaymentStatus, actor.OperatorName()),
	}

	if err := s.store.Insert(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("订单创建成功",
		zap.String("id", order.ID),
		zap.String("owner", order.Owner),
		zap.String("operator", actor.OperatorName()))
	return order, nil
}

// Update 编辑订单。仅在归一化后的尾款状态确实变化时追加状态日志
func (s *OrderService) Update(ctx context.Context, actor *model.User, id string, draft *OrderDraft) (*model.Order, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(existing) {
		return nil, ErrPermissionDenied
	}

	next, err := s.buildOrder(actor, draft)
	if err != nil {
		return nil, err
	}

	logs, changed := model.AppendTransition(
		existing.StatusLogs, existing.FinalPaymentStatus, draft.FinalPaymentStatus, actor.OperatorName())

	next.ID = existing.ID
	next.CreatedBy = existing.CreatedBy
	next.StatusLogs = logs
	next.CreatedAt = existing.CreatedAt

	if err := s.store.Replace(ctx, id, next); err != nil {
		return nil, err
	}

	s.logger.Info("订单更新成功",
		zap.String("id", id),
		zap.Bool("status_changed", changed),
		zap.String("operator", actor.OperatorName()))
	return next, nil
}

// Delete 删除单条订单
func (s *OrderService) Delete(ctx context.Context, actor *model.User, id string) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(existing) {
		return ErrPermissionDenied
	}
	return s.store.Delete(ctx, id)
}

// DeleteBatch 批量删除。逐条执行，无权限或已不存在的跳过；
// 持久化失败即停，返回已删除数量
func (s *OrderService) DeleteBatch(ctx context.Context, actor *model.User, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		existing, err := s.store.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		if !actor.CanAccess(existing) {
			continue
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return deleted, fmt.Errorf("批量删除中断（已删除%d条）: %w", deleted, err)
		}
		deleted++
	}

	s.logger.Info("批量删除完成",
		zap.Int("requested", len(ids)),
		zap.Int("deleted", deleted),
		zap.String("operator", actor.OperatorName()))
	return deleted, nil
}

// ExportCSV 把操作人可见的订单导出成飞书表头的CSV文本
func (s *OrderService) ExportCSV(ctx context.Context, actor *model.User) (string, error) {
	orders, err := s.store.List(ctx, actor)
	if err != nil {
		return "", err
	}
	return importer.WriteCSV(orders), nil
}

// buildOrder 校验表单并组装订单实体，不含身份和日志字段
func (s *OrderService) buildOrder(actor *model.User, draft *OrderDraft) (*model.Order, error) {
	if draft.Amount < 0 || math.IsNaN(draft.Amount) || math.IsInf(draft.Amount, 0) {
		return nil, ErrInvalidAmount
	}

	owner := strings.TrimSpace(draft.Owner)
	if owner == "" {
		owner = actor.DisplayName
	}
	if owner == "" {
		return nil, ErrMissingOwner
	}
	// 成员只能把订单挂在自己名下，改挂别人等于丢掉访问权
	if !actor.CanManageOwner(owner) {
		return nil, ErrPermissionDenied
	}

	sourceChannel := strings.TrimSpace(draft.SourceChannel)
	meta := model.DeriveAmountMeta(sourceChannel, draft.Amount)

	return &model.Order{
		ConversionDate:     draft.ConversionDate,
		OrderTime:          draft.OrderTime,
		Phase:              strings.TrimSpace(draft.Phase),
		GroupName:          strings.TrimSpace(draft.GroupName),
		Product:            strings.TrimSpace(draft.Product),
		SourceChannel:      sourceChannel,
		SellPlatform:       strings.TrimSpace(draft.SellPlatform),
		FinalPaymentStatus: model.NormalizeStatus(draft.FinalPaymentStatus),
		Nickname:           strings.TrimSpace(draft.Nickname),
		Phone:              model.NormalizePhone(strings.TrimSpace(draft.Phone)),
		FinalPhone:         strings.TrimSpace(draft.FinalPhone),
		Owner:              owner,
		IPNo:               strings.TrimSpace(draft.IPNo),
		IPTime:             draft.IPTime,
		FollowUp:           strings.TrimSpace(draft.FollowUp),
		Amount:             draft.Amount,
		AmountType:         meta.AmountType,
		CountedAmount:      meta.CountedAmount,
		Note:               strings.TrimSpace(draft.Note),
	}, nil
}
