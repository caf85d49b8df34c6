package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/soldier-zzr/sqgl/internal/importer"
	"github.com/soldier-zzr/sqgl/internal/model"
	"github.com/soldier-zzr/sqgl/internal/store"
	"github.com/soldier-zzr/sqgl/pkg/metrics"

	"go.uber.org/zap"
)

// QualifyingMarker 参与导入的订单其转化期数必须包含的标记
const QualifyingMarker = "起盘营"

// duplicateSampleLimit 预览里展示的重复示例上限
const duplicateSampleLimit = 5

// Engine 对账引擎：把导入候选按固定优先级分流，并把可新增部分合并入库
type Engine struct {
	logger *zap.Logger
}

// NewEngine 创建对账引擎
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Result 分流结果。四个分区互斥，一个候选只会落入最先命中的分区
type Result struct {
	Addable      []*importer.Candidate // 可新增
	Duplicate    []*importer.Candidate // 与存量或同批次重复
	NoPermission []*importer.Candidate // 操作人无权处理
	NonQipan     []*importer.Candidate // 非起盘营

	// existingKeys 存量去重键，提交时逐条登记新插入的键
	existingKeys map[string]bool
}

// Partition 对候选逐条分流。判定顺序固定：
// 非起盘营 → 无权限 → 重复 → 可新增；同批次内先被接收的候选
// 会压制其后出现的相同去重键
func (e *Engine) Partition(candidates []*importer.Candidate, existing []*model.Order, actor *model.User) *Result {
	existingKeys := make(map[string]bool, len(existing))
	for _, order := range existing {
		existingKeys[order.DedupKey()] = true
	}

	result := &Result{existingKeys: existingKeys}
	inBatch := make(map[string]bool)

	for _, c := range candidates {
		if !containsIgnoreCase(c.Order.Phase, QualifyingMarker) {
			result.NonQipan = append(result.NonQipan, c)
			continue
		}

		if !actor.CanManageOwner(c.Order.Owner) {
			result.NoPermission = append(result.NoPermission, c)
			continue
		}

		if existingKeys[c.Key] || inBatch[c.Key] {
			result.Duplicate = append(result.Duplicate, c)
			continue
		}

		inBatch[c.Key] = true
		result.Addable = append(result.Addable, c)
	}

	e.logger.Info("导入候选分流完成",
		zap.Int("addable", len(result.Addable)),
		zap.Int("duplicate", len(result.Duplicate)),
		zap.Int("no_permission", len(result.NoPermission)),
		zap.Int("non_qipan", len(result.NonQipan)))

	metrics.RecordImportPartition(len(result.Addable), len(result.Duplicate), len(result.NoPermission), len(result.NonQipan))

	return result
}

// Commit 把可新增候选逐条写入订单库。每条插入前补记"新建"状态日志，
// 插入成功后登记其去重键。中途失败即返回：批次可能已部分落库，
// 调用方必须从订单库重新加载权威状态，而不是信任本地集合
func (e *Engine) Commit(ctx context.Context, result *Result, orderStore store.OrderStore, actor *model.User) (int, error) {
	added := 0
	for _, c := range result.Addable {
		order := c.Order
		order.FinalPaymentStatus = model.NormalizeStatus(order.FinalPaymentStatus)
		order.StatusLogs = model.StatusLogList{
			model.NewStatusLog(model.StatusNew, order.FinalPaymentStatus, actor.OperatorName()),
		}

		if err := orderStore.Insert(ctx, &order); err != nil {
			metrics.RecordImportBatch("failed")
			return added, fmt.Errorf("写入订单失败（已入库%d条）: %w", added, err)
		}

		result.existingKeys[c.Key] = true
		added++
	}

	e.logger.Info("导入批次提交完成", zap.Int("added", added))
	metrics.RecordImportBatch("success")
	return added, nil
}

// DuplicateSamples 重复示例（最多5条），格式：日期 / 昵称 / 手机号
func (r *Result) DuplicateSamples() []string {
	limit := duplicateSampleLimit
	if len(r.Duplicate) < limit {
		limit = len(r.Duplicate)
	}
	samples := make([]string, 0, limit)
	for _, c := range r.Duplicate[:limit] {
		samples = append(samples, fmt.Sprintf("%s / %s / %s",
			orDash(c.Order.ConversionDate), orDash(c.Order.Nickname), orDash(c.Order.Phone)))
	}
	return samples
}

// PreviewMessage 提交前给人确认的预览文案
func (r *Result) PreviewMessage() string {
	lines := []string{
		"导入前预览：",
		fmt.Sprintf("可新增：%d 条", len(r.Addable)),
		fmt.Sprintf("重复跳过：%d 条", len(r.Duplicate)),
		fmt.Sprintf("无权限跳过：%d 条", len(r.NoPermission)),
		fmt.Sprintf("非起盘营跳过：%d 条", len(r.NonQipan)),
	}

	if samples := r.DuplicateSamples(); len(samples) > 0 {
		lines = append(lines, "", "重复示例（前5条）：")
		lines = append(lines, samples...)
	}

	return strings.Join(lines, "\n")
}

// SummaryMessage 提交后的完成文案
func (r *Result) SummaryMessage(added int) string {
	return fmt.Sprintf("导入完成：新增 %d 条，跳过重复 %d 条，无权限 %d 条，非起盘营 %d 条",
		added, len(r.Duplicate), len(r.NoPermission), len(r.NonQipan))
}

func containsIgnoreCase(value, keyword string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(keyword))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
