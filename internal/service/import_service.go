package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soldier-zzr/sqgl/internal/importer"
	"github.com/soldier-zzr/sqgl/internal/model"
	"github.com/soldier-zzr/sqgl/internal/reconcile"
	"github.com/soldier-zzr/sqgl/internal/store"
	"github.com/soldier-zzr/sqgl/pkg/metrics"

	"go.uber.org/zap"
)

// 导入的硬失败。单行映射被拒不算失败，只会体现在候选数量上
var (
	// ErrEmptyCSV 文本不足两行（缺表头或缺数据）
	ErrEmptyCSV = errors.New("CSV 内容为空")
	// ErrNoImportableRows 所有数据行都没映射出候选，多半是表头不对
	ErrNoImportableRows = errors.New("未识别到可导入数据，请检查表头")
)

// BatchRecorder 支持导入留痕的订单库实现该接口
type BatchRecorder interface {
	RecordImportBatch(ctx context.Context, batch *model.ImportBatch) error
}

// ImportPreview 预览结果：分流明细加解析统计，
// 提交前必须先把它交给人（或auto_approve配置）确认
type ImportPreview struct {
	Result         *reconcile.Result
	Source         string // 来源文件名
	RowCount       int    // 数据行数（不含表头）
	CandidateCount int    // 映射成功的候选数
}

// ImportService 导入服务：解析CSV、分流预览、确认后提交
type ImportService struct {
	store  store.OrderStore
	engine *reconcile.Engine
	logger *zap.Logger
}

// NewImportService 创建导入服务
func NewImportService(orderStore store.OrderStore, engine *reconcile.Engine, logger *zap.Logger) *ImportService {
	return &ImportService{
		store:  orderStore,
		engine: engine,
		logger: logger,
	}
}

// Preview 解析CSV文本并做分流预览，不写任何数据。
// 存量去重键取自操作人可见的订单集合
func (s *ImportService) Preview(ctx context.Context, csvText, source string, actor *model.User) (*ImportPreview, error) {
	rows := importer.Parse(csvText)
	if len(rows) < 2 {
		return nil, ErrEmptyCSV
	}

	hdr := importer.NewHeaderIndex(rows[0])
	candidates := importer.MapRows(hdr, rows[1:], actor)
	if len(candidates) == 0 {
		return nil, ErrNoImportableRows
	}

	existing, err := s.store.List(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("加载存量订单失败: %w", err)
	}

	result := s.engine.Partition(candidates, existing, actor)

	s.logger.Info("导入预览完成",
		zap.String("source", source),
		zap.String("operator", actor.OperatorName()),
		zap.Int("rows", len(rows)-1),
		zap.Int("candidates", len(candidates)))

	return &ImportPreview{
		Result:         result,
		Source:         source,
		RowCount:       len(rows) - 1,
		CandidateCount: len(candidates),
	}, nil
}

// Apply 提交预览里的可新增部分。逐条入库，失败即停：
// 此时批次可能已部分落库，调用方必须从订单库重新加载权威状态。
// 无论成败都会尝试写导入留痕
func (s *ImportService) Apply(ctx context.Context, preview *ImportPreview, actor *model.User) (int, error) {
	start := time.Now()
	added, err := s.engine.Commit(ctx, preview.Result, s.store, actor)
	metrics.RecordImportDuration(time.Since(start).Seconds())

	s.recordBatch(ctx, preview, actor, added)

	if err != nil {
		return added, err
	}
	return added, nil
}

// recordBatch 导入留痕，仅在订单库支持时写入，失败只记日志
func (s *ImportService) recordBatch(ctx context.Context, preview *ImportPreview, actor *model.User, added int) {
	recorder, ok := s.store.(BatchRecorder)
	if !ok {
		return
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"rowCount":         preview.RowCount,
		"candidateCount":   preview.CandidateCount,
		"duplicateSamples": preview.Result.DuplicateSamples(),
	})

	batch := &model.ImportBatch{
		Operator:     actor.OperatorName(),
		FileName:     preview.Source,
		Added:        added,
		Duplicate:    len(preview.Result.Duplicate),
		NoPermission: len(preview.Result.NoPermission),
		NonQipan:     len(preview.Result.NonQipan),
		Detail:       detail,
	}
	if err := recorder.RecordImportBatch(ctx, batch); err != nil {
		s.logger.Warn("导入留痕写入失败", zap.Error(err))
	}
}
