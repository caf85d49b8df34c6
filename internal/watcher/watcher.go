package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soldier-zzr/sqgl/internal/config"
	"github.com/soldier-zzr/sqgl/internal/model"
	"github.com/soldier-zzr/sqgl/internal/service"
	"github.com/soldier-zzr/sqgl/pkg/metrics"

	"go.uber.org/zap"
)

// Watcher 目录监听器：周期扫描待导入目录，把CSV文件走一遍
// 预览/提交流程，处理完归档到完成或失败目录
type Watcher struct {
	cfg       *config.WatchConfig
	importSvc *service.ImportService
	actor     *model.User
	logger    *zap.Logger
	stopChan  chan struct{}

	// previewed 本次运行内已预览过的待确认文件，避免每个周期重复刷日志
	previewed map[string]bool
}

// New 创建目录监听器
func New(cfg *config.WatchConfig, importSvc *service.ImportService, actor *model.User, logger *zap.Logger) *Watcher {
	return &Watcher{
		cfg:       cfg,
		importSvc: importSvc,
		actor:     actor,
		logger:    logger,
		stopChan:  make(chan struct{}),
		previewed: make(map[string]bool),
	}
}

// Start 启动监听循环，阻塞直到ctx取消或Stop被调用
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.ensureDirs(); err != nil {
		return err
	}

	w.logger.Info("目录监听器启动",
		zap.String("inbox", w.cfg.InboxDir),
		zap.Duration("interval", w.cfg.GetInterval()),
		zap.Bool("auto_approve", w.cfg.AutoApprove),
		zap.String("operator", w.actor.OperatorName()))

	ticker := time.NewTicker(w.cfg.GetInterval())
	defer ticker.Stop()

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("目录监听器收到停止信号")
			return nil

		case <-w.stopChan:
			w.logger.Info("目录监听器被手动停止")
			return nil

		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// Stop 停止监听循环
func (w *Watcher) Stop() {
	w.logger.Info("正在停止目录监听器...")
	close(w.stopChan)
}

func (w *Watcher) ensureDirs() error {
	for _, dir := range []string{w.cfg.InboxDir, w.cfg.DoneDir, w.cfg.FailedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建监听目录失败: %w", err)
		}
	}
	return nil
}

// scan 扫一遍待导入目录，逐个处理CSV文件
func (w *Watcher) scan(ctx context.Context) {
	metrics.RecordWatcherScan()

	entries, err := os.ReadDir(w.cfg.InboxDir)
	if err != nil {
		w.logger.Error("读取待导入目录失败", zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		w.processFile(ctx, filepath.Join(w.cfg.InboxDir, entry.Name()))
	}
}

// processFile 处理单个文件。panic只影响当前文件，不会拖垮监听循环
func (w *Watcher) processFile(ctx context.Context, path string) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("处理文件时发生panic",
				zap.String("file", path),
				zap.Any("panic", r))
			w.archive(path, w.cfg.FailedDir)
			metrics.RecordWatcherFile("panic")
		}
	}()

	if !w.cfg.AutoApprove && w.previewed[path] {
		w.logger.Debug("文件已预览过，等待人工导入", zap.String("file", path))
		return
	}

	w.logger.Info("开始处理文件", zap.String("file", path))

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error("读取文件失败", zap.String("file", path), zap.Error(err))
		w.archive(path, w.cfg.FailedDir)
		metrics.RecordWatcherFile("failed")
		return
	}

	preview, err := w.importSvc.Preview(ctx, string(data), filepath.Base(path), w.actor)
	if err != nil {
		// 空文件和表头不对都是文件本身的问题，归档到失败目录
		if errors.Is(err, service.ErrEmptyCSV) || errors.Is(err, service.ErrNoImportableRows) {
			w.logger.Warn("文件内容无法导入", zap.String("file", path), zap.Error(err))
			w.archive(path, w.cfg.FailedDir)
			metrics.RecordWatcherFile("rejected")
			return
		}
		w.logger.Error("导入预览失败", zap.String("file", path), zap.Error(err))
		metrics.RecordWatcherFile("failed")
		return
	}

	w.logger.Info("文件预览完成",
		zap.String("file", path),
		zap.Int("addable", len(preview.Result.Addable)),
		zap.Int("duplicate", len(preview.Result.Duplicate)),
		zap.Int("no_permission", len(preview.Result.NoPermission)),
		zap.Int("non_qipan", len(preview.Result.NonQipan)))

	if !w.cfg.AutoApprove {
		w.previewed[path] = true
		w.logger.Warn("未开启auto_approve，仅预览不提交，文件保留在待导入目录",
			zap.String("file", path))
		return
	}

	added, err := w.importSvc.Apply(ctx, preview, w.actor)
	if err != nil {
		w.logger.Error("导入提交失败",
			zap.String("file", path),
			zap.Int("added", added),
			zap.Error(err))
		w.archive(path, w.cfg.FailedDir)
		metrics.RecordWatcherFile("failed")
		return
	}

	w.logger.Info("文件导入完成",
		zap.String("file", path),
		zap.String("summary", preview.Result.SummaryMessage(added)))
	w.archive(path, w.cfg.DoneDir)
	metrics.RecordWatcherFile("done")
}

// archive 把文件移入归档目录，文件名加时间戳前缀避免覆盖
func (w *Watcher) archive(path, dir string) {
	target := filepath.Join(dir, time.Now().Format("20060102_150405")+"_"+filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		w.logger.Error("归档文件失败",
			zap.String("file", path),
			zap.String("target", target),
			zap.Error(err))
	}
}
