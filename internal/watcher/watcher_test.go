package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/soldier-zzr/sqgl/internal/config"
	"github.com/soldier-zzr/sqgl/internal/reconcile"
	"github.com/soldier-zzr/sqgl/internal/service"
	"github.com/soldier-zzr/sqgl/internal/store"
	"github.com/soldier-zzr/sqgl/internal/testutil"
)

const watcherCSV = `成交日期,转化期数,微信昵称,手机号,筛选人,尾款情况
2026-03-05,起盘营3期,小王,13800001111,管理员,已支付`

func newTestWatcher(t *testing.T, autoApprove bool) (*Watcher, *config.WatchConfig, store.OrderStore) {
	t.Helper()
	log := testutil.NewTestLogger(t)

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"), log)
	if err != nil {
		t.Fatalf("创建文件库失败: %v", err)
	}

	base := t.TempDir()
	cfg := &config.WatchConfig{
		InboxDir:    filepath.Join(base, "inbox"),
		DoneDir:     filepath.Join(base, "done"),
		FailedDir:   filepath.Join(base, "failed"),
		Interval:    1,
		AutoApprove: autoApprove,
	}

	svc := service.NewImportService(st, reconcile.NewEngine(log), log)
	w := New(cfg, svc, testutil.AdminUser(), log)
	if err := w.ensureDirs(); err != nil {
		t.Fatalf("创建监听目录失败: %v", err)
	}
	return w, cfg, st
}

func dirCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读目录失败: %v", err)
	}
	return len(entries)
}

func TestWatcher_Scan(t *testing.T) {
	ctx := context.Background()

	t.Run("auto_approve开启时导入并归档到完成目录", func(t *testing.T) {
		w, cfg, st := newTestWatcher(t, true)

		path := filepath.Join(cfg.InboxDir, "orders.csv")
		if err := os.WriteFile(path, []byte(watcherCSV), 0o644); err != nil {
			t.Fatalf("写入测试文件失败: %v", err)
		}

		w.scan(ctx)

		orders, err := st.List(ctx, testutil.AdminUser())
		testutil.AssertNoError(t, err, "List失败")
		testutil.AssertEqual(t, len(orders), 1, "入库条数")

		testutil.AssertEqual(t, dirCount(t, cfg.InboxDir), 0, "待导入目录应清空")
		testutil.AssertEqual(t, dirCount(t, cfg.DoneDir), 1, "完成目录应有归档")
	})

	t.Run("auto_approve关闭时只预览文件留在原地", func(t *testing.T) {
		w, cfg, st := newTestWatcher(t, false)

		path := filepath.Join(cfg.InboxDir, "orders.csv")
		if err := os.WriteFile(path, []byte(watcherCSV), 0o644); err != nil {
			t.Fatalf("写入测试文件失败: %v", err)
		}

		w.scan(ctx)

		orders, err := st.List(ctx, testutil.AdminUser())
		testutil.AssertNoError(t, err, "List失败")
		testutil.AssertEqual(t, len(orders), 0, "不应入库")
		testutil.AssertEqual(t, dirCount(t, cfg.InboxDir), 1, "文件应留在待导入目录")
	})

	t.Run("待确认文件同一次运行内只预览一次", func(t *testing.T) {
		w, cfg, st := newTestWatcher(t, false)

		path := filepath.Join(cfg.InboxDir, "orders.csv")
		if err := os.WriteFile(path, []byte(watcherCSV), 0o644); err != nil {
			t.Fatalf("写入测试文件失败: %v", err)
		}

		w.scan(ctx)
		testutil.AssertTrue(t, w.previewed[path], "首次扫描后应登记为已预览")

		// 后续扫描不再重复走预览流程，文件原地保留
		w.scan(ctx)
		w.scan(ctx)

		orders, err := st.List(ctx, testutil.AdminUser())
		testutil.AssertNoError(t, err, "List失败")
		testutil.AssertEqual(t, len(orders), 0, "不应入库")
		testutil.AssertEqual(t, dirCount(t, cfg.InboxDir), 1, "文件应留在待导入目录")
	})

	t.Run("表头不对的文件归档到失败目录", func(t *testing.T) {
		w, cfg, st := newTestWatcher(t, true)

		path := filepath.Join(cfg.InboxDir, "bad.csv")
		if err := os.WriteFile(path, []byte("列A,列B\n1,2"), 0o644); err != nil {
			t.Fatalf("写入测试文件失败: %v", err)
		}

		w.scan(ctx)

		orders, err := st.List(ctx, testutil.AdminUser())
		testutil.AssertNoError(t, err, "List失败")
		testutil.AssertEqual(t, len(orders), 0, "不应入库")
		testutil.AssertEqual(t, dirCount(t, cfg.FailedDir), 1, "失败目录应有归档")
	})

	t.Run("非CSV文件被忽略", func(t *testing.T) {
		w, cfg, _ := newTestWatcher(t, true)

		path := filepath.Join(cfg.InboxDir, "notes.txt")
		if err := os.WriteFile(path, []byte("随手记"), 0o644); err != nil {
			t.Fatalf("写入测试文件失败: %v", err)
		}

		w.scan(ctx)

		testutil.AssertEqual(t, dirCount(t, cfg.InboxDir), 1, "非CSV应留在原地")
		testutil.AssertEqual(t, dirCount(t, cfg.DoneDir), 0, "完成目录应为空")
		testutil.AssertEqual(t, dirCount(t, cfg.FailedDir), 0, "失败目录应为空")
	})
}
