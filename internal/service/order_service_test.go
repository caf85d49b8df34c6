package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/soldier-zzr/sqgl/internal/model"
	"github.com/soldier-zzr/sqgl/internal/store"
	"github.com/soldier-zzr/sqgl/internal/testutil"
)

func newTestOrderService(t *testing.T) *OrderService {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"), testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("创建文件库失败: %v", err)
	}
	return NewOrderService(st, testutil.NewTestLogger(t))
}

func paidDraft(owner string) *OrderDraft {
	return &OrderDraft{
		ConversionDate:     "2026-03-05",
		Phase:              "起盘营3期",
		SourceChannel:      "全款到账",
		FinalPaymentStatus: "已付",
		Nickname:           "小王",
		Phone:              "138-0000-1111",
		Owner:              owner,
		Amount:             6980,
	}
}

func TestOrderService_Create(t *testing.T) {
	svc := newTestOrderService(t)
	admin := testutil.AdminUser()
	ctx := context.Background()

	t.Run("创建时补记新建日志并归一化字段", func(t *testing.T) {
		order, err := svc.Create(ctx, admin, paidDraft("李四"))
		testutil.AssertNoError(t, err, "创建失败")

		testutil.AssertEqual(t, order.FinalPaymentStatus, model.StatusPaid, "状态归一化")
		testutil.AssertEqual(t, order.Phone, "13800001111", "手机号归一化")
		testutil.AssertEqual(t, order.AmountType, model.AmountTypeFullPayment, "金额分类")
		testutil.AssertEqual(t, order.CountedAmount, float64(6980), "计入金额")
		testutil.AssertEqual(t, order.CreatedBy, "admin", "创建人")
		if len(order.StatusLogs) != 1 || order.StatusLogs[0].From != model.StatusNew {
			t.Errorf("应有一条新建日志, 实际 %+v", order.StatusLogs)
		}
	})

	t.Run("负责人缺省回落到操作人", func(t *testing.T) {
		order, err := svc.Create(ctx, admin, paidDraft(""))
		testutil.AssertNoError(t, err, "创建失败")
		testutil.AssertEqual(t, order.Owner, "管理员", "负责人回落")
	})

	t.Run("负的金额被拒绝", func(t *testing.T) {
		draft := paidDraft("李四")
		draft.Amount = -1
		if _, err := svc.Create(ctx, admin, draft); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("期望ErrInvalidAmount, 实际 %v", err)
		}
	})

	t.Run("成员不能把订单挂在别人名下", func(t *testing.T) {
		member := testutil.MemberUser("member1", "成员一")
		if _, err := svc.Create(ctx, member, paidDraft("成员二")); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("期望ErrPermissionDenied, 实际 %v", err)
		}
	})

	t.Run("成员可以挂在自己名下", func(t *testing.T) {
		member := testutil.MemberUser("member1", "成员一")
		order, err := svc.Create(ctx, member, paidDraft("成员一"))
		testutil.AssertNoError(t, err, "创建失败")
		testutil.AssertEqual(t, order.Owner, "成员一", "负责人")
	})

	t.Run("管理员可以挂在任何人名下", func(t *testing.T) {
		order, err := svc.Create(ctx, admin, paidDraft("成员二"))
		testutil.AssertNoError(t, err, "创建失败")
		testutil.AssertEqual(t, order.Owner, "成员二", "负责人")
	})
}

func TestOrderService_Update(t *testing.T) {
	svc := newTestOrderService(t)
	admin := testutil.AdminUser()
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, paidDraft("成员一"))
	testutil.AssertNoError(t, err, "创建失败")

	t.Run("状态变化追加恰好一条日志", func(t *testing.T) {
		draft := paidDraft("成员一")
		draft.FinalPaymentStatus = "退款"
		updated, err := svc.Update(ctx, admin, created.ID, draft)
		testutil.AssertNoError(t, err, "更新失败")

		testutil.AssertEqual(t, updated.FinalPaymentStatus, model.StatusRefunded, "更新后的状态")
		if len(updated.StatusLogs) != 2 {
			t.Fatalf("期望2条日志, 实际%d条", len(updated.StatusLogs))
		}
		last := updated.StatusLogs[1]
		if last.From != model.StatusPaid || last.To != model.StatusRefunded {
			t.Errorf("日志内容不对: %+v", last)
		}
	})

	t.Run("原样重新提交不追加日志", func(t *testing.T) {
		draft := paidDraft("成员一")
		draft.FinalPaymentStatus = "已退款" // 与当前状态归一化后相同
		updated, err := svc.Update(ctx, admin, created.ID, draft)
		testutil.AssertNoError(t, err, "更新失败")
		if len(updated.StatusLogs) != 2 {
			t.Errorf("日志条数不应变化, 实际%d条", len(updated.StatusLogs))
		}
	})

	t.Run("成员不能编辑别人名下的订单", func(t *testing.T) {
		member := testutil.MemberUser("member2", "成员二")
		if _, err := svc.Update(ctx, member, created.ID, paidDraft("成员一")); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("期望ErrPermissionDenied, 实际 %v", err)
		}
	})

	t.Run("成员不能把自己的订单改挂到别人名下", func(t *testing.T) {
		member := testutil.MemberUser("member1", "成员一")
		if _, err := svc.Update(ctx, member, created.ID, paidDraft("成员二")); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("期望ErrPermissionDenied, 实际 %v", err)
		}

		// 拒绝后订单保持原样
		got, err := svc.store.Get(ctx, created.ID)
		testutil.AssertNoError(t, err, "Get失败")
		testutil.AssertEqual(t, got.Owner, "成员一", "负责人不应变化")
	})

	t.Run("不存在的订单返回ErrNotFound", func(t *testing.T) {
		if _, err := svc.Update(ctx, admin, "no-such-id", paidDraft("成员一")); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("期望ErrNotFound, 实际 %v", err)
		}
	})
}

func TestOrderService_Delete(t *testing.T) {
	svc := newTestOrderService(t)
	admin := testutil.AdminUser()
	member := testutil.MemberUser("member2", "成员二")
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, paidDraft("成员一"))
	testutil.AssertNoError(t, err, "创建失败")

	if err := svc.Delete(ctx, member, created.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("成员删除别人订单应被拒, 实际 %v", err)
	}

	testutil.AssertNoError(t, svc.Delete(ctx, admin, created.ID), "管理员删除失败")
	if err := svc.Delete(ctx, admin, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("重复删除期望ErrNotFound, 实际 %v", err)
	}
}

func TestOrderService_DeleteBatch(t *testing.T) {
	svc := newTestOrderService(t)
	admin := testutil.AdminUser()
	member := testutil.MemberUser("member1", "成员一")
	ctx := context.Background()

	mine, err := svc.Create(ctx, admin, paidDraft("成员一"))
	testutil.AssertNoError(t, err, "创建失败")
	others := paidDraft("成员二")
	others.Nickname = "小李"
	others.Phone = "13900002222"
	theirs, err := svc.Create(ctx, admin, others)
	testutil.AssertNoError(t, err, "创建失败")

	// 成员批量删除：别人名下和不存在的都被跳过
	deleted, err := svc.DeleteBatch(ctx, member, []string{mine.ID, theirs.ID, "no-such-id"})
	testutil.AssertNoError(t, err, "批量删除失败")
	testutil.AssertEqual(t, deleted, 1, "删除条数")

	remaining, err := svc.List(ctx, admin)
	testutil.AssertNoError(t, err, "List失败")
	if len(remaining) != 1 || remaining[0].ID != theirs.ID {
		t.Errorf("应只剩成员二的订单, 实际%d条", len(remaining))
	}
}

func TestOrderService_ExportCSV(t *testing.T) {
	svc := newTestOrderService(t)
	admin := testutil.AdminUser()
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, paidDraft("李四"))
	testutil.AssertNoError(t, err, "创建失败")

	text, err := svc.ExportCSV(ctx, admin)
	testutil.AssertNoError(t, err, "导出失败")
	testutil.AssertContains(t, text, "成交日期", "导出表头")
	testutil.AssertContains(t, text, "小王", "导出内容")
	testutil.AssertContains(t, text, model.AmountTypeFullPayment, "金额类型列")
}
