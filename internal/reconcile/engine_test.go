package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/soldier-zzr/sqgl/internal/importer"
	"github.com/soldier-zzr/sqgl/internal/model"
	"github.com/soldier-zzr/sqgl/internal/testutil"
)

// fakeStore 内存订单库，可设置从第N次插入开始失败
type fakeStore struct {
	orders    []*model.Order
	failAfter int // 0表示不失败
}

func (f *fakeStore) List(ctx context.Context, actor *model.User) ([]*model.Order, error) {
	return f.orders, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*model.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errors.New("订单不存在")
}

func (f *fakeStore) Insert(ctx context.Context, order *model.Order) error {
	if f.failAfter > 0 && len(f.orders) >= f.failAfter {
		return errors.New("磁盘写入失败")
	}
	f.orders = append([]*model.Order{order}, f.orders...)
	return nil
}

func (f *fakeStore) Replace(ctx context.Context, id string, order *model.Order) error {
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeStore) Ping(ctx context.Context) error              { return nil }
func (f *fakeStore) Close() error                                { return nil }

func candidate(date, nickname, phone, owner, phase string) *importer.Candidate {
	order := model.Order{
		ConversionDate:     date,
		Phase:              phase,
		Nickname:           nickname,
		Phone:              model.NormalizePhone(phone),
		Owner:              owner,
		FinalPaymentStatus: model.StatusPaid,
	}
	return &importer.Candidate{Order: order, Key: order.DedupKey()}
}

func TestEngine_Partition(t *testing.T) {
	engine := NewEngine(testutil.NewTestLogger(t))
	admin := testutil.AdminUser()

	t.Run("存量重复和同批次重复都进重复分区", func(t *testing.T) {
		existing := []*model.Order{
			testutil.MockOrder("id-1", "2026-03-05", "小王", "13800001111", "管理员"),
		}
		candidates := []*importer.Candidate{
			candidate("2026-03-05", "小王", "13800001111", "管理员", "起盘营3期"), // 与存量重复
			candidate("2026-03-05", "小王", "138 0000 1111", "管理员", "起盘营3期"), // 归一化后仍重复
			candidate("2026-03-06", "小李", "13900002222", "管理员", "起盘营3期"),   // 可新增
			candidate("2026-03-06", "小李", "13900002222", "管理员", "起盘营3期"),   // 同批次重复
		}

		result := engine.Partition(candidates, existing, admin)

		if len(result.Addable) != 1 {
			t.Fatalf("可新增期望1条, 实际%d条", len(result.Addable))
		}
		if result.Addable[0].Order.Nickname != "小李" {
			t.Errorf("可新增的应是小李, 实际 %q", result.Addable[0].Order.Nickname)
		}
		if len(result.Duplicate) != 3 {
			t.Errorf("重复期望3条, 实际%d条", len(result.Duplicate))
		}
	})

	t.Run("非起盘营优先于其他判定", func(t *testing.T) {
		member := testutil.MemberUser("member1", "成员一")
		candidates := []*importer.Candidate{
			// 期数不含起盘营且负责人不是本人：应落入非起盘营而不是无权限
			candidate("2026-03-05", "小王", "13800001111", "别人", "体验营1期"),
		}

		result := engine.Partition(candidates, nil, member)

		if len(result.NonQipan) != 1 {
			t.Fatalf("非起盘营期望1条, 实际%d条", len(result.NonQipan))
		}
		if len(result.NoPermission) != 0 {
			t.Errorf("无权限应为空, 实际%d条", len(result.NoPermission))
		}
	})

	t.Run("起盘营标记匹配不区分大小写按包含判定", func(t *testing.T) {
		candidates := []*importer.Candidate{
			candidate("2026-03-05", "小王", "13800001111", "管理员", "2026起盘营·春季"),
		}
		result := engine.Partition(candidates, nil, admin)
		if len(result.Addable) != 1 {
			t.Errorf("含起盘营的期数应通过, 实际分区: addable=%d nonQipan=%d", len(result.Addable), len(result.NonQipan))
		}
	})

	t.Run("成员只能导入自己名下的记录", func(t *testing.T) {
		member := testutil.MemberUser("member1", "成员一")
		candidates := []*importer.Candidate{
			candidate("2026-03-05", "小王", "13800001111", "成员一", "起盘营3期"),
			candidate("2026-03-05", "小李", "13900002222", "成员二", "起盘营3期"),
		}

		result := engine.Partition(candidates, nil, member)

		if len(result.Addable) != 1 || result.Addable[0].Order.Owner != "成员一" {
			t.Errorf("只有本人名下的应可新增, addable=%d", len(result.Addable))
		}
		if len(result.NoPermission) != 1 || result.NoPermission[0].Order.Owner != "成员二" {
			t.Errorf("别人名下的应进无权限, noPermission=%d", len(result.NoPermission))
		}
	})

	t.Run("管理员可以导入任何人名下的记录", func(t *testing.T) {
		candidates := []*importer.Candidate{
			candidate("2026-03-05", "小王", "13800001111", "成员一", "起盘营3期"),
			candidate("2026-03-05", "小李", "13900002222", "成员二", "起盘营3期"),
		}
		result := engine.Partition(candidates, nil, admin)
		if len(result.Addable) != 2 {
			t.Errorf("管理员应全部可新增, 实际%d条", len(result.Addable))
		}
	})
}

func TestEngine_Commit(t *testing.T) {
	engine := NewEngine(testutil.NewTestLogger(t))
	admin := testutil.AdminUser()
	ctx := context.Background()

	t.Run("入库时补记新建状态日志", func(t *testing.T) {
		st := &fakeStore{}
		candidates := []*importer.Candidate{
			candidate("2026-03-05", "小王", "13800001111", "管理员", "起盘营3期"),
		}
		result := engine.Partition(candidates, nil, admin)

		added, err := engine.Commit(ctx, result, st, admin)
		testutil.AssertNoError(t, err, "提交失败")
		testutil.AssertEqual(t, added, 1, "入库条数")

		order := st.orders[0]
		if len(order.StatusLogs) != 1 {
			t.Fatalf("期望1条状态日志, 实际%d条", len(order.StatusLogs))
		}
		log := order.StatusLogs[0]
		if log.From != model.StatusNew || log.To != model.StatusPaid {
			t.Errorf("日志内容不对: %+v", log)
		}
		if log.By != "管理员" {
			t.Errorf("操作人不对: %q", log.By)
		}
	})

	t.Run("中途失败返回已入库条数", func(t *testing.T) {
		st := &fakeStore{failAfter: 2}
		candidates := []*importer.Candidate{
			candidate("2026-03-05", "小王", "13800001111", "管理员", "起盘营3期"),
			candidate("2026-03-06", "小李", "13900002222", "管理员", "起盘营3期"),
			candidate("2026-03-07", "小张", "13700003333", "管理员", "起盘营3期"),
		}
		result := engine.Partition(candidates, nil, admin)

		added, err := engine.Commit(ctx, result, st, admin)
		testutil.AssertError(t, err, "期望提交失败")
		testutil.AssertEqual(t, added, 2, "失败前入库条数")
		testutil.AssertContains(t, err.Error(), "已入库2条", "错误信息应带入库条数")
	})

	t.Run("提交后的键再次分流时视为重复", func(t *testing.T) {
		st := &fakeStore{}
		candidates := []*importer.Candidate{
			candidate("2026-03-05", "小王", "13800001111", "管理员", "起盘营3期"),
		}
		result := engine.Partition(candidates, nil, admin)
		_, err := engine.Commit(ctx, result, st, admin)
		testutil.AssertNoError(t, err, "提交失败")

		// 重新加载后再导同一批
		again := engine.Partition(candidates, st.orders, admin)
		if len(again.Duplicate) != 1 || len(again.Addable) != 0 {
			t.Errorf("再次导入应全部判重, duplicate=%d addable=%d", len(again.Duplicate), len(again.Addable))
		}
	})
}

func TestResult_Messages(t *testing.T) {
	engine := NewEngine(testutil.NewTestLogger(t))
	admin := testutil.AdminUser()

	existing := []*model.Order{
		testutil.MockOrder("id-1", "2026-03-05", "小王", "13800001111", "管理员"),
	}
	var candidates []*importer.Candidate
	// 7条重复，验证示例只取前5
	for i := 0; i < 7; i++ {
		candidates = append(candidates, candidate("2026-03-05", "小王", "13800001111", "管理员", "起盘营3期"))
	}
	candidates = append(candidates, candidate("2026-03-06", "小李", "13900002222", "管理员", "起盘营3期"))

	result := engine.Partition(candidates, existing, admin)

	samples := result.DuplicateSamples()
	if len(samples) != 5 {
		t.Errorf("重复示例应取前5条, 实际%d条", len(samples))
	}
	for _, s := range samples {
		if !strings.Contains(s, "小王") {
			t.Errorf("示例格式不对: %q", s)
		}
	}

	preview := result.PreviewMessage()
	testutil.AssertContains(t, preview, "可新增：1 条", "预览文案")
	testutil.AssertContains(t, preview, fmt.Sprintf("重复跳过：%d 条", 7), "预览文案")
	testutil.AssertContains(t, preview, "重复示例（前5条）", "预览文案")

	summary := result.SummaryMessage(1)
	testutil.AssertContains(t, summary, "新增 1 条", "完成文案")
	testutil.AssertContains(t, summary, "跳过重复 7 条", "完成文案")
}
