package testutil

import (
	"strings"
	"testing"

	"github.com/soldier-zzr/sqgl/internal/config"
	"github.com/soldier-zzr/sqgl/internal/logger"
	"github.com/soldier-zzr/sqgl/internal/model"

	"go.uber.org/zap"
)

// LoadTestConfig 加载测试配置
func LoadTestConfig(t *testing.T) *config.Config {
	cfg, err := config.Load("../../configs/config.test.yaml")
	if err != nil {
		t.Fatalf("加载测试配置失败: %v", err)
	}
	return cfg
}

// NewTestLogger 创建测试用日志器
func NewTestLogger(t *testing.T) *zap.Logger {
	log, err := logger.New(logger.Options{Level: "debug", IsDevelopment: true})
	if err != nil {
		t.Fatalf("创建测试日志器失败: %v", err)
	}
	return log
}

// SkipIfShort 如果是短测试则跳过
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过长时间运行的测试")
	}
}

// AdminUser 管理员测试账号
func AdminUser() *model.User {
	return &model.User{Username: "admin", DisplayName: "管理员", Role: model.RoleAdmin}
}

// MemberUser 普通成员测试账号
func MemberUser(username, displayName string) *model.User {
	return &model.User{Username: username, DisplayName: displayName, Role: model.RoleMember}
}

// MockOrder 创建模拟订单
func MockOrder(id, date, nickname, phone, owner string) *model.Order {
	return &model.Order{
		ID:                 id,
		ConversionDate:     date,
		OrderTime:          date + "T10:00",
		Phase:              "起盘营3期",
		GroupName:          "测试群",
		SourceChannel:      "全款到账",
		FinalPaymentStatus: model.StatusPaid,
		Nickname:           nickname,
		Phone:              phone,
		Owner:              owner,
		Amount:             6980,
		AmountType:         model.AmountTypeFullPayment,
		CountedAmount:      6980,
	}
}

// AssertNoError 断言无错误
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// AssertError 断言有错误
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: 期望有错误但没有", msg)
	}
}

// AssertEqual 断言相等
func AssertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: 期望 %v, 实际 %v", msg, want, got)
	}
}

// AssertNotEqual 断言不相等
func AssertNotEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got == want {
		t.Errorf("%s: 不期望 %v", msg, got)
	}
}

// AssertTrue 断言为真
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Errorf("%s: 期望为true", msg)
	}
}

// AssertFalse 断言为假
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Errorf("%s: 期望为false", msg)
	}
}

// AssertContains 断言包含
func AssertContains(t *testing.T, haystack, needle string, msg string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("%s: '%s' 不包含 '%s'", msg, haystack, needle)
	}
}
