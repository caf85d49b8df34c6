package model

import "strings"

// 尾款状态标准集合
const (
	StatusPaid            = "已支付"
	StatusRefunded        = "已退款"
	StatusInvalidLead     = "无效线索"
	StatusCollecting      = "追款中"
	StatusAwaitingPayment = "待支付"

	// StatusNew 新建订单时状态日志的起始标记，不属于标准集合
	StatusNew = "新建"
)

// NormalizeStatus 把自由文本的尾款状态收敛到标准集合。
// 全函数：无法识别或为空时一律返回"待支付"，从不失败
func NormalizeStatus(raw string) string {
	text := strings.TrimSpace(raw)
	switch text {
	case "已支付", "已付":
		return StatusPaid
	case "已退款", "退款":
		return StatusRefunded
	case "无效线索", "保留占位", "全退占":
		return StatusInvalidLead
	case "已追代付", "已催付", "追款中", "待追", "一直联系不上":
		return StatusCollecting
	}
	return StatusAwaitingPayment
}
