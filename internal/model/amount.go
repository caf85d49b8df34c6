package model

import "strings"

// 金额分类标签
const (
	AmountTypePlaceholder = "占位卡(不计入)"
	AmountTypeFullPayment = "全款(计入)"
	AmountTypeOther       = "其他(不计入)"

	// FullPaymentCountedAmount 全款订单计入统计的固定金额（元），与录入金额无关
	FullPaymentCountedAmount = 6980
)

// AmountMeta 金额分类结果：分类标签和计入统计的金额
type AmountMeta struct {
	AmountType    string
	CountedAmount float64
}

// DeriveAmountMeta 按渠道来源对金额做三分类。
// 占位类渠道不计入；全款类渠道固定计入6980；其余渠道无论金额多少都不计入
func DeriveAmountMeta(sourceChannel string, rawAmount float64) AmountMeta {
	text := strings.TrimSpace(sourceChannel)
	if strings.Contains(text, "占位") {
		return AmountMeta{AmountType: AmountTypePlaceholder, CountedAmount: 0}
	}
	if strings.Contains(text, "全款") {
		return AmountMeta{AmountType: AmountTypeFullPayment, CountedAmount: FullPaymentCountedAmount}
	}
	return AmountMeta{AmountType: AmountTypeOther, CountedAmount: 0}
}
