package importer

import "strings"

// Field 订单的标准字段名，表头解析的目标枚举
type Field string

// 标准字段
const (
	FieldPhase              Field = "phase"
	FieldGroupName          Field = "groupName"
	FieldSourceChannel      Field = "sourceChannel"
	FieldSellPlatform       Field = "sellPlatform"
	FieldNickname           Field = "nickname"
	FieldPhone              Field = "phone"
	FieldFinalPhone         Field = "finalPhone"
	FieldOwner              Field = "owner"
	FieldCollector          Field = "collector"
	FieldConversionDate     Field = "conversionDate"
	FieldFinalPaymentStatus Field = "finalPaymentStatus"
	FieldIPNo               Field = "ipNo"
	FieldIPTime             Field = "ipTime"
	FieldFollowUp           Field = "followUp"
	FieldAmount             Field = "amount"
	FieldProduct            Field = "product"
	FieldOrderTime          Field = "orderTime"
	FieldNote               Field = "note"
	FieldUnpaidReason       Field = "unpaidReason"
)

// fieldAliases 每个标准字段接受的表头别名，按优先级排列。
// 精确匹配（清洗BOM并去首尾空白后），大小写不做折叠，
// 所以"加ip时间"和"加IP时间"要分别列出
var fieldAliases = map[Field][]string{
	FieldPhase:              {"转化期数"},
	FieldGroupName:          {"组别"},
	FieldSourceChannel:      {"渠道来源"},
	FieldSellPlatform:       {"售卖平台"},
	FieldNickname:           {"微信昵称"},
	FieldPhone:              {"手机号"},
	FieldFinalPhone:         {"尾款电话"},
	FieldOwner:              {"筛选人", "负责人（教练）", "负责人", "使用人", "尾款电话筛选人"},
	FieldCollector:          {"追款人", "尾款电话筛选人"},
	FieldConversionDate:     {"成交日期"},
	FieldFinalPaymentStatus: {"尾款情况"},
	FieldIPNo:               {"IP号"},
	FieldIPTime:             {"加ip时间", "加IP时间"},
	FieldFollowUp:           {"三筛选/跟进", "筛选/跟进", "跟进标签"},
	FieldAmount:             {"转化金额", "金额", "转化金额（元）"},
	FieldProduct:            {"转化产品", "产品"},
	FieldOrderTime:          {"订单时间"},
	FieldNote:               {"备注", "沟通记录"},
	FieldUnpaidReason:       {"未付款原因"},
}

// exportHeader 导出CSV时各字段使用的飞书标准表头
var exportHeader = map[Field]string{
	FieldPhase:              "转化期数",
	FieldGroupName:          "组别",
	FieldSourceChannel:      "渠道来源",
	FieldSellPlatform:       "售卖平台",
	FieldNickname:           "微信昵称",
	FieldPhone:              "手机号",
	FieldFinalPhone:         "尾款电话",
	FieldOwner:              "筛选人",
	FieldConversionDate:     "成交日期",
	FieldFinalPaymentStatus: "尾款情况",
	FieldIPNo:               "IP号",
	FieldIPTime:             "加ip时间",
	FieldFollowUp:           "三筛选/跟进",
	FieldAmount:             "转化金额",
	FieldProduct:            "转化产品",
	FieldOrderTime:          "订单时间",
}

// HeaderIndex 表头索引：清洗后的表头文本到列号的映射，
// 同名表头只记第一列
type HeaderIndex struct {
	index map[string]int
}

// NewHeaderIndex 从表头行构建索引
func NewHeaderIndex(headerRow []string) *HeaderIndex {
	index := make(map[string]int, len(headerRow))
	for i, cell := range headerRow {
		name := CleanHeader(cell)
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}
	return &HeaderIndex{index: index}
}

// Resolve 按别名优先级取该字段在本行的值。
// 返回第一个匹配列中去空白后非空的值，找不到返回空串
func (h *HeaderIndex) Resolve(field Field, row []string) string {
	for _, alias := range fieldAliases[field] {
		idx, ok := h.index[CleanHeader(alias)]
		if !ok {
			continue
		}
		if idx >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[idx]); value != "" {
			return value
		}
	}
	return ""
}

// CleanHeader 清洗表头单元格：去掉BOM字符和首尾空白
func CleanHeader(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\uFEFF", ""))
}
