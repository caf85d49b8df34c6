package importer

import (
	"strconv"
	"strings"

	"github.com/soldier-zzr/sqgl/internal/model"
)

// 导出列顺序，与飞书模板保持一致
var exportFields = []Field{
	FieldConversionDate,
	FieldPhase,
	FieldGroupName,
	FieldSourceChannel,
	FieldSellPlatform,
	FieldNickname,
	FieldPhone,
	FieldFinalPhone,
	FieldFinalPaymentStatus,
	FieldOwner,
	FieldIPNo,
	FieldIPTime,
	FieldFollowUp,
	FieldAmount,
}

// WriteCSV 把订单集合导出成飞书表头的CSV文本，带UTF-8 BOM，
// 每个单元格都加引号，内部引号按""转义
func WriteCSV(orders []*model.Order) string {
	header := make([]string, 0, len(exportFields)+3)
	for _, f := range exportFields {
		header = append(header, exportHeader[f])
	}
	header = append(header, "金额类型", "计入金额", "备注")

	lines := make([]string, 0, len(orders)+1)
	lines = append(lines, encodeRow(header))

	for _, o := range orders {
		row := []string{
			o.ConversionDate,
			o.Phase,
			o.GroupName,
			o.SourceChannel,
			o.SellPlatform,
			o.Nickname,
			o.Phone,
			o.FinalPhone,
			o.FinalPaymentStatus,
			o.Owner,
			o.IPNo,
			o.IPTime,
			o.FollowUp,
			formatNumber(o.Amount),
			displayAmountType(o),
			formatNumber(countedAmount(o)),
			o.Note,
		}
		lines = append(lines, encodeRow(row))
	}

	return "\uFEFF" + strings.Join(lines, "\n")
}

// countedAmount 计入金额，金额类型缺失时按渠道重新推导
func countedAmount(o *model.Order) float64 {
	if o.AmountType != "" {
		return o.CountedAmount
	}
	return model.DeriveAmountMeta(o.SourceChannel, o.Amount).CountedAmount
}

// displayAmountType 不计入的类型在报表里留空
func displayAmountType(o *model.Order) string {
	t := o.AmountType
	if t == "" {
		t = model.DeriveAmountMeta(o.SourceChannel, o.Amount).AmountType
	}
	if strings.Contains(t, "不计入") {
		return ""
	}
	return t
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func encodeRow(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
