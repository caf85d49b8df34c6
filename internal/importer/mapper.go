package importer

import (
	"strings"

	"github.com/soldier-zzr/sqgl/internal/model"

	"github.com/google/uuid"
)

// Candidate 导入候选：已映射但尚未入库的订单及其去重键
type Candidate struct {
	Order model.Order
	Key   string
}

// MapRow 把一行CSV数据映射成导入候选。
// 负责人缺省回落到操作人展示名；负责人或成交日期仍为空时整行拒绝，
// 返回nil。状态日志由对账引擎在入库时补记，这里保持为空
func MapRow(hdr *HeaderIndex, row []string, actor *model.User) *Candidate {
	amount := model.ParseAmount(hdr.Resolve(FieldAmount, row))
	sourceChannel := hdr.Resolve(FieldSourceChannel, row)
	meta := model.DeriveAmountMeta(sourceChannel, amount)
	orderTime := model.NormalizeDateTime(hdr.Resolve(FieldOrderTime, row))
	conversionDate := model.NormalizeDate(hdr.Resolve(FieldConversionDate, row))

	owner := hdr.Resolve(FieldOwner, row)
	if owner == "" && actor != nil {
		owner = actor.DisplayName
	}
	owner = strings.TrimSpace(owner)

	if owner == "" || conversionDate == "" {
		return nil
	}

	if orderTime == "" {
		orderTime = conversionDate + "T00:00"
	}

	var createdBy string
	if actor != nil {
		createdBy = actor.Username
	}

	order := model.Order{
		ID:                 uuid.NewString(),
		CreatedBy:          createdBy,
		OrderTime:          orderTime,
		ConversionDate:     conversionDate,
		Phase:              hdr.Resolve(FieldPhase, row),
		GroupName:          hdr.Resolve(FieldGroupName, row),
		Product:            hdr.Resolve(FieldProduct, row),
		SourceChannel:      sourceChannel,
		SellPlatform:       hdr.Resolve(FieldSellPlatform, row),
		FinalPaymentStatus: model.NormalizeStatus(hdr.Resolve(FieldFinalPaymentStatus, row)),
		Nickname:           hdr.Resolve(FieldNickname, row),
		Phone:              model.NormalizePhone(hdr.Resolve(FieldPhone, row)),
		FinalPhone:         hdr.Resolve(FieldFinalPhone, row),
		Owner:              owner,
		IPNo:               hdr.Resolve(FieldIPNo, row),
		IPTime:             model.NormalizeDateTime(hdr.Resolve(FieldIPTime, row)),
		FollowUp:           hdr.Resolve(FieldFollowUp, row),
		Amount:             amount,
		AmountType:         meta.AmountType,
		CountedAmount:      meta.CountedAmount,
		Note:               hdr.Resolve(FieldNote, row),
		StatusLogs:         model.StatusLogList{},
	}

	return &Candidate{Order: order, Key: order.DedupKey()}
}

// MapRows 映射全部数据行：空行跳过，被拒绝的行不产出候选
func MapRows(hdr *HeaderIndex, rows [][]string, actor *model.User) []*Candidate {
	candidates := make([]*Candidate, 0, len(rows))
	for _, row := range rows {
		if IsBlankRow(row) {
			continue
		}
		if c := MapRow(hdr, row, actor); c != nil {
			candidates = append(candidates, c)
		}
	}
	return candidates
}
