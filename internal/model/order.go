package model

import "time"

// Order 社群转化订单（对应飞书表格导出的一行成交记录）
type Order struct {
	ID                 string        `gorm:"column:id;primaryKey;size:64" json:"id"`
	CreatedBy          string        `gorm:"column:created_by;size:64;index:idx_created_by" json:"createdBy"`
	OrderTime          string        `gorm:"column:order_time;size:32" json:"orderTime"`
	ConversionDate     string        `gorm:"column:conversion_date;size:16;index:idx_conversion_date" json:"conversionDate"`
	Phase              string        `gorm:"column:phase;size:64" json:"phase"`
	GroupName          string        `gorm:"column:group_name;size:64" json:"groupName"`
	Product            string        `gorm:"column:product;size:128" json:"product"`
	SourceChannel      string        `gorm:"column:source_channel;size:64" json:"sourceChannel"`
	SellPlatform       string        `gorm:"column:sell_platform;size:64" json:"sellPlatform"`
	FinalPaymentStatus string        `gorm:"column:final_payment_status;size:16;index:idx_status" json:"finalPaymentStatus"`
	Nickname           string        `gorm:"column:nickname;size:128" json:"nickname"`
	Phone              string        `gorm:"column:phone;size:32;index:idx_phone" json:"phone"`
	FinalPhone         string        `gorm:"column:final_phone;size:32" json:"finalPhone"`
	Owner              string        `gorm:"column:owner;size:64;index:idx_owner" json:"owner"`
	IPNo               string        `gorm:"column:ip_no;size:32" json:"ipNo"`
	IPTime             string        `gorm:"column:ip_time;size:32" json:"ipTime"`
	FollowUp           string        `gorm:"column:follow_up;size:255" json:"followUp"`
	Amount             float64       `gorm:"column:amount;type:decimal(15,2)" json:"amount"`
	AmountType         string        `gorm:"column:amount_type;size:32" json:"amountType"`
	CountedAmount      float64       `gorm:"column:counted_amount;type:decimal(15,2)" json:"countedAmount"`
	Note               string        `gorm:"column:note;size:512" json:"note"`
	StatusLogs         StatusLogList `gorm:"column:status_logs;type:json" json:"statusLogs"`
	CreatedAt          time.Time     `gorm:"column:created_at" json:"-"`
	UpdatedAt          time.Time     `gorm:"column:updated_at" json:"-"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "conversion_order"
}

// Sanitize 加载后的防御性修正：状态收敛到标准集合、手机号归一化、
// 状态日志清洗，缺失的金额类型按渠道重新推导
func (o *Order) Sanitize() {
	o.FinalPaymentStatus = NormalizeStatus(o.FinalPaymentStatus)
	o.Phone = NormalizePhone(o.Phone)
	o.StatusLogs = SanitizeStatusLogs(o.StatusLogs)
	if o.AmountType == "" {
		meta := DeriveAmountMeta(o.SourceChannel, o.Amount)
		o.AmountType = meta.AmountType
		o.CountedAmount = meta.CountedAmount
	}
}

// DedupKey 去重键：成交日期 + 小写昵称 + 归一化手机号
func (o *Order) DedupKey() string {
	return BuildDedupKey(o.ConversionDate, o.Nickname, o.Phone)
}
