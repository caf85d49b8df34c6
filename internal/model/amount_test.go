package model

import "testing"

func TestDeriveAmountMeta(t *testing.T) {
	tests := []struct {
		name           string
		sourceChannel  string
		rawAmount      float64
		expectedType   string
		expectedAmount float64
	}{
		{
			name:           "占位卡渠道不计入",
			sourceChannel:  "占位卡",
			rawAmount:      200,
			expectedType:   AmountTypePlaceholder,
			expectedAmount: 0,
		},
		{
			name:           "含占位关键词即归占位",
			sourceChannel:  "视频号占位",
			rawAmount:      500,
			expectedType:   AmountTypePlaceholder,
			expectedAmount: 0,
		},
		{
			name:           "全款渠道固定计入6980",
			sourceChannel:  "全款到账",
			rawAmount:      0,
			expectedType:   AmountTypeFullPayment,
			expectedAmount: 6980,
		},
		{
			name:           "全款渠道录入金额不影响计入值",
			sourceChannel:  "全款",
			rawAmount:      9999,
			expectedType:   AmountTypeFullPayment,
			expectedAmount: 6980,
		},
		{
			name:           "其他渠道无论金额都不计入",
			sourceChannel:  "短视频引流",
			rawAmount:      999,
			expectedType:   AmountTypeOther,
			expectedAmount: 0,
		},
		{
			name:           "空渠道归其他",
			sourceChannel:  "",
			rawAmount:      100,
			expectedType:   AmountTypeOther,
			expectedAmount: 0,
		},
		{
			name:           "占位优先于全款",
			sourceChannel:  "占位转全款",
			rawAmount:      6980,
			expectedType:   AmountTypePlaceholder,
			expectedAmount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := DeriveAmountMeta(tt.sourceChannel, tt.rawAmount)
			if meta.AmountType != tt.expectedType {
				t.Errorf("分类 = %q, 期望 %q", meta.AmountType, tt.expectedType)
			}
			if meta.CountedAmount != tt.expectedAmount {
				t.Errorf("计入金额 = %v, 期望 %v", meta.CountedAmount, tt.expectedAmount)
			}
		})
	}
}
