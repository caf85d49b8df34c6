package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// 表格导出里常见的日期写法，统一按本地时区解析。
// 非补零布局同时兼容补零输入
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-1-2T15:4:5",
	"2006-1-2T15:4",
	"2006-1-2 15:4:5",
	"2006-1-2 15:4",
	"2006-1-2",
}

// NormalizePhone 手机号归一化：去掉空格和连字符；
// 被表格软件破坏成科学计数法的号码（如1.38E+10）先还原成整数，
// 其余情况只保留数字。空输入返回空串
func NormalizePhone(phone string) string {
	raw := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	if strings.ContainsAny(raw, "eE") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return keepDigits(strconv.FormatFloat(math.Trunc(f), 'f', -1, 64))
		}
	}
	return keepDigits(raw)
}

// NormalizeDate 把任意写法的日期归一化成 YYYY-MM-DD，解析失败返回空串
func NormalizeDate(raw string) string {
	t, ok := parseLocalTime(raw)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// NormalizeDateTime 把任意写法的日期时间归一化成 YYYY-MM-DDTHH:MM，
// 解析失败返回空串
func NormalizeDateTime(raw string) string {
	t, ok := parseLocalTime(raw)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02T15:04")
}

// ParseAmount 解析金额文本：去掉千分位逗号和首尾空白，
// 解析失败或非有限数值一律按0处理
func ParseAmount(raw string) float64 {
	text := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0
	}
	return n
}

// BuildDedupKey 构造去重键：成交日期 + 小写昵称 + 归一化手机号
func BuildDedupKey(conversionDate, nickname, phone string) string {
	date := strings.TrimSpace(conversionDate)
	name := strings.ToLower(strings.TrimSpace(nickname))
	return fmt.Sprintf("%s__%s__%s", date, name, NormalizePhone(phone))
}

// parseLocalTime 按本地时区解析日期文本，斜杠分隔视同连字符
func parseLocalTime(raw string) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}
	text = strings.ReplaceAll(text, "/", "-")
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// keepDigits 只保留0-9
func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
