package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StatusLog 尾款状态变更记录，只追加不修改
type StatusLog struct {
	From string `json:"from"`
	To   string `json:"to"`
	By   string `json:"by"`
	At   string `json:"at"`
}

// NewStatusLog 创建一条状态变更记录，时间取当前时刻
func NewStatusLog(from, to, by string) StatusLog {
	return StatusLog{
		From: from,
		To:   to,
		By:   by,
		At:   time.Now().Format(time.RFC3339),
	}
}

// StatusLogList 状态日志序列。历史数据里可能混有非对象项或非字符串字段，
// 反序列化时丢弃坏项并把字段统一成字符串
type StatusLogList []StatusLog

// UnmarshalJSON 实现宽容解析：非数组整体置空，数组内非对象项被过滤
func (l *StatusLogList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = StatusLogList{}
		return nil
	}

	logs := make(StatusLogList, 0, len(items))
	for _, item := range items {
		var obj map[string]interface{}
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		logs = append(logs, StatusLog{
			From: coerceString(obj["from"]),
			To:   coerceString(obj["to"]),
			By:   coerceString(obj["by"]),
			At:   coerceString(obj["at"]),
		})
	}
	*l = logs
	return nil
}

// Value 实现driver.Valuer，供GORM把日志存成JSON列
func (l StatusLogList) Value() (driver.Value, error) {
	if l == nil {
		l = StatusLogList{}
	}
	return json.Marshal([]StatusLog(l))
}

// Scan 实现sql.Scanner，从JSON列还原日志
func (l *StatusLogList) Scan(value interface{}) error {
	if value == nil {
		*l = StatusLogList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return l.UnmarshalJSON(v)
	case string:
		return l.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("无法从 %T 还原状态日志", value)
	}
}

// SanitizeStatusLogs 清洗状态日志：nil变为空序列，保留项字段已是字符串
func SanitizeStatusLogs(logs StatusLogList) StatusLogList {
	if logs == nil {
		return StatusLogList{}
	}
	return logs
}

// AppendTransition 仅在归一化后的状态确实变化时追加一条日志，
// 返回是否发生了变更
func AppendTransition(logs StatusLogList, oldStatus, newStatus, by string) (StatusLogList, bool) {
	prev := NormalizeStatus(oldStatus)
	next := NormalizeStatus(newStatus)
	if prev == next {
		return logs, false
	}
	return append(SanitizeStatusLogs(logs), NewStatusLog(prev, next, by)), true
}

// coerceString 把任意JSON值转成字符串，nil转成空串
func coerceString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		// JSON数字默认解析成float64，整数去掉小数尾巴
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
