package model

import (
	"time"

	"gorm.io/datatypes"
)

// ImportBatch 一次CSV导入的留痕记录（仅数据库后端落表）
type ImportBatch struct {
	ID           uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Operator     string         `gorm:"column:operator;size:64" json:"operator"`
	FileName     string         `gorm:"column:file_name;size:255" json:"fileName"`
	Added        int            `gorm:"column:added" json:"added"`
	Duplicate    int            `gorm:"column:duplicate" json:"duplicate"`
	NoPermission int            `gorm:"column:no_permission" json:"noPermission"`
	NonQipan     int            `gorm:"column:non_qipan" json:"nonQipan"`
	Detail       datatypes.JSON `gorm:"column:detail" json:"detail"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"createdAt"`
}

// TableName 指定表名
func (ImportBatch) TableName() string {
	return "import_batch"
}
