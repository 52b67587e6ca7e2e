package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── PostgreSQL JSONB 辅助 ──

// scanJSON 将 PostgreSQL 返回的 JSONB 文本解析到 dst。
func scanJSON(src interface{}, dst interface{}, typeName string) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("%s.Scan: unsupported type %T", typeName, src)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s.Scan: %w", typeName, err)
	}
	return nil
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
