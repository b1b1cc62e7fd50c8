package entity

import (
	"time"

	"gorm.io/datatypes"
)

// 批次状态
const (
	BatchStatusSuccess  = "success"
	BatchStatusPartial  = "partial"
	BatchStatusFailed   = "failed"
	BatchStatusRejected = "rejected"
)

// ReconcileBatch 批量对账调用记录
type ReconcileBatch struct {
	ID           string         `json:"id" gorm:"primaryKey;size:32"`
	Kind         string         `json:"kind" gorm:"size:20;index"`
	Operator     string         `json:"operator" gorm:"size:64"`
	RequestID    string         `json:"request_id" gorm:"size:64"`
	Status       string         `json:"status" gorm:"size:20;index"`
	Total        int            `json:"total"`
	Inserted     int            `json:"inserted"`
	Updated      int            `json:"updated"`
	Skipped      int            `json:"skipped"`
	Failed       int            `json:"failed"`
	Deduplicated int            `json:"deduplicated"`
	Failures     datatypes.JSON `json:"failures,omitempty" gorm:"type:jsonb"`
	ErrorMessage string         `json:"error_message,omitempty" gorm:"type:text"`
	ArchiveKey   string         `json:"archive_key,omitempty" gorm:"size:300"`
	Elapsed      int64          `json:"elapsed_ms"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (ReconcileBatch) TableName() string { return "reconcile_batches" }
