package entity

import "time"

// ToolingInfo 工装信息（只读）
type ToolingInfo struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	InventoryNo    string    `json:"inventory_number" gorm:"size:100"`
	ProjectName    string    `json:"project_name" gorm:"size:200"`
	ProductionUnit string    `json:"production_unit" gorm:"size:200"`
	ApplicantName  string    `json:"applicant_name" gorm:"size:100"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ToolingInfo) TableName() string { return "tooling_info" }

// ToolingPart 工装零件（只读），备注中可能带有需求日期
type ToolingPart struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ToolingID string    `json:"tooling_id" gorm:"size:32;index"`
	PartName  string    `json:"part_name" gorm:"size:200"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ToolingPart) TableName() string { return "parts_info" }

// ChildItem 标准件（只读）
type ChildItem struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	ToolingID    string    `json:"tooling_id" gorm:"size:32;index:idx_child_items_tooling_name"`
	Name         string    `json:"name" gorm:"size:200;index:idx_child_items_tooling_name"`
	RequiredDate string    `json:"required_date" gorm:"size:10"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ChildItem) TableName() string { return "child_items" }
