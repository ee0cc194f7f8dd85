package entity

import "time"

// WireDrop 线缆点位（一条物理布线）
// 本核心只读：点位及其阶段由布线模块维护。
type WireDrop struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string `json:"project_id" gorm:"size:32;not null;index"`
	RoomID    string `json:"room_id" gorm:"size:32;not null;index"`
	Name      string `json:"name" gorm:"size:200;not null"`
	DropType  string `json:"drop_type" gorm:"size:50"` // cat6/fiber/speaker/coax

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Stages []WireDropStage `json:"stages,omitempty" gorm:"foreignKey:WireDropID"`
}

func (WireDrop) TableName() string {
	return "wire_drops"
}

// WireDropStage 点位施工阶段
// trim_out 阶段的完成是已布线设备的安装信号。
type WireDropStage struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	WireDropID string `json:"wire_drop_id" gorm:"size:32;not null;index"`
	StageType  string `json:"stage_type" gorm:"size:20;not null"` // prewire/trim_out/commission

	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
	CompletedBy *string    `json:"completed_by" gorm:"size:32"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WireDropStage) TableName() string {
	return "wire_drop_stages"
}

// 阶段类型
const (
	StagePrewire    = "prewire"
	StageTrimOut    = "trim_out"
	StageCommission = "commission"
)

// EquipmentWireDropLink 设备与点位的多对多关联
type EquipmentWireDropLink struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	EquipmentItemID string    `json:"equipment_item_id" gorm:"size:32;not null;index:idx_link_equipment"`
	WireDropID      string    `json:"wire_drop_id" gorm:"size:32;not null;index"`
	LinkSide        string    `json:"link_side" gorm:"size:20;default:room_end"` // head_end/room_end
	CreatedAt       time.Time `json:"created_at"`
}

func (EquipmentWireDropLink) TableName() string {
	return "equipment_wire_drop_links"
}
