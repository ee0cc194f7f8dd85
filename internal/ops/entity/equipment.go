package entity

import "time"

// EquipmentItem 项目设备条目（一条计划数量的器材）
//
// ReceivedQty 是持久化的聚合值：所有PO行项的收货数量之和，再加上
// InventoryReceivedQty（直接从仓库库存收货的部分）。该字段只由状态
// 重算流程写入，读取方不得绕过状态汇总自行推导。
type EquipmentItem struct {
	ID        string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string  `json:"project_id" gorm:"size:32;not null;index"`
	RoomID    *string `json:"room_id" gorm:"size:32;index"`
	PartID    *string `json:"part_id" gorm:"size:32;index"` // 对应仓库库存的物料

	Name        string `json:"name" gorm:"size:200;not null"`
	Category    string `json:"category" gorm:"size:50"`              // av/network/security/control
	InstallSide string `json:"install_side" gorm:"size:20;default:room_end"` // head_end/room_end

	PlannedQty float64 `json:"planned_qty" gorm:"type:decimal(10,2);default:1"`

	// 收货聚合（重算流程维护）
	ReceivedQty          float64    `json:"received_qty" gorm:"type:decimal(10,2);default:0"`
	InventoryReceivedQty float64    `json:"inventory_received_qty" gorm:"type:decimal(10,2);default:0"`
	ReceivedAt           *time.Time `json:"received_at"`
	ReceivedBy           *string    `json:"received_by" gorm:"size:32"`

	// 送达（纯手动标记：确认已到现场）
	Delivered   bool       `json:"delivered" gorm:"default:false"`
	DeliveredAt *time.Time `json:"delivered_at"`
	DeliveredBy *string    `json:"delivered_by" gorm:"size:32"`

	// 手动安装标记（仅对无布线关联的设备生效；有关联时由trim-out阶段推导）
	InstalledManual   bool       `json:"installed_manual" gorm:"default:false"`
	InstalledManualAt *time.Time `json:"installed_manual_at"`
	InstalledManualBy *string    `json:"installed_manual_by" gorm:"size:32"`

	Visible   bool      `json:"visible" gorm:"default:true"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EquipmentItem) TableName() string {
	return "equipment_items"
}

// 安装端
const (
	SideHeadEnd = "head_end"
	SideRoomEnd = "room_end"
)
