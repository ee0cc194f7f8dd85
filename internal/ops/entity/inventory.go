package entity

import "time"

// WarehouseStock 仓库在库数量（按物料）
// 本核心只读：库存增减由仓储模块维护。
type WarehouseStock struct {
	PartID         string    `json:"part_id" gorm:"primaryKey;size:32"`
	QuantityOnHand float64   `json:"quantity_on_hand" gorm:"type:decimal(10,2);default:0"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (WarehouseStock) TableName() string {
	return "warehouse_stocks"
}

// InventoryReceipt 库存收货流水（幂等台账）
// ActionID 由客户端生成，(equipment_item_id, action_id) 唯一，
// 网络重试同一动作不会重复累加。
type InventoryReceipt struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	EquipmentItemID string    `json:"equipment_item_id" gorm:"size:32;not null;uniqueIndex:idx_receipt_action"`
	ActionID        string    `json:"action_id" gorm:"size:64;not null;uniqueIndex:idx_receipt_action"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(10,2);not null"`
	CreatedBy       string    `json:"created_by" gorm:"size:32"`
	CreatedAt       time.Time `json:"created_at"`
}

func (InventoryReceipt) TableName() string {
	return "inventory_receipts"
}
