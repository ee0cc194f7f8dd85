package entity

import "time"

// PurchaseOrder 采购订单
type PurchaseOrder struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	POCode    string `json:"po_code" gorm:"size:32;uniqueIndex;not null"`
	ProjectID string `json:"project_id" gorm:"size:32;not null;index"`
	Supplier  string `json:"supplier" gorm:"size:200"`
	Status    string `json:"status" gorm:"size:20;default:draft"` // draft/submitted/confirmed/partially_received/received/cancelled

	OrderDate *time.Time `json:"order_date"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Items []POLineItem `json:"items,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PO状态
const (
	POStatusDraft             = "draft"
	POStatusSubmitted         = "submitted"
	POStatusConfirmed         = "confirmed"
	POStatusPartiallyReceived = "partially_received"
	POStatusReceived          = "received"
	POStatusCancelled         = "cancelled"
)

// POCountsAsOrdered 判断PO状态是否计入"已下单"数量。
// 草稿和已取消的订单不计入：订单只有脱离草稿状态后才算数。
func POCountsAsOrdered(status string) bool {
	switch status {
	case POStatusSubmitted, POStatusConfirmed, POStatusPartiallyReceived, POStatusReceived:
		return true
	}
	return false
}

// POLineItem PO行项（一个设备条目在某张PO里的数量）
type POLineItem struct {
	ID              string `json:"id" gorm:"primaryKey;size:32"`
	POID            string `json:"po_id" gorm:"size:32;not null;index"`
	EquipmentItemID string `json:"equipment_item_id" gorm:"size:32;not null;index"`

	QuantityOrdered  float64 `json:"quantity_ordered" gorm:"type:decimal(10,2);not null"`
	QuantityReceived float64 `json:"quantity_received" gorm:"type:decimal(10,2);default:0"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (POLineItem) TableName() string {
	return "po_line_items"
}
