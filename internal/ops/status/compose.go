package status

import "time"

// Item 设备条目快照（汇总所需的自身字段）
type Item struct {
	PlannedQty           float64
	InventoryReceivedQty float64
	ReceivedAt           *time.Time
	ReceivedBy           string

	Delivered   bool
	DeliveredAt *time.Time
	DeliveredBy string

	Manual ManualInstall
}

// EquipmentStatus 设备规范状态记录。
// 所有读取方消费这一条记录，禁止绕开汇总自行从来源记录推导状态。
type EquipmentStatus struct {
	PlannedQty float64 `json:"planned_qty"`

	Ordered    bool       `json:"ordered"`
	OrderedQty float64    `json:"ordered_qty"`
	OrderedAt  *time.Time `json:"ordered_at,omitempty"`
	OrderedBy  string     `json:"ordered_by,omitempty"`

	Received      bool       `json:"received"`
	ReceivedQty   float64    `json:"received_qty"`
	ReceivedAt    *time.Time `json:"received_at,omitempty"`
	ReceivedBy    string     `json:"received_by,omitempty"`
	FullyReceived bool       `json:"fully_received"`

	InventoryAllocated float64 `json:"inventory_allocated"`
	InventoryToReceive float64 `json:"inventory_to_receive"`

	Delivered   bool       `json:"delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	DeliveredBy string     `json:"delivered_by,omitempty"`

	Installed           bool       `json:"installed"`
	InstalledAt         *time.Time `json:"installed_at,omitempty"`
	InstalledBy         string     `json:"installed_by,omitempty"`
	InstalledViaWireDrop bool      `json:"installed_via_wire_drop"`

	ActiveLinkCount int `json:"active_link_count"`
}

// Compose 汇总设备的规范状态记录。
//
// 已收货 = 行项收货合计 + 库存直接收货。送达为纯手动标记，与收货
// 相互独立（送达=确认在现场，收货=确认到货），不做先后校验。
func Compose(item Item, lines []LineItem, linkCount int, stages []Stage, onHand float64) EquipmentStatus {
	q := AggregateQuantities(lines)
	receivedQty := q.Received + item.InventoryReceivedQty
	alloc := Allocate(item.PlannedQty, q.Ordered, receivedQty, onHand)
	install := DeriveInstall(item.Manual, linkCount, stages)

	return EquipmentStatus{
		PlannedQty: item.PlannedQty,

		Ordered:    q.Ordered > 0,
		OrderedQty: q.Ordered,
		OrderedAt:  q.OrderedAt,
		OrderedBy:  q.OrderedBy,

		Received:      receivedQty > 0,
		ReceivedQty:   receivedQty,
		ReceivedAt:    item.ReceivedAt,
		ReceivedBy:    item.ReceivedBy,
		FullyReceived: item.PlannedQty > 0 && receivedQty >= item.PlannedQty,

		InventoryAllocated: alloc.Allocated,
		InventoryToReceive: alloc.ToReceive,

		Delivered:   item.Delivered,
		DeliveredAt: item.DeliveredAt,
		DeliveredBy: item.DeliveredBy,

		Installed:            install.Installed,
		InstalledAt:          install.At,
		InstalledBy:          install.By,
		InstalledViaWireDrop: install.Installed && install.Source == SourceWireDrop,

		ActiveLinkCount: linkCount,
	}
}
