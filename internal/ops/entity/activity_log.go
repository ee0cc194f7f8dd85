package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB PostgreSQL JSONB字段
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// ActivityLog 操作日志
type ActivityLog struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	ProjectID  string `json:"project_id" gorm:"size:32;index"`
	EntityType string `json:"entity_type" gorm:"size:50;not null;index:idx_activity_entity"` // equipment/po_line_item/room
	EntityID   string `json:"entity_id" gorm:"size:32;not null;index:idx_activity_entity"`

	Action   string `json:"action" gorm:"size:50;not null"` // receive/receive_inventory/deliver/install/reassign_room
	Content  string `json:"content" gorm:"type:text"`
	Metadata JSONB  `json:"metadata" gorm:"type:jsonb"`

	OperatorID string    `json:"operator_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// 日志动作
const (
	ActionReceive          = "receive"
	ActionReceiveInventory = "receive_inventory"
	ActionDeliver          = "deliver"
	ActionInstall          = "install"
	ActionReassignRoom     = "reassign_room"
)
