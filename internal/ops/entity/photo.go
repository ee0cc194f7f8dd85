package entity

import "time"

// ReceivingPhoto 收货照片元数据（对象本体存MinIO）
type ReceivingPhoto struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	EquipmentItemID string    `json:"equipment_item_id" gorm:"size:32;not null;index"`
	ObjectKey       string    `json:"object_key" gorm:"size:512;not null"`
	FileName        string    `json:"file_name" gorm:"size:255"`
	ContentType     string    `json:"content_type" gorm:"size:100"`
	Size            int64     `json:"size"`
	UploadedBy      string    `json:"uploaded_by" gorm:"size:32"`
	CreatedAt       time.Time `json:"created_at"`
}

func (ReceivingPhoto) TableName() string {
	return "receiving_photos"
}
