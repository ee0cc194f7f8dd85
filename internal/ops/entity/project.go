package entity

import "time"

// Project 集成项目（客户现场）
type Project struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	Code       string `json:"code" gorm:"size:32;uniqueIndex;not null"` // PRJ-2026-0001
	Name       string `json:"name" gorm:"size:200;not null"`
	ClientName string `json:"client_name" gorm:"size:200"`
	Status     string `json:"status" gorm:"size:20;default:active"` // active/completed/archived

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// Room 项目房间（布线拓扑的作用域）
type Room struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string    `json:"project_id" gorm:"size:32;not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Floor     string    `json:"floor" gorm:"size:50"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}
