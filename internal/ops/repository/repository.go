package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Project     *ProjectRepository
	Equipment   *EquipmentRepository
	PO          *PORepository
	WireDrop    *WireDropRepository
	Stock       *StockRepository
	ActivityLog *ActivityLogRepository
	Photo       *PhotoRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:     NewProjectRepository(db),
		Equipment:   NewEquipmentRepository(db),
		PO:          NewPORepository(db),
		WireDrop:    NewWireDropRepository(db),
		Stock:       NewStockRepository(db),
		ActivityLog: NewActivityLogRepository(db),
		Photo:       NewPhotoRepository(db),
	}
}
