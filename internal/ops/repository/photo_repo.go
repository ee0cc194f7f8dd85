package repository

import (
	"context"

	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"gorm.io/gorm"
)

// PhotoRepository 收货照片元数据仓库
type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create 记录照片元数据
func (r *PhotoRepository) Create(ctx context.Context, photo *entity.ReceivingPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// FindByEquipment 查询设备的收货照片
func (r *PhotoRepository) FindByEquipment(ctx context.Context, equipmentItemID string) ([]entity.ReceivingPhoto, error) {
	var photos []entity.ReceivingPhoto
	err := r.db.WithContext(ctx).
		Where("equipment_item_id = ?", equipmentItemID).
		Order("created_at DESC").
		Find(&photos).Error
	return photos, err
}
