package repository

import (
	"context"
	"errors"

	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"gorm.io/gorm"
)

// WireDropRepository 线缆点位仓库
type WireDropRepository struct {
	db *gorm.DB
}

func NewWireDropRepository(db *gorm.DB) *WireDropRepository {
	return &WireDropRepository{db: db}
}

// FindByProject 查询项目下的点位（含阶段）
func (r *WireDropRepository) FindByProject(ctx context.Context, projectID string) ([]entity.WireDrop, error) {
	var drops []entity.WireDrop
	err := r.db.WithContext(ctx).
		Preload("Stages").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&drops).Error
	return drops, err
}

// FindByID 根据ID查找点位（含阶段）
func (r *WireDropRepository) FindByID(ctx context.Context, id string) (*entity.WireDrop, error) {
	var drop entity.WireDrop
	err := r.db.WithContext(ctx).
		Preload("Stages").
		Where("id = ?", id).
		First(&drop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &drop, nil
}

// StagesForEquipment 查询某设备经由点位关联可达的全部施工阶段。
// 安装推导只依赖这一个查询结果。
func (r *WireDropRepository) StagesForEquipment(ctx context.Context, equipmentItemID string) ([]entity.WireDropStage, error) {
	var stages []entity.WireDropStage
	err := r.db.WithContext(ctx).
		Table("wire_drop_stages").
		Select("wire_drop_stages.*").
		Joins("JOIN equipment_wire_drop_links ON equipment_wire_drop_links.wire_drop_id = wire_drop_stages.wire_drop_id").
		Where("equipment_wire_drop_links.equipment_item_id = ?", equipmentItemID).
		Scan(&stages).Error
	return stages, err
}
