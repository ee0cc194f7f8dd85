package repository

import (
	"context"
	"errors"
	"time"

	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"gorm.io/gorm"
)

// EquipmentRepository 设备条目仓库
type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// FindByID 根据ID查找设备条目
func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*entity.EquipmentItem, error) {
	var item entity.EquipmentItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByProject 查询项目下的设备条目
func (r *EquipmentRepository) FindByProject(ctx context.Context, projectID string, visibleOnly bool) ([]entity.EquipmentItem, error) {
	var items []entity.EquipmentItem
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if visibleOnly {
		query = query.Where("visible = ?", true)
	}
	err := query.Order("created_at ASC").Find(&items).Error
	return items, err
}

// Create 创建设备条目
func (r *EquipmentRepository) Create(ctx context.Context, item *entity.EquipmentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 更新设备条目
func (r *EquipmentRepository) Update(ctx context.Context, item *entity.EquipmentItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// UpdateReceivedAggregate 持久化收货聚合值（只由重算流程调用）
func (r *EquipmentRepository) UpdateReceivedAggregate(ctx context.Context, id string, receivedQty float64, receivedAt *time.Time, receivedBy *string) error {
	updates := map[string]interface{}{
		"received_qty": receivedQty,
		"updated_at":   time.Now(),
	}
	if receivedAt != nil {
		updates["received_at"] = receivedAt
	}
	if receivedBy != nil {
		updates["received_by"] = receivedBy
	}
	return r.db.WithContext(ctx).Model(&entity.EquipmentItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Links 查询设备的点位关联
func (r *EquipmentRepository) Links(ctx context.Context, equipmentItemID string) ([]entity.EquipmentWireDropLink, error) {
	var links []entity.EquipmentWireDropLink
	err := r.db.WithContext(ctx).
		Where("equipment_item_id = ?", equipmentItemID).
		Order("created_at ASC").
		Find(&links).Error
	return links, err
}

// CountLinks 统计设备的点位关联数
func (r *EquipmentRepository) CountLinks(ctx context.Context, equipmentItemID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.EquipmentWireDropLink{}).
		Where("equipment_item_id = ?", equipmentItemID).
		Count(&count).Error
	return count, err
}

// ReassignRoom 迁移房间并解除全部点位关联（同一事务）。
// 返回被解除的关联数。
func (r *EquipmentRepository) ReassignRoom(ctx context.Context, equipmentItemID, newRoomID string) (int64, error) {
	var unlinked int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("equipment_item_id = ?", equipmentItemID).
			Delete(&entity.EquipmentWireDropLink{})
		if res.Error != nil {
			return res.Error
		}
		unlinked = res.RowsAffected

		return tx.Model(&entity.EquipmentItem{}).
			Where("id = ?", equipmentItemID).
			Updates(map[string]interface{}{
				"room_id":    newRoomID,
				"updated_at": time.Now(),
			}).Error
	})
	return unlinked, err
}

// CreateInventoryReceipt 写入库存收货流水并累加设备的库存收货数量（同一事务）。
// (equipment_item_id, action_id) 唯一索引保证重试不重复累加。
func (r *EquipmentRepository) CreateInventoryReceipt(ctx context.Context, receipt *entity.InventoryReceipt, receivedBy string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}
		return tx.Model(&entity.EquipmentItem{}).
			Where("id = ?", receipt.EquipmentItemID).
			Updates(map[string]interface{}{
				"inventory_received_qty": gorm.Expr("inventory_received_qty + ?", receipt.Quantity),
				"received_at":            now,
				"received_by":            receivedBy,
				"updated_at":             now,
			}).Error
	})
}

// FindInventoryReceipt 查找库存收货流水
func (r *EquipmentRepository) FindInventoryReceipt(ctx context.Context, equipmentItemID, actionID string) (*entity.InventoryReceipt, error) {
	var receipt entity.InventoryReceipt
	err := r.db.WithContext(ctx).
		Where("equipment_item_id = ? AND action_id = ?", equipmentItemID, actionID).
		First(&receipt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}
