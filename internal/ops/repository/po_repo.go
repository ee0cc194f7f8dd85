package repository

import (
	"context"
	"errors"
	"time"

	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"gorm.io/gorm"
)

// PORepository 采购订单仓库
type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

// FindByProject 查询项目下的采购订单（含行项）
func (r *PORepository) FindByProject(ctx context.Context, projectID string, filters map[string]string) ([]entity.PurchaseOrder, error) {
	var pos []entity.PurchaseOrder
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("po_code ILIKE ?", "%"+search+"%")
	}

	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("created_at DESC").
		Find(&pos).Error
	return pos, err
}

// FindByID 根据ID查找采购订单（含行项）
func (r *PORepository) FindByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindLineItemByID 查找PO行项
func (r *PORepository) FindLineItemByID(ctx context.Context, lineItemID string) (*entity.POLineItem, error) {
	var item entity.POLineItem
	err := r.db.WithContext(ctx).Where("id = ?", lineItemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// LineItemWithStatus 行项快照（附带所属PO的状态与下单信息）
type LineItemWithStatus struct {
	entity.POLineItem
	POStatus    string     `json:"po_status"`
	POCode      string     `json:"po_code"`
	OrderDate   *time.Time `json:"order_date"`
	POCreatedBy string     `json:"po_created_by"`
}

// LineItemsForEquipment 查询某设备的全部行项快照。
// 数量聚合只依赖这一个查询结果：行项缺失视为零，不报错。
func (r *PORepository) LineItemsForEquipment(ctx context.Context, equipmentItemID string) ([]LineItemWithStatus, error) {
	var rows []LineItemWithStatus
	err := r.db.WithContext(ctx).
		Table("po_line_items").
		Select("po_line_items.*, purchase_orders.status AS po_status, purchase_orders.po_code AS po_code, purchase_orders.order_date AS order_date, purchase_orders.created_by AS po_created_by").
		Joins("JOIN purchase_orders ON purchase_orders.id = po_line_items.po_id").
		Where("po_line_items.equipment_item_id = ?", equipmentItemID).
		Order("po_line_items.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

// SetLineItemReceived 设置行项收货数量（绝对值，重试安全）
func (r *PORepository) SetLineItemReceived(ctx context.Context, lineItemID string, quantity float64) error {
	return r.db.WithContext(ctx).Model(&entity.POLineItem{}).
		Where("id = ?", lineItemID).
		Updates(map[string]interface{}{
			"quantity_received": quantity,
			"updated_at":        time.Now(),
		}).Error
}

// Create 创建采购订单（含行项）
func (r *PORepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// UpdateStatus 更新PO状态（状态流转由采购模块负责，这里只提供写入口）
func (r *PORepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
