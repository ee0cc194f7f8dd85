package repository

import (
	"context"
	"errors"

	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"gorm.io/gorm"
)

// StockRepository 仓库库存（只读）
type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// OnHand 查询物料在库数量，无记录视为零
func (r *StockRepository) OnHand(ctx context.Context, partID string) (float64, error) {
	if partID == "" {
		return 0, nil
	}
	var stock entity.WarehouseStock
	err := r.db.WithContext(ctx).Where("part_id = ?", partID).First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return stock.QuantityOnHand, nil
}
