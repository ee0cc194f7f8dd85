package service

import (
	"context"
	"fmt"

	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"github.com/isehome/unicorn-sub003/internal/ops/repository"
	"github.com/isehome/unicorn-sub003/internal/ops/status"
)

// StatusService 状态汇总服务（唯一的状态读取入口）
type StatusService struct {
	repos *repository.Repositories
}

func NewStatusService(repos *repository.Repositories) *StatusService {
	return &StatusService{repos: repos}
}

// ComposeStatus 汇总某设备的规范状态记录
func (s *StatusService) ComposeStatus(ctx context.Context, equipmentItemID string) (*status.EquipmentStatus, error) {
	item, err := s.repos.Equipment.FindByID(ctx, equipmentItemID)
	if err != nil {
		return nil, err
	}
	return s.ComposeFor(ctx, item)
}

// ComposeFor 基于已加载的设备条目汇总状态
func (s *StatusService) ComposeFor(ctx context.Context, item *entity.EquipmentItem) (*status.EquipmentStatus, error) {
	lines, err := s.repos.PO.LineItemsForEquipment(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}

	links, err := s.repos.Equipment.Links(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("load wire drop links: %w", err)
	}

	var stages []entity.WireDropStage
	if len(links) > 0 {
		stages, err = s.repos.WireDrop.StagesForEquipment(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("load wire drop stages: %w", err)
		}
	}

	onHand := 0.0
	if item.PartID != nil {
		onHand, err = s.repos.Stock.OnHand(ctx, *item.PartID)
		if err != nil {
			return nil, fmt.Errorf("load warehouse stock: %w", err)
		}
	}

	composed := status.Compose(toItemSnapshot(item), toLineSnapshots(lines), len(links), toStageSnapshots(stages), onHand)
	return &composed, nil
}

// EquipmentWithStatus 设备条目及其汇总状态
type EquipmentWithStatus struct {
	Item   entity.EquipmentItem   `json:"item"`
	Status status.EquipmentStatus `json:"status"`
}

// ListProjectStatuses 汇总项目下全部可见设备的状态
func (s *StatusService) ListProjectStatuses(ctx context.Context, projectID string) ([]EquipmentWithStatus, error) {
	items, err := s.repos.Equipment.FindByProject(ctx, projectID, true)
	if err != nil {
		return nil, fmt.Errorf("load equipment: %w", err)
	}

	result := make([]EquipmentWithStatus, 0, len(items))
	for i := range items {
		composed, err := s.ComposeFor(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		result = append(result, EquipmentWithStatus{Item: items[i], Status: *composed})
	}
	return result, nil
}

// === 快照映射 ===

func toItemSnapshot(item *entity.EquipmentItem) status.Item {
	return status.Item{
		PlannedQty:           item.PlannedQty,
		InventoryReceivedQty: item.InventoryReceivedQty,
		ReceivedAt:           item.ReceivedAt,
		ReceivedBy:           strVal(item.ReceivedBy),
		Delivered:            item.Delivered,
		DeliveredAt:          item.DeliveredAt,
		DeliveredBy:          strVal(item.DeliveredBy),
		Manual: status.ManualInstall{
			Installed: item.InstalledManual,
			At:        item.InstalledManualAt,
			By:        strVal(item.InstalledManualBy),
		},
	}
}

func toLineSnapshots(rows []repository.LineItemWithStatus) []status.LineItem {
	lines := make([]status.LineItem, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, status.LineItem{
			POStatus:         row.POStatus,
			POCode:           row.POCode,
			OrderDate:        row.OrderDate,
			OrderedBy:        row.POCreatedBy,
			QuantityOrdered:  row.QuantityOrdered,
			QuantityReceived: row.QuantityReceived,
		})
	}
	return lines
}

func toStageSnapshots(stages []entity.WireDropStage) []status.Stage {
	out := make([]status.Stage, 0, len(stages))
	for _, st := range stages {
		out = append(out, status.Stage{
			StageType:   st.StageType,
			Completed:   st.Completed,
			CompletedAt: st.CompletedAt,
			CompletedBy: strVal(st.CompletedBy),
		})
	}
	return out
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
