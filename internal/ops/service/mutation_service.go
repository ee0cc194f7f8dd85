package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"github.com/isehome/unicorn-sub003/internal/ops/repository"
	"github.com/isehome/unicorn-sub003/internal/ops/status"
	"go.uber.org/zap"
)

// MutationService 变更操作服务。
//
// 每个操作只写一类来源记录，写入后同步重算并持久化设备聚合，
// 再通知下游缓存失效。重算永远基于来源记录快照，从不盲目累加，
// 同一来源状态重复重算结果相同。
type MutationService struct {
	repos       *repository.Repositories
	statusSvc   *StatusService
	invalidator Invalidator
	logger      *zap.Logger
}

func NewMutationService(repos *repository.Repositories, statusSvc *StatusService, invalidator Invalidator, logger *zap.Logger) *MutationService {
	return &MutationService{
		repos:       repos,
		statusSvc:   statusSvc,
		invalidator: invalidator,
		logger:      logger,
	}
}

// ReceiveAgainstLineItem 按PO行项收货。
//
// quantity 是绝对值（quantity_received = X），同值重试天然幂等。
// 数量回退或与下单数量不一致时返回警告，confirmed 后放行。
func (s *MutationService) ReceiveAgainstLineItem(ctx context.Context, lineItemID string, quantity float64, actorID string, confirmed bool) (*status.EquipmentStatus, error) {
	if quantity < 0 {
		return nil, &InvalidOperationError{Reason: "收货数量不能为负"}
	}

	line, err := s.repos.PO.FindLineItemByID(ctx, lineItemID)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	if quantity < line.QuantityReceived {
		warnings = append(warnings, Warning{
			Code:    WarnQtyDecrease,
			Message: fmt.Sprintf("收货数量从 %.2f 回退到 %.2f，将撤销此前的收货动作", line.QuantityReceived, quantity),
		})
	}
	if quantity != line.QuantityOrdered {
		warnings = append(warnings, Warning{
			Code:    WarnQtyMismatch,
			Message: fmt.Sprintf("收货数量 %.2f 与下单数量 %.2f 不一致", quantity, line.QuantityOrdered),
		})
	}
	if len(warnings) > 0 && !confirmed {
		return nil, &WarningError{Warnings: warnings}
	}

	increased := quantity > line.QuantityReceived

	if err := s.repos.PO.SetLineItemReceived(ctx, lineItemID, quantity); err != nil {
		return nil, fmt.Errorf("set line item received: %w", err)
	}

	item, err := s.repos.Equipment.FindByID(ctx, line.EquipmentItemID)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeReceived(ctx, item, increased, actorID); err != nil {
		return nil, err
	}

	s.repos.ActivityLog.LogActivity(ctx, item.ProjectID, "po_line_item", lineItemID,
		entity.ActionReceive,
		fmt.Sprintf("收货数量 %.2f → %.2f", line.QuantityReceived, quantity),
		actorID,
		entity.JSONB{"equipment_item_id": item.ID, "quantity": quantity},
	)
	s.logger.Info("line item received",
		zap.String("line_item_id", lineItemID),
		zap.String("equipment_item_id", item.ID),
		zap.Float64("quantity", quantity),
		zap.String("actor", actorID),
	)
	s.invalidator.Invalidate(ctx, item.ProjectID)

	return s.statusSvc.ComposeStatus(ctx, item.ID)
}

// ReceiveFromInventory 从仓库库存收货。
//
// 唯一会累加的操作，靠 (equipment_item_id, action_id) 唯一流水保证
// 网络重试不重复累加：同参数重放直接返回当前状态，异参数重放报冲突。
func (s *MutationService) ReceiveFromInventory(ctx context.Context, equipmentItemID string, quantity float64, actionID, actorID string) (*status.EquipmentStatus, error) {
	if actionID == "" {
		return nil, &InvalidOperationError{Reason: "缺少 action_id，库存收货必须携带幂等标识"}
	}
	if quantity <= 0 {
		return nil, &InvalidOperationError{Reason: "库存收货数量必须大于零"}
	}

	item, err := s.repos.Equipment.FindByID(ctx, equipmentItemID)
	if err != nil {
		return nil, err
	}

	// 重放检测
	if prior, err := s.repos.Equipment.FindInventoryReceipt(ctx, equipmentItemID, actionID); err == nil {
		if prior.Quantity != quantity {
			return nil, &ConflictError{Reason: fmt.Sprintf("action_id %s 已以数量 %.2f 执行过", actionID, prior.Quantity)}
		}
		return s.statusSvc.ComposeStatus(ctx, equipmentItemID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check inventory receipt: %w", err)
	}

	composed, err := s.statusSvc.ComposeFor(ctx, item)
	if err != nil {
		return nil, err
	}
	if quantity > composed.InventoryToReceive {
		return nil, &InvalidOperationError{
			Reason: fmt.Sprintf("库存收货数量 %.2f 超出当前可收额度 %.2f", quantity, composed.InventoryToReceive),
		}
	}

	receipt := &entity.InventoryReceipt{
		ID:              uuid.New().String()[:32],
		EquipmentItemID: equipmentItemID,
		ActionID:        actionID,
		Quantity:        quantity,
		CreatedBy:       actorID,
	}
	if err := s.repos.Equipment.CreateInventoryReceipt(ctx, receipt, actorID); err != nil {
		// 并发重放撞上唯一索引：按重放语义处理
		if prior, findErr := s.repos.Equipment.FindInventoryReceipt(ctx, equipmentItemID, actionID); findErr == nil {
			if prior.Quantity != quantity {
				return nil, &ConflictError{Reason: fmt.Sprintf("action_id %s 已以数量 %.2f 执行过", actionID, prior.Quantity)}
			}
			return s.statusSvc.ComposeStatus(ctx, equipmentItemID)
		}
		return nil, fmt.Errorf("create inventory receipt: %w", err)
	}

	item, err = s.repos.Equipment.FindByID(ctx, equipmentItemID)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeReceived(ctx, item, false, actorID); err != nil {
		return nil, err
	}

	s.repos.ActivityLog.LogActivity(ctx, item.ProjectID, "equipment", equipmentItemID,
		entity.ActionReceiveInventory,
		fmt.Sprintf("从库存收货 %.2f", quantity),
		actorID,
		entity.JSONB{"action_id": actionID, "quantity": quantity},
	)
	s.logger.Info("received from inventory",
		zap.String("equipment_item_id", equipmentItemID),
		zap.Float64("quantity", quantity),
		zap.String("action_id", actionID),
		zap.String("actor", actorID),
	)
	s.invalidator.Invalidate(ctx, item.ProjectID)

	return s.statusSvc.ComposeStatus(ctx, equipmentItemID)
}

// SetDelivered 标记/取消送达（纯手动：确认实物已到现场，与收货相互独立）
func (s *MutationService) SetDelivered(ctx context.Context, equipmentItemID string, value bool, actorID string) (*status.EquipmentStatus, error) {
	item, err := s.repos.Equipment.FindByID(ctx, equipmentItemID)
	if err != nil {
		return nil, err
	}

	if value {
		now := time.Now()
		item.Delivered = true
		item.DeliveredAt = &now
		item.DeliveredBy = &actorID
	} else {
		item.Delivered = false
		item.DeliveredAt = nil
		item.DeliveredBy = nil
	}
	if err := s.repos.Equipment.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update equipment: %w", err)
	}

	s.repos.ActivityLog.LogActivity(ctx, item.ProjectID, "equipment", equipmentItemID,
		entity.ActionDeliver,
		fmt.Sprintf("送达标记 → %v", value),
		actorID, nil,
	)
	s.invalidator.Invalidate(ctx, item.ProjectID)

	return s.statusSvc.ComposeFor(ctx, item)
}

// SetInstalledManual 手动切换安装标记。
// 仅对无点位关联的设备开放；有关联时状态由布线推导，直接拒绝。
func (s *MutationService) SetInstalledManual(ctx context.Context, equipmentItemID string, value bool, actorID string) (*status.EquipmentStatus, error) {
	item, err := s.repos.Equipment.FindByID(ctx, equipmentItemID)
	if err != nil {
		return nil, err
	}

	linkCount, err := s.repos.Equipment.CountLinks(ctx, equipmentItemID)
	if err != nil {
		return nil, fmt.Errorf("count wire drop links: %w", err)
	}
	if linkCount > 0 {
		return nil, &InvalidOperationError{
			Reason: "该设备已关联线缆点位，安装状态由trim-out阶段推导，不能手动设置",
		}
	}

	if value {
		now := time.Now()
		item.InstalledManual = true
		item.InstalledManualAt = &now
		item.InstalledManualBy = &actorID
	} else {
		item.InstalledManual = false
		item.InstalledManualAt = nil
		item.InstalledManualBy = nil
	}
	if err := s.repos.Equipment.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update equipment: %w", err)
	}

	s.repos.ActivityLog.LogActivity(ctx, item.ProjectID, "equipment", equipmentItemID,
		entity.ActionInstall,
		fmt.Sprintf("手动安装标记 → %v", value),
		actorID, nil,
	)
	s.invalidator.Invalidate(ctx, item.ProjectID)

	return s.statusSvc.ComposeFor(ctx, item)
}

// ReassignRoomResult 迁移房间结果
type ReassignRoomResult struct {
	WireDropsUnlinked int64                   `json:"wire_drops_unlinked"`
	Status            *status.EquipmentStatus `json:"status"`
}

// ReassignRoom 迁移设备到新房间。
//
// 点位分类和布线拓扑以房间为作用域，迁移会级联解除全部点位关联，
// 布线推导的安装状态随之失效（手动标记保留，供失联后回退使用）。
// 存在关联时需 confirmed 确认，属破坏性级联。
func (s *MutationService) ReassignRoom(ctx context.Context, equipmentItemID, newRoomID, actorID string, confirmed bool) (*ReassignRoomResult, error) {
	item, err := s.repos.Equipment.FindByID(ctx, equipmentItemID)
	if err != nil {
		return nil, err
	}
	room, err := s.repos.Project.FindRoomByID(ctx, newRoomID)
	if err != nil {
		return nil, err
	}

	linkCount, err := s.repos.Equipment.CountLinks(ctx, equipmentItemID)
	if err != nil {
		return nil, fmt.Errorf("count wire drop links: %w", err)
	}
	if linkCount > 0 && !confirmed {
		return nil, &WarningError{Warnings: []Warning{{
			Code:    WarnUnlinksWiring,
			Message: fmt.Sprintf("迁移房间将解除 %d 条线缆点位关联，布线推导的安装状态随之失效", linkCount),
		}}}
	}

	unlinked, err := s.repos.Equipment.ReassignRoom(ctx, equipmentItemID, newRoomID)
	if err != nil {
		return nil, fmt.Errorf("reassign room: %w", err)
	}

	s.repos.ActivityLog.LogActivity(ctx, item.ProjectID, "equipment", equipmentItemID,
		entity.ActionReassignRoom,
		fmt.Sprintf("迁移到房间 %s，解除 %d 条点位关联", room.Name, unlinked),
		actorID,
		entity.JSONB{"room_id": newRoomID, "unlinked": unlinked},
	)
	s.logger.Info("equipment reassigned",
		zap.String("equipment_item_id", equipmentItemID),
		zap.String("room_id", newRoomID),
		zap.Int64("unlinked", unlinked),
		zap.String("actor", actorID),
	)
	s.invalidator.Invalidate(ctx, item.ProjectID)

	composed, err := s.statusSvc.ComposeStatus(ctx, equipmentItemID)
	if err != nil {
		return nil, err
	}
	return &ReassignRoomResult{WireDropsUnlinked: unlinked, Status: composed}, nil
}

// recomputeReceived 基于行项快照重算收货聚合并持久化到设备条目。
// stamp 为真时更新收货时间与经手人（数量增加的收货动作）。
func (s *MutationService) recomputeReceived(ctx context.Context, item *entity.EquipmentItem, stamp bool, actorID string) error {
	lines, err := s.repos.PO.LineItemsForEquipment(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("load line items: %w", err)
	}
	q := status.AggregateQuantities(toLineSnapshots(lines))
	total := q.Received + item.InventoryReceivedQty

	var at *time.Time
	var by *string
	if stamp {
		now := time.Now()
		at = &now
		by = &actorID
	}
	if err := s.repos.Equipment.UpdateReceivedAggregate(ctx, item.ID, total, at, by); err != nil {
		return fmt.Errorf("persist received aggregate: %w", err)
	}
	return nil
}
