package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"github.com/isehome/unicorn-sub003/internal/ops/repository"
	"github.com/isehome/unicorn-sub003/internal/ops/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newID() string {
	return uuid.New().String()[:32]
}

type fixture struct {
	db       *gorm.DB
	repos    *repository.Repositories
	status   *StatusService
	mutation *MutationService

	projectID string
	roomID    string
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	statusSvc := NewStatusService(repos)
	mutationSvc := NewMutationService(repos, statusSvc, NoopInvalidator{}, zap.NewNop())

	f := &fixture{
		db:        db,
		repos:     repos,
		status:    statusSvc,
		mutation:  mutationSvc,
		projectID: newID(),
		roomID:    newID(),
	}

	if err := db.Create(&entity.Project{
		ID: f.projectID, Code: "PRJ-TEST-" + f.projectID[:8], Name: "Test Project",
	}).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := db.Create(&entity.Room{
		ID: f.roomID, ProjectID: f.projectID, Name: "Living Room",
	}).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return f
}

func (f *fixture) seedEquipment(t *testing.T, plannedQty float64, partID *string) *entity.EquipmentItem {
	t.Helper()
	item := &entity.EquipmentItem{
		ID:         newID(),
		ProjectID:  f.projectID,
		RoomID:     &f.roomID,
		PartID:     partID,
		Name:       "AP-Pro",
		Category:   "network",
		PlannedQty: plannedQty,
		Visible:    true,
	}
	if err := f.db.Create(item).Error; err != nil {
		t.Fatalf("seed equipment: %v", err)
	}
	return item
}

func (f *fixture) seedPOWithLine(t *testing.T, poStatus string, equipmentItemID string, qtyOrdered float64) *entity.POLineItem {
	t.Helper()
	po := &entity.PurchaseOrder{
		ID:        newID(),
		POCode:    "PO-" + newID()[:8],
		ProjectID: f.projectID,
		Status:    poStatus,
		CreatedBy: "buyer-1",
	}
	orderDate := time.Now().Add(-24 * time.Hour)
	po.OrderDate = &orderDate
	if err := f.db.Create(po).Error; err != nil {
		t.Fatalf("seed po: %v", err)
	}

	line := &entity.POLineItem{
		ID:              newID(),
		POID:            po.ID,
		EquipmentItemID: equipmentItemID,
		QuantityOrdered: qtyOrdered,
	}
	if err := f.db.Create(line).Error; err != nil {
		t.Fatalf("seed line item: %v", err)
	}
	return line
}

func (f *fixture) seedLinkedDrop(t *testing.T, equipmentItemID string, trimOutDone bool) *entity.WireDrop {
	t.Helper()
	drop := &entity.WireDrop{
		ID: newID(), ProjectID: f.projectID, RoomID: f.roomID,
		Name: "Drop-" + newID()[:6], DropType: "cat6",
	}
	if err := f.db.Create(drop).Error; err != nil {
		t.Fatalf("seed wire drop: %v", err)
	}

	stage := &entity.WireDropStage{
		ID: newID(), WireDropID: drop.ID, StageType: entity.StageTrimOut,
	}
	if trimOutDone {
		now := time.Now()
		by := "tech-wire"
		stage.Completed = true
		stage.CompletedAt = &now
		stage.CompletedBy = &by
	}
	if err := f.db.Create(stage).Error; err != nil {
		t.Fatalf("seed stage: %v", err)
	}

	link := &entity.EquipmentWireDropLink{
		ID: newID(), EquipmentItemID: equipmentItemID, WireDropID: drop.ID,
	}
	if err := f.db.Create(link).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}
	return drop
}

func (f *fixture) seedStock(t *testing.T, partID string, onHand float64) {
	t.Helper()
	if err := f.db.Create(&entity.WarehouseStock{PartID: partID, QuantityOnHand: onHand}).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func TestReceiveAgainstLineItem(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	item := f.seedEquipment(t, 5, nil)
	line := f.seedPOWithLine(t, entity.POStatusSubmitted, item.ID, 5)

	// 全额收货，数量与下单一致：无警告直接成功
	composed, err := f.mutation.ReceiveAgainstLineItem(ctx, line.ID, 5, "tech-1", false)
	if err != nil {
		t.Fatalf("full receive failed: %v", err)
	}
	if composed.ReceivedQty != 5 || !composed.FullyReceived {
		t.Errorf("ReceivedQty=%v FullyReceived=%v, want 5/true", composed.ReceivedQty, composed.FullyReceived)
	}
	if composed.ReceivedAt == nil || composed.ReceivedBy != "tech-1" {
		t.Errorf("receive should stamp timestamp and actor, got at=%v by=%q", composed.ReceivedAt, composed.ReceivedBy)
	}

	// 回退数量且与下单不一致：未确认时拒绝并列出警告
	_, err = f.mutation.ReceiveAgainstLineItem(ctx, line.ID, 3, "tech-1", false)
	w, ok := AsWarning(err)
	if !ok {
		t.Fatalf("expected WarningError, got %v", err)
	}
	codes := map[string]bool{}
	for _, warning := range w.Warnings {
		codes[warning.Code] = true
	}
	if !codes[WarnQtyDecrease] || !codes[WarnQtyMismatch] {
		t.Errorf("warnings = %v, want both qty_decrease and qty_mismatch", w.Warnings)
	}

	// 数据库未被触碰
	check, _ := f.repos.PO.FindLineItemByID(ctx, line.ID)
	if check.QuantityReceived != 5 {
		t.Fatalf("rejected receive must not write, quantity_received = %v", check.QuantityReceived)
	}

	// 确认后放行
	composed, err = f.mutation.ReceiveAgainstLineItem(ctx, line.ID, 3, "tech-2", true)
	if err != nil {
		t.Fatalf("confirmed receive failed: %v", err)
	}
	if composed.ReceivedQty != 3 {
		t.Errorf("ReceivedQty = %v, want 3 after confirmed decrease", composed.ReceivedQty)
	}
	if composed.FullyReceived {
		t.Errorf("FullyReceived should drop back to false at 3/5")
	}
}

func TestReceiveAgainstLineItem_Idempotent(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	item := f.seedEquipment(t, 4, nil)
	line := f.seedPOWithLine(t, entity.POStatusConfirmed, item.ID, 4)

	first, err := f.mutation.ReceiveAgainstLineItem(ctx, line.ID, 4, "tech-1", false)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	// 同值重试：绝对值写入，总量不翻倍
	second, err := f.mutation.ReceiveAgainstLineItem(ctx, line.ID, 4, "tech-1", false)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if first.ReceivedQty != 4 || second.ReceivedQty != 4 {
		t.Errorf("retry changed quantity: first=%v second=%v, want 4", first.ReceivedQty, second.ReceivedQty)
	}
}

func TestReceiveAgainstLineItem_NegativeRejected(t *testing.T) {
	f := setupFixture(t)
	item := f.seedEquipment(t, 2, nil)
	line := f.seedPOWithLine(t, entity.POStatusSubmitted, item.ID, 2)

	_, err := f.mutation.ReceiveAgainstLineItem(context.Background(), line.ID, -1, "tech-1", true)
	var invalid *InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError for negative quantity, got %v", err)
	}
}

func TestReceiveFromInventory(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	partID := newID()
	f.seedStock(t, partID, 10)
	item := f.seedEquipment(t, 10, &partID)
	f.seedPOWithLine(t, entity.POStatusConfirmed, item.ID, 4)

	// 初始额度：min(10-4, 10) = 6
	composed, err := f.status.ComposeStatus(ctx, item.ID)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if composed.InventoryToReceive != 6 {
		t.Fatalf("initial InventoryToReceive = %v, want 6", composed.InventoryToReceive)
	}

	actionID := "act-" + newID()[:12]
	composed, err = f.mutation.ReceiveFromInventory(ctx, item.ID, 2, actionID, "tech-1")
	if err != nil {
		t.Fatalf("inventory receive failed: %v", err)
	}
	if composed.ReceivedQty != 2 {
		t.Errorf("ReceivedQty = %v, want 2", composed.ReceivedQty)
	}
	if composed.InventoryToReceive != 4 {
		t.Errorf("InventoryToReceive = %v, want 4 after receiving 2", composed.InventoryToReceive)
	}

	// 同 action_id 同数量重放：不重复累加
	composed, err = f.mutation.ReceiveFromInventory(ctx, item.ID, 2, actionID, "tech-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if composed.ReceivedQty != 2 {
		t.Errorf("replay doubled quantity: ReceivedQty = %v, want 2", composed.ReceivedQty)
	}

	// 同 action_id 不同数量：冲突
	_, err = f.mutation.ReceiveFromInventory(ctx, item.ID, 3, actionID, "tech-1")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for diverging replay, got %v", err)
	}

	// 超出剩余额度：拒绝
	_, err = f.mutation.ReceiveFromInventory(ctx, item.ID, 5, "act-"+newID()[:12], "tech-1")
	var invalid *InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError over allowance, got %v", err)
	}

	// 新 action_id 收掉剩余4：额度归零
	composed, err = f.mutation.ReceiveFromInventory(ctx, item.ID, 4, "act-"+newID()[:12], "tech-2")
	if err != nil {
		t.Fatalf("second inventory receive failed: %v", err)
	}
	if composed.ReceivedQty != 6 || composed.InventoryToReceive != 0 {
		t.Errorf("ReceivedQty=%v InventoryToReceive=%v, want 6/0", composed.ReceivedQty, composed.InventoryToReceive)
	}
}

func TestReceiveFromInventory_RequiresActionID(t *testing.T) {
	f := setupFixture(t)
	partID := newID()
	f.seedStock(t, partID, 5)
	item := f.seedEquipment(t, 5, &partID)

	_, err := f.mutation.ReceiveFromInventory(context.Background(), item.ID, 1, "", "tech-1")
	var invalid *InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError without action_id, got %v", err)
	}
}

func TestSetInstalledManual(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	// 无关联：手动切换生效
	item := f.seedEquipment(t, 1, nil)
	composed, err := f.mutation.SetInstalledManual(ctx, item.ID, true, "tech-1")
	if err != nil {
		t.Fatalf("manual install failed: %v", err)
	}
	if !composed.Installed || composed.InstalledViaWireDrop {
		t.Errorf("installed=%v via=%v, want true/false", composed.Installed, composed.InstalledViaWireDrop)
	}
	if composed.InstalledBy != "tech-1" {
		t.Errorf("InstalledBy = %q, want tech-1", composed.InstalledBy)
	}

	// 取消
	composed, err = f.mutation.SetInstalledManual(ctx, item.ID, false, "tech-1")
	if err != nil {
		t.Fatalf("manual uninstall failed: %v", err)
	}
	if composed.Installed {
		t.Errorf("uninstall did not clear installed flag")
	}

	// 有关联：拒绝手动设置
	linked := f.seedEquipment(t, 1, nil)
	f.seedLinkedDrop(t, linked.ID, false)
	_, err = f.mutation.SetInstalledManual(ctx, linked.ID, true, "tech-1")
	var invalid *InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError with active links, got %v", err)
	}
}

func TestSetDelivered(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	item := f.seedEquipment(t, 2, nil)

	composed, err := f.mutation.SetDelivered(ctx, item.ID, true, "driver-1")
	if err != nil {
		t.Fatalf("set delivered failed: %v", err)
	}
	if !composed.Delivered || composed.DeliveredBy != "driver-1" || composed.DeliveredAt == nil {
		t.Errorf("delivered state not stamped: %+v", composed)
	}
	// 送达与收货独立
	if composed.Received {
		t.Errorf("delivered must not imply received")
	}

	composed, err = f.mutation.SetDelivered(ctx, item.ID, false, "driver-1")
	if err != nil {
		t.Fatalf("unset delivered failed: %v", err)
	}
	if composed.Delivered || composed.DeliveredAt != nil {
		t.Errorf("unset did not clear delivered fields: %+v", composed)
	}
}

func TestReassignRoom_CascadeUnlink(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	item := f.seedEquipment(t, 1, nil)
	f.seedLinkedDrop(t, item.ID, true)
	f.seedLinkedDrop(t, item.ID, false)

	newRoom := &entity.Room{ID: newID(), ProjectID: f.projectID, Name: "Theater"}
	if err := f.db.Create(newRoom).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	// 迁移前：trim-out完成，布线推导已安装
	before, err := f.status.ComposeStatus(ctx, item.ID)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if !before.Installed || !before.InstalledViaWireDrop || before.ActiveLinkCount != 2 {
		t.Fatalf("precondition: installed=%v via=%v links=%d, want true/true/2",
			before.Installed, before.InstalledViaWireDrop, before.ActiveLinkCount)
	}

	// 未确认：警告
	_, err = f.mutation.ReassignRoom(ctx, item.ID, newRoom.ID, "tech-1", false)
	w, ok := AsWarning(err)
	if !ok {
		t.Fatalf("expected WarningError, got %v", err)
	}
	if len(w.Warnings) != 1 || w.Warnings[0].Code != WarnUnlinksWiring {
		t.Errorf("warnings = %v, want single unlinks_wiring", w.Warnings)
	}

	// 确认后：级联解除关联，安装状态随之失效
	result, err := f.mutation.ReassignRoom(ctx, item.ID, newRoom.ID, "tech-1", true)
	if err != nil {
		t.Fatalf("confirmed reassign failed: %v", err)
	}
	if result.WireDropsUnlinked != 2 {
		t.Errorf("WireDropsUnlinked = %d, want 2", result.WireDropsUnlinked)
	}
	if result.Status.ActiveLinkCount != 0 {
		t.Errorf("ActiveLinkCount = %d, want 0", result.Status.ActiveLinkCount)
	}
	if result.Status.Installed || result.Status.InstalledViaWireDrop {
		t.Errorf("wire-drop derived install must dissolve: installed=%v via=%v",
			result.Status.Installed, result.Status.InstalledViaWireDrop)
	}

	updated, err := f.repos.Equipment.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("reload equipment: %v", err)
	}
	if updated.RoomID == nil || *updated.RoomID != newRoom.ID {
		t.Errorf("room not updated, got %v", updated.RoomID)
	}
}

func TestReassignRoom_NoLinksNoWarning(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	item := f.seedEquipment(t, 1, nil)

	newRoom := &entity.Room{ID: newID(), ProjectID: f.projectID, Name: "Office"}
	if err := f.db.Create(newRoom).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	result, err := f.mutation.ReassignRoom(ctx, item.ID, newRoom.ID, "tech-1", false)
	if err != nil {
		t.Fatalf("reassign without links should not warn: %v", err)
	}
	if result.WireDropsUnlinked != 0 {
		t.Errorf("WireDropsUnlinked = %d, want 0", result.WireDropsUnlinked)
	}
}

func TestReassignRoom_UnknownRoom(t *testing.T) {
	f := setupFixture(t)
	item := f.seedEquipment(t, 1, nil)

	_, err := f.mutation.ReassignRoom(context.Background(), item.ID, newID(), "tech-1", true)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown room, got %v", err)
	}
}

// PO状态流转影响已下单数量：draft不计，提交后计入，取消后回落。
func TestPOStatusTransitionsRecompute(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	item := f.seedEquipment(t, 10, nil)
	line := f.seedPOWithLine(t, entity.POStatusDraft, item.ID, 10)

	composed, err := f.status.ComposeStatus(ctx, item.ID)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if composed.Ordered || composed.OrderedQty != 0 {
		t.Fatalf("draft PO leaked into ordered: %+v", composed)
	}

	if err := f.repos.PO.UpdateStatus(ctx, line.POID, entity.POStatusSubmitted); err != nil {
		t.Fatalf("update po status: %v", err)
	}
	composed, _ = f.status.ComposeStatus(ctx, item.ID)
	if !composed.Ordered || composed.OrderedQty != 10 {
		t.Errorf("submitted PO: ordered=%v qty=%v, want true/10", composed.Ordered, composed.OrderedQty)
	}

	if err := f.repos.PO.UpdateStatus(ctx, line.POID, entity.POStatusCancelled); err != nil {
		t.Fatalf("update po status: %v", err)
	}
	composed, _ = f.status.ComposeStatus(ctx, item.ID)
	if composed.Ordered || composed.OrderedQty != 0 {
		t.Errorf("cancelled PO: ordered=%v qty=%v, want false/0", composed.Ordered, composed.OrderedQty)
	}
}
