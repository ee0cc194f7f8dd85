package status

import "testing"

func TestCompose_ReceivedCombinesSources(t *testing.T) {
	item := Item{PlannedQty: 10, InventoryReceivedQty: 3}
	lines := []LineItem{
		{POStatus: "confirmed", QuantityOrdered: 4, QuantityReceived: 2},
	}

	s := Compose(item, lines, 0, nil, 0)
	if s.ReceivedQty != 5 {
		t.Errorf("ReceivedQty = %v, want 5 (line items + inventory)", s.ReceivedQty)
	}
	if !s.Received {
		t.Errorf("Received should be true with qty > 0")
	}
	if s.FullyReceived {
		t.Errorf("FullyReceived should be false at 5/10")
	}
}

func TestCompose_FullyReceived(t *testing.T) {
	cases := []struct {
		name      string
		planned   float64
		lineRecv  float64
		invRecv   float64
		wantFully bool
	}{
		{"exact", 10, 10, 0, true},
		{"over", 10, 8, 4, true},
		{"under", 10, 9, 0, false},
		{"zero planned never fully received", 0, 5, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := Item{PlannedQty: tc.planned, InventoryReceivedQty: tc.invRecv}
			lines := []LineItem{{POStatus: "received", QuantityOrdered: tc.planned, QuantityReceived: tc.lineRecv}}
			s := Compose(item, lines, 0, nil, 0)
			if s.FullyReceived != tc.wantFully {
				t.Errorf("FullyReceived = %v, want %v", s.FullyReceived, tc.wantFully)
			}
		})
	}
}

func TestCompose_OrderedFlag(t *testing.T) {
	item := Item{PlannedQty: 5}

	s := Compose(item, []LineItem{{POStatus: "draft", QuantityOrdered: 5}}, 0, nil, 0)
	if s.Ordered || s.OrderedQty != 0 {
		t.Errorf("draft PO should not set ordered, got ordered=%v qty=%v", s.Ordered, s.OrderedQty)
	}

	s = Compose(item, []LineItem{{POStatus: "submitted", QuantityOrdered: 5}}, 0, nil, 0)
	if !s.Ordered || s.OrderedQty != 5 {
		t.Errorf("submitted PO should set ordered, got ordered=%v qty=%v", s.Ordered, s.OrderedQty)
	}
}

func TestCompose_InventoryAllocation(t *testing.T) {
	item := Item{PlannedQty: 10}
	lines := []LineItem{{POStatus: "confirmed", QuantityOrdered: 4}}

	s := Compose(item, lines, 0, nil, 10)
	if s.InventoryAllocated != 6 {
		t.Errorf("InventoryAllocated = %v, want 6", s.InventoryAllocated)
	}
	if s.InventoryToReceive != 6 {
		t.Errorf("InventoryToReceive = %v, want 6", s.InventoryToReceive)
	}

	// 已下单覆盖计划时不分配
	s = Compose(item, []LineItem{{POStatus: "confirmed", QuantityOrdered: 10}}, 0, nil, 3)
	if s.InventoryAllocated != 0 || s.InventoryToReceive != 0 {
		t.Errorf("fully ordered item should not allocate stock, got %v/%v",
			s.InventoryAllocated, s.InventoryToReceive)
	}
}

func TestCompose_InstalledViaWireDrop(t *testing.T) {
	item := Item{PlannedQty: 1, Manual: ManualInstall{Installed: true, At: ts(1), By: "tech-1"}}

	// 无关联：手动安装，非经点位
	s := Compose(item, nil, 0, nil, 0)
	if !s.Installed || s.InstalledViaWireDrop {
		t.Errorf("manual install: installed=%v via=%v, want true/false", s.Installed, s.InstalledViaWireDrop)
	}

	// 有关联且trim-out未完成：既未安装也非经点位
	s = Compose(item, nil, 2, []Stage{{StageType: "trim_out"}}, 0)
	if s.Installed || s.InstalledViaWireDrop {
		t.Errorf("linked with incomplete trim_out: installed=%v via=%v, want false/false",
			s.Installed, s.InstalledViaWireDrop)
	}

	// 有关联且trim-out完成
	s = Compose(item, nil, 2, []Stage{{StageType: "trim_out", Completed: true, CompletedAt: ts(6), CompletedBy: "tech-2"}}, 0)
	if !s.Installed || !s.InstalledViaWireDrop {
		t.Errorf("linked with completed trim_out: installed=%v via=%v, want true/true",
			s.Installed, s.InstalledViaWireDrop)
	}
	if s.InstalledBy != "tech-2" {
		t.Errorf("InstalledBy = %q, want tech-2", s.InstalledBy)
	}
	if s.ActiveLinkCount != 2 {
		t.Errorf("ActiveLinkCount = %d, want 2", s.ActiveLinkCount)
	}
}

func TestCompose_DeliveredIndependentOfReceived(t *testing.T) {
	item := Item{PlannedQty: 2, Delivered: true, DeliveredAt: ts(4), DeliveredBy: "driver-1"}

	s := Compose(item, nil, 0, nil, 0)
	if !s.Delivered {
		t.Errorf("Delivered flag should pass through without receiving")
	}
	if s.Received {
		t.Errorf("Received should stay false with no receipts")
	}
}

// 同一快照重复汇总结果一致。
func TestCompose_Idempotent(t *testing.T) {
	item := Item{PlannedQty: 10, InventoryReceivedQty: 1, Manual: ManualInstall{Installed: true}}
	lines := []LineItem{
		{POStatus: "submitted", QuantityOrdered: 4, QuantityReceived: 2, OrderDate: ts(2), OrderedBy: "buyer"},
		{POStatus: "draft", QuantityOrdered: 3},
	}
	stages := []Stage{{StageType: "trim_out", Completed: true, CompletedAt: ts(5), CompletedBy: "tech"}}

	first := Compose(item, lines, 1, stages, 7)
	second := Compose(item, lines, 1, stages, 7)
	if first != second {
		t.Errorf("recompute over same snapshot diverged:\nfirst  %+v\nsecond %+v", first, second)
	}
}
