package status

import "testing"

func TestAllocate(t *testing.T) {
	cases := []struct {
		name          string
		planned       float64
		ordered       float64
		received      float64
		onHand        float64
		wantAllocated float64
		wantToReceive float64
	}{
		{"nothing planned", 0, 0, 0, 10, 0, 0},
		{"fully ordered leaves no allocation", 10, 10, 0, 3, 0, 0},
		{"over-ordered clamps to zero", 10, 15, 0, 3, 0, 0},
		{"stock covers shortfall", 10, 4, 0, 10, 6, 6},
		{"stock smaller than shortfall", 10, 4, 0, 2, 2, 2},
		{"no stock", 10, 0, 0, 0, 0, 0},
		{"received reduces to-receive", 10, 4, 2, 10, 6, 4},
		{"received exhausts to-receive", 10, 4, 6, 10, 6, 0},
		{"over-received clamps outstanding", 10, 4, 9, 10, 6, 0},
		{"unordered unreceived full need", 5, 0, 0, 8, 5, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Allocate(tc.planned, tc.ordered, tc.received, tc.onHand)
			if got.Allocated != tc.wantAllocated {
				t.Errorf("Allocated = %v, want %v", got.Allocated, tc.wantAllocated)
			}
			if got.ToReceive != tc.wantToReceive {
				t.Errorf("ToReceive = %v, want %v", got.ToReceive, tc.wantToReceive)
			}
		})
	}
}

// 收货动作后重算：额度随已收数量消耗，直至耗尽。
func TestAllocate_ShrinksAfterReceive(t *testing.T) {
	planned, ordered, onHand := 10.0, 4.0, 10.0

	before := Allocate(planned, ordered, 0, onHand)
	if before.ToReceive != 6 {
		t.Fatalf("initial ToReceive = %v, want 6", before.ToReceive)
	}

	after := Allocate(planned, ordered, 2, onHand)
	if after.ToReceive != 4 {
		t.Errorf("after receiving 2, ToReceive = %v, want 4", after.ToReceive)
	}
	if after.Allocated != 6 {
		t.Errorf("Allocated should not change with received, got %v", after.Allocated)
	}
}
