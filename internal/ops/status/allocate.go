package status

// Allocation 库存分配视图（瞬时值，不落库）
type Allocation struct {
	// Allocated 计划数量中假定由现有库存满足的部分
	Allocated float64
	// ToReceive 其中尚可执行"从库存收货"的剩余额度
	ToReceive float64
}

// Allocate 计算库存分配。
//
// Allocated = min(max(0, planned-ordered), onHand)：订单已覆盖的部分
// 不占库存；ordered >= planned 时分配为零，不提供库存收货入口。
// ToReceive = min(Allocated, max(0, planned-received-ordered))，
// 随 ordered/received/planned/onHand 任一变化重算。
func Allocate(planned, ordered, received, onHand float64) Allocation {
	unordered := planned - ordered
	if unordered < 0 {
		unordered = 0
	}
	allocated := unordered
	if onHand < allocated {
		allocated = onHand
	}

	outstanding := planned - received - ordered
	if outstanding < 0 {
		outstanding = 0
	}
	toReceive := allocated
	if outstanding < toReceive {
		toReceive = outstanding
	}

	return Allocation{Allocated: allocated, ToReceive: toReceive}
}
