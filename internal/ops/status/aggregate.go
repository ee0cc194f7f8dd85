// Package status 设备状态重算核心。
//
// 本包只做纯计算：输入是各来源记录的当前快照（PO行项、点位施工阶段、
// 仓库在库数量），输出是设备的规范状态记录。不做任何I/O，同一快照
// 重复计算结果相同，供变更操作后的幂等重算使用。
package status

import "time"

// LineItem PO行项快照（附带所属PO的状态与下单信息）
type LineItem struct {
	POStatus         string
	POCode           string
	OrderDate        *time.Time
	OrderedBy        string
	QuantityOrdered  float64
	QuantityReceived float64
}

// Quantities 数量聚合结果
type Quantities struct {
	Ordered   float64
	Received  float64 // 仅行项收货部分，不含库存收货
	OrderedAt *time.Time
	OrderedBy string
}

// countsAsOrdered 判断PO状态是否计入已下单数量。
// 草稿和已取消的订单不计入：订单只有脱离草稿状态后才算数。
func countsAsOrdered(poStatus string) bool {
	switch poStatus {
	case "submitted", "confirmed", "partially_received", "received":
		return true
	}
	return false
}

// AggregateQuantities 跨PO汇总某设备的已下单/已收货数量。
//
// 已下单：仅统计状态计入的PO的行项。已收货：统计全部行项，
// 与PO状态无关——收货是关于实物的事实，不随订单生命周期变化。
// OrderedAt/OrderedBy 取计入的PO中下单日期最晚的一张。
func AggregateQuantities(lines []LineItem) Quantities {
	var q Quantities
	for _, line := range lines {
		q.Received += line.QuantityReceived

		if !countsAsOrdered(line.POStatus) {
			continue
		}
		q.Ordered += line.QuantityOrdered

		if line.OrderDate == nil {
			if q.OrderedAt == nil && q.OrderedBy == "" {
				q.OrderedBy = line.OrderedBy
			}
			continue
		}
		if q.OrderedAt == nil || line.OrderDate.After(*q.OrderedAt) {
			q.OrderedAt = line.OrderDate
			q.OrderedBy = line.OrderedBy
		}
	}
	return q
}
