package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportService 设备状态导出
type ExportService struct {
	statusSvc *StatusService
}

func NewExportService(statusSvc *StatusService) *ExportService {
	return &ExportService{statusSvc: statusSvc}
}

var equipmentExportHeaders = []string{
	"设备名称", "类别", "安装端", "计划数量",
	"已下单", "下单数量", "已收货", "收货数量", "收货齐套",
	"库存分配", "库存可收", "已送达", "已安装", "安装来源",
}

// ExportProjectEquipment 导出项目设备状态为xlsx。
// 状态列全部来自状态汇总，不直接读来源记录。
func (s *ExportService) ExportProjectEquipment(ctx context.Context, projectID string) (*excelize.File, string, error) {
	statuses, err := s.statusSvc.ListProjectStatuses(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("list statuses: %w", err)
	}

	f := excelize.NewFile()
	sheet := "设备状态"
	f.SetSheetName("Sheet1", sheet)

	// 表头样式: 加粗
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range equipmentExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	yesNo := func(v bool) string {
		if v {
			return "是"
		}
		return "否"
	}

	for rowIdx, es := range statuses {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), es.Item.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), es.Item.Category)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), es.Item.InstallSide)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), es.Status.PlannedQty)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), yesNo(es.Status.Ordered))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), es.Status.OrderedQty)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), yesNo(es.Status.Received))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), es.Status.ReceivedQty)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), yesNo(es.Status.FullyReceived))
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), es.Status.InventoryAllocated)
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), es.Status.InventoryToReceive)
		f.SetCellValue(sheet, fmt.Sprintf("L%d", row), yesNo(es.Status.Delivered))
		f.SetCellValue(sheet, fmt.Sprintf("M%d", row), yesNo(es.Status.Installed))
		source := "手动"
		if es.Status.InstalledViaWireDrop {
			source = "布线"
		}
		f.SetCellValue(sheet, fmt.Sprintf("N%d", row), source)
	}

	colWidths := []float64{24, 12, 10, 10, 8, 10, 8, 10, 10, 10, 10, 8, 8, 10}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("设备状态_%s_%s.xlsx", projectID, time.Now().Format("20060102"))
	return f, filename, nil
}
