package handler

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/isehome/unicorn-sub003/internal/ops/repository"
	"github.com/isehome/unicorn-sub003/internal/ops/service"
)

// ProjectHandler 项目级读取处理器
type ProjectHandler struct {
	statusSvc   *service.StatusService
	progressSvc *service.ProgressService
	exportSvc   *service.ExportService
	repos       *repository.Repositories
}

func NewProjectHandler(statusSvc *service.StatusService, progressSvc *service.ProgressService, exportSvc *service.ExportService, repos *repository.Repositories) *ProjectHandler {
	return &ProjectHandler{
		statusSvc:   statusSvc,
		progressSvc: progressSvc,
		exportSvc:   exportSvc,
		repos:       repos,
	}
}

// ListEquipment 项目设备清单（含汇总状态）
// GET /api/v1/projects/:id/equipment
func (h *ProjectHandler) ListEquipment(c *gin.Context) {
	projectID := c.Param("id")
	if _, err := h.repos.Project.FindByID(c.Request.Context(), projectID); err != nil {
		ServiceError(c, err)
		return
	}

	statuses, err := h.statusSvc.ListProjectStatuses(c.Request.Context(), projectID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: statuses})
}

// GetProgress 项目里程碑进度
// GET /api/v1/projects/:id/progress
func (h *ProjectHandler) GetProgress(c *gin.Context) {
	projectID := c.Param("id")
	if _, err := h.repos.Project.FindByID(c.Request.Context(), projectID); err != nil {
		ServiceError(c, err)
		return
	}

	progress, err := h.progressSvc.ProjectProgress(c.Request.Context(), projectID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, progress)
}

// ExportEquipment 导出项目设备状态
// GET /api/v1/projects/:id/equipment/export
func (h *ProjectHandler) ExportEquipment(c *gin.Context) {
	projectID := c.Param("id")
	if _, err := h.repos.Project.FindByID(c.Request.Context(), projectID); err != nil {
		ServiceError(c, err)
		return
	}

	f, filename, err := h.exportSvc.ExportProjectEquipment(c.Request.Context(), projectID)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "导出失败: "+err.Error())
	}
}

// ListPurchaseOrders 项目采购订单列表（只读）
// GET /api/v1/projects/:id/purchase-orders
func (h *ProjectHandler) ListPurchaseOrders(c *gin.Context) {
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}
	pos, err := h.repos.PO.FindByProject(c.Request.Context(), c.Param("id"), filters)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: pos})
}

// ListWireDrops 项目线缆点位列表（只读）
// GET /api/v1/projects/:id/wire-drops
func (h *ProjectHandler) ListWireDrops(c *gin.Context) {
	drops, err := h.repos.WireDrop.FindByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: drops})
}

// ListRooms 项目房间列表
// GET /api/v1/projects/:id/rooms
func (h *ProjectHandler) ListRooms(c *gin.Context) {
	rooms, err := h.repos.Project.RoomsByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: rooms})
}
