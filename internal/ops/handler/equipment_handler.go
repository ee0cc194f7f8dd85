package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/isehome/unicorn-sub003/internal/ops/entity"
	"github.com/isehome/unicorn-sub003/internal/ops/repository"
	"github.com/isehome/unicorn-sub003/internal/ops/service"
	"github.com/isehome/unicorn-sub003/internal/ops/storage"
)

// EquipmentHandler 设备状态与变更操作处理器
type EquipmentHandler struct {
	statusSvc   *service.StatusService
	mutationSvc *service.MutationService
	repos       *repository.Repositories
	photoStore  *storage.PhotoStore
}

func NewEquipmentHandler(statusSvc *service.StatusService, mutationSvc *service.MutationService, repos *repository.Repositories, photoStore *storage.PhotoStore) *EquipmentHandler {
	return &EquipmentHandler{
		statusSvc:   statusSvc,
		mutationSvc: mutationSvc,
		repos:       repos,
		photoStore:  photoStore,
	}
}

// GetStatus 设备状态
// GET /api/v1/equipment/:id/status
func (h *EquipmentHandler) GetStatus(c *gin.Context) {
	composed, err := h.statusSvc.ComposeStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, composed)
}

// ReceiveLineItemRequest 按行项收货请求
type ReceiveLineItemRequest struct {
	Quantity  *float64 `json:"quantity" binding:"required"`
	Confirmed bool     `json:"confirmed"`
}

// ReceiveLineItem 按PO行项收货
// PUT /api/v1/line-items/:id/receive
func (h *EquipmentHandler) ReceiveLineItem(c *gin.Context) {
	var req ReceiveLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	composed, err := h.mutationSvc.ReceiveAgainstLineItem(
		c.Request.Context(), c.Param("id"), *req.Quantity, GetUserID(c), req.Confirmed)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, composed)
}

// ReceiveInventoryRequest 库存收货请求
type ReceiveInventoryRequest struct {
	Quantity float64 `json:"quantity" binding:"required"`
	ActionID string  `json:"action_id" binding:"required"`
}

// ReceiveInventory 从库存收货
// POST /api/v1/equipment/:id/receive-inventory
func (h *EquipmentHandler) ReceiveInventory(c *gin.Context) {
	var req ReceiveInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	composed, err := h.mutationSvc.ReceiveFromInventory(
		c.Request.Context(), c.Param("id"), req.Quantity, req.ActionID, GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, composed)
}

// SetFlagRequest 布尔标记请求
type SetFlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// SetDelivered 标记送达
// PUT /api/v1/equipment/:id/delivered
func (h *EquipmentHandler) SetDelivered(c *gin.Context) {
	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	composed, err := h.mutationSvc.SetDelivered(c.Request.Context(), c.Param("id"), *req.Value, GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, composed)
}

// SetInstalled 手动切换安装标记（仅无点位关联的设备）
// PUT /api/v1/equipment/:id/installed
func (h *EquipmentHandler) SetInstalled(c *gin.Context) {
	var req SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	composed, err := h.mutationSvc.SetInstalledManual(c.Request.Context(), c.Param("id"), *req.Value, GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, composed)
}

// ReassignRoomRequest 迁移房间请求
type ReassignRoomRequest struct {
	RoomID    string `json:"room_id" binding:"required"`
	Confirmed bool   `json:"confirmed"`
}

// ReassignRoom 迁移设备到新房间
// PUT /api/v1/equipment/:id/room
func (h *EquipmentHandler) ReassignRoom(c *gin.Context) {
	var req ReassignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.mutationSvc.ReassignRoom(
		c.Request.Context(), c.Param("id"), req.RoomID, GetUserID(c), req.Confirmed)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, result)
}

// UploadPhoto 上传收货照片
// POST /api/v1/equipment/:id/photos
func (h *EquipmentHandler) UploadPhoto(c *gin.Context) {
	if h.photoStore == nil {
		Error(c, 50310, "照片存储未配置")
		return
	}

	equipmentItemID := c.Param("id")
	if _, err := h.repos.Equipment.FindByID(c.Request.Context(), equipmentItemID); err != nil {
		ServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少文件: "+err.Error())
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	objectKey, err := h.photoStore.Upload(
		c.Request.Context(), equipmentItemID, header.Filename, contentType, file, header.Size)
	if err != nil {
		InternalError(c, "上传照片失败: "+err.Error())
		return
	}

	photo := &entity.ReceivingPhoto{
		ID:              uuid.New().String()[:32],
		EquipmentItemID: equipmentItemID,
		ObjectKey:       objectKey,
		FileName:        header.Filename,
		ContentType:     contentType,
		Size:            header.Size,
		UploadedBy:      GetUserID(c),
	}
	if err := h.repos.Photo.Create(c.Request.Context(), photo); err != nil {
		InternalError(c, "记录照片元数据失败: "+err.Error())
		return
	}
	Success(c, photo)
}

// ListPhotos 设备收货照片列表（附临时访问链接）
// GET /api/v1/equipment/:id/photos
func (h *EquipmentHandler) ListPhotos(c *gin.Context) {
	photos, err := h.repos.Photo.FindByEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	type photoWithURL struct {
		entity.ReceivingPhoto
		URL string `json:"url,omitempty"`
	}
	out := make([]photoWithURL, 0, len(photos))
	for _, p := range photos {
		var url string
		if h.photoStore != nil {
			url, _ = h.photoStore.PresignedURL(c.Request.Context(), p.ObjectKey, 15*time.Minute)
		}
		out = append(out, photoWithURL{ReceivingPhoto: p, URL: url})
	}
	Success(c, ListResponse{Items: out})
}

// ListActivity 设备操作日志
// GET /api/v1/equipment/:id/activity
func (h *EquipmentHandler) ListActivity(c *gin.Context) {
	page, pageSize := GetPagination(c)
	logs, total, err := h.repos.ActivityLog.FindByEntity(c.Request.Context(), "equipment", c.Param("id"), page, pageSize)
	if err != nil {
		ServiceError(c, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: logs,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}
