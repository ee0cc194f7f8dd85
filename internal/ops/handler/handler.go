package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/isehome/unicorn-sub003/internal/ops/repository"
	"github.com/isehome/unicorn-sub003/internal/ops/service"
	"github.com/isehome/unicorn-sub003/internal/ops/storage"
)

// Handlers 处理器集合
type Handlers struct {
	Equipment *EquipmentHandler
	Project   *ProjectHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(
	statusSvc *service.StatusService,
	mutationSvc *service.MutationService,
	progressSvc *service.ProgressService,
	exportSvc *service.ExportService,
	repos *repository.Repositories,
	photoStore *storage.PhotoStore,
) *Handlers {
	return &Handlers{
		Equipment: NewEquipmentHandler(statusSvc, mutationSvc, repos, photoStore),
		Project:   NewProjectHandler(statusSvc, progressSvc, exportSvc, repos),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ConfirmRequired 警告响应：返回警告清单，调用方确认后携带 confirmed 重试
func ConfirmRequired(c *gin.Context, w *service.WarningError) {
	c.JSON(422, Response{
		Code:    42200,
		Message: "confirmation required",
		Data: gin.H{
			"warnings":         w.Warnings,
			"confirm_required": true,
		},
	})
}

// ServiceError 按错误类型映射响应。
// 未识别的错误一律视为数据源不可达（503），由调用方重试。
func ServiceError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c, "记录不存在")
		return
	}
	if w, ok := service.AsWarning(err); ok {
		ConfirmRequired(c, w)
		return
	}
	var invalid *service.InvalidOperationError
	if errors.As(err, &invalid) {
		Error(c, 40010, invalid.Reason)
		return
	}
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		Error(c, 40900, conflict.Reason)
		return
	}
	Error(c, 50300, "数据源不可达: "+err.Error())
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if s, ok := userID.(string); ok {
		return s
	}
	return ""
}

func GetPagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
