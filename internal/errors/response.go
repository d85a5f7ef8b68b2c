package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Error   string                 `json:"error,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse 定义成功响应结构
type SuccessResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination 根据总数计算分页信息
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,
	ErrCache:    http.StatusInternalServerError,
	ErrTimeout:  http.StatusRequestTimeout,

	// 认证错误 (2000-2999)
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrTokenExpired:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceExists:   http.StatusConflict,
	ErrResourceConflict: http.StatusConflict,

	// 业务错误 (4000-4999)
	ErrUserNotFound:         http.StatusNotFound,
	ErrUserExists:           http.StatusConflict,
	ErrUserInactive:         http.StatusForbidden,
	ErrWeakPassword:         http.StatusBadRequest,
	ErrPostNotFound:         http.StatusNotFound,
	ErrCommentNotFound:      http.StatusNotFound,
	ErrTagNotFound:          http.StatusNotFound,
	ErrTagExists:            http.StatusConflict,
	ErrAnnouncementNotFound: http.StatusNotFound,
	ErrPostLimitReached:     http.StatusForbidden,
	ErrDuplicateReport:      http.StatusConflict,
	ErrAlreadyGoldMember:    http.StatusConflict,
	ErrPrivatePost:          http.StatusForbidden,
}

// HandleError 统一处理错误响应，同时将错误记入 gin 的错误列表
// 供监控中间件统计
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)

	if appErr, ok := err.(*AppError); ok {
		status := errorStatusMap[appErr.Code]
		if status == 0 {
			status = http.StatusInternalServerError
		}

		resp := ErrorResponse{
			Success: false,
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}

		if appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}

		c.JSON(status, resp)
		return
	}

	// 处理非 AppError 类型的错误
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Code:    ErrInternal,
		Message: "Internal Server Error",
		Error:   err.Error(),
	})
}

// HandleSuccess 统一处理成功响应
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	resp := SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCreated 统一处理资源创建成功响应
func HandleCreated(c *gin.Context, data interface{}, message string) {
	resp := SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	c.JSON(http.StatusCreated, resp)
}

// HandleSuccessWithPagination 返回带分页信息的成功响应
func HandleSuccessWithPagination(c *gin.Context, data interface{}, pagination *Pagination, message string) {
	resp := SuccessResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	}
	c.JSON(http.StatusOK, resp)
}
