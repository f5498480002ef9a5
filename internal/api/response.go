package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/rpg-game/internal/errors"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse 成功响应
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respondError 统一错误出口
// 带错误码的应用错误按码映射HTTP状态，其余按500处理
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), apperrors.NewErrorResponse(appErr, c.GetHeader("X-Request-ID")))
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: err.Error(),
	})
}

// respondBindError 请求参数绑定失败
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    "INVALID_REQUEST",
		Message: "请求参数错误",
		Details: err.Error(),
	})
}
