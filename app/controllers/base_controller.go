package controllers

import (
	"net/http"
	"strings"

	apperrors "github.com/aihub/rag-go/internal/errors"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/aihub/rag-go/internal/metrics"
	"github.com/beego/beego/v2/server/web"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// BaseController provides helpers for consistent JSON responses.
type BaseController struct {
	web.Controller
}

// JSON writes a JSON response with the supplied HTTP status code.
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess writes a standard success envelope.
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// JSONError writes an error envelope with message.
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// JSONAppError maps a service error to its HTTP status and error code.
// Unknown errors are wrapped as internal errors and logged with their cause.
func (c *BaseController) JSONAppError(operation string, err error) {
	appErr := apperrors.GetAppError(err)
	metrics.RequestErrors.WithLabelValues(operation, string(appErr.Code)).Inc()

	if appErr.Code == apperrors.ErrCodeInternalServer {
		logger.Error("Unhandled error", zap.String("operation", operation), zap.Error(err))
	}

	c.JSON(appErr.HTTPCode, map[string]interface{}{
		"success": false,
		"code":    appErr.Code,
		"error":   appErr.Message,
		"details": appErr.Details,
	})
}

// validateRequest runs struct validation and reports the first failure.
func (c *BaseController) validateRequest(req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var messages []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				messages = append(messages, strings.ToLower(fe.Field())+" failed "+fe.Tag()+" validation")
			}
		} else {
			messages = append(messages, err.Error())
		}
		c.JSONError(http.StatusBadRequest, strings.Join(messages, "; "))
		return false
	}
	return true
}

// getClientIP 获取客户端真实IP地址
func (c *BaseController) getClientIP() string {
	xForwardedFor := c.Ctx.Input.Header("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}
	xRealIP := c.Ctx.Input.Header("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}
	return c.Ctx.Input.IP()
}
