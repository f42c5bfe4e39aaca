package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码，按组件划分
const (
	// 文档处理错误
	ErrCodeDocumentEmpty       ErrorCode = "DOCUMENT_EMPTY"
	ErrCodeDocumentCorrupted   ErrorCode = "DOCUMENT_CORRUPTED"
	ErrCodeDocumentUnsupported ErrorCode = "DOCUMENT_UNSUPPORTED"

	// 分块配置错误
	ErrCodeChunkingConfig ErrorCode = "CHUNKING_CONFIG"

	// 向量化错误
	ErrCodeEmbeddingFailed ErrorCode = "EMBEDDING_FAILED"

	// 向量存储错误
	ErrCodeVectorConnection ErrorCode = "VECTOR_CONNECTION"
	ErrCodeVectorQuery      ErrorCode = "VECTOR_QUERY"

	// 大模型调用错误
	ErrCodeLLMConnection ErrorCode = "LLM_CONNECTION"
	ErrCodeLLMRateLimit  ErrorCode = "LLM_RATE_LIMIT"
	ErrCodeLLMAuth       ErrorCode = "LLM_AUTH"

	// 输入校验错误
	ErrCodeEmptyQuery   ErrorCode = "EMPTY_QUERY"
	ErrCodeQueryTooLong ErrorCode = "QUERY_TOO_LONG"

	// 通用错误
	ErrCodeInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

// ErrorType 错误类型
type ErrorType int

const (
	ErrorTypeSystem ErrorType = iota
	ErrorTypeBusiness
	ErrorTypeValidation
	ErrorTypeExternal
)

// AppError 应用错误结构体
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Type     ErrorType   `json:"type"`
	HTTPCode int         `json:"-"`
	Details  interface{} `json:"details,omitempty"`
	Cause    error       `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加错误详情
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// 错误构造函数

// NewDocumentError 创建文档处理错误
func NewDocumentError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Type:     ErrorTypeBusiness,
		HTTPCode: getHTTPCodeForError(code),
	}
}

// NewChunkingConfigError 创建分块配置错误
func NewChunkingConfigError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeChunkingConfig,
		Message:  message,
		Type:     ErrorTypeSystem,
		HTTPCode: http.StatusInternalServerError,
	}
}

// NewEmbeddingError 创建向量化错误
func NewEmbeddingError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeEmbeddingFailed,
		Message:  message,
		Type:     ErrorTypeExternal,
		HTTPCode: http.StatusBadGateway,
	}
}

// NewVectorStoreError 创建向量存储错误
func NewVectorStoreError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Type:     ErrorTypeExternal,
		HTTPCode: http.StatusServiceUnavailable,
	}
}

// NewLLMError 创建大模型调用错误
func NewLLMError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Type:     ErrorTypeExternal,
		HTTPCode: getHTTPCodeForError(code),
	}
}

// NewValidationError 创建输入校验错误
func NewValidationError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewSystemError 创建系统错误
func NewSystemError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeInternalServer,
		Message:  message,
		Type:     ErrorTypeSystem,
		HTTPCode: http.StatusInternalServerError,
	}
}

// getHTTPCodeForError 根据错误码获取HTTP状态码
func getHTTPCodeForError(code ErrorCode) int {
	switch code {
	case ErrCodeDocumentEmpty, ErrCodeDocumentCorrupted, ErrCodeChunkingConfig:
		return http.StatusUnprocessableEntity
	case ErrCodeDocumentUnsupported:
		return http.StatusUnsupportedMediaType
	case ErrCodeEmptyQuery, ErrCodeQueryTooLong:
		return http.StatusBadRequest
	case ErrCodeLLMRateLimit:
		return http.StatusTooManyRequests
	case ErrCodeLLMAuth:
		return http.StatusBadGateway
	case ErrCodeVectorConnection, ErrCodeVectorQuery:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsAppError 检查是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 获取AppError，如果不是则包装为系统错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewSystemError("Internal server error").WithCause(err)
}

// HasCode 检查错误链上是否存在指定错误码
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
