package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CodeSuccess 成功响应码，与前端约定 code === 200 表示成功
const CodeSuccess = 200

const (
	messageSuccess = "success"
	codeInternal   = 50000
)

// Response 统一响应信封 {code, message, count, data}
// count 仅列表响应携带；details 仅错误响应携带
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Count   *int64      `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

func write(c *gin.Context, httpStatus int, resp Response) {
	c.JSON(httpStatus, resp)
}

// OK 200
func OK(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Response{Code: CodeSuccess, Message: messageSuccess, Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, Response{Code: CodeSuccess, Message: messageSuccess, Data: data})
}

// OKList 200 列表响应，count 为总数（分页时为过滤后的总条数，而非本页条数）
func OKList(c *gin.Context, list interface{}, count int64) {
	write(c, http.StatusOK, Response{Code: CodeSuccess, Message: messageSuccess, Count: &count, Data: list})
}

// Error 业务错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	write(c, httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 带详情的错误响应（如导入解析失败的原因、上游 ICS 错误）
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	write(c, httpStatus, Response{Code: code, Message: message, Details: details})
}

func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409，用于乐观锁冲突
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500，不向客户端暴露内部错误
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, codeInternal, "服务器内部错误")
}
