package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradcheck/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// Content-Length 已知且超限时直接拒绝；否则由 MaxBytesReader 在读取时截断，
// handler 通过 c.Error 上报的 *http.MaxBytesError 会被统一转换为 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, ginErr := range c.Errors {
			if IsBodyTooLarge(ginErr.Err) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}

// IsBodyTooLarge 判断错误是否由请求体超限引起
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
