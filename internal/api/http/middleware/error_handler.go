package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/rangeregistry/internal/api/types"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
)

// ErrorHandler 把 handler 通过 c.Error 留下的错误统一写成 Problem Details
func ErrorHandler(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		problem, ok := apitypes.IsProblemDetails(err)
		if !ok {
			problem = apitypes.NewProblemDetails(
				apitypes.CodeCommonInternalError,
				apitypes.LayerAPI,
				"服务器内部错误，请稍后重试。",
				fmt.Sprintf("internal error: %v", err),
				http.StatusInternalServerError,
				map[string]interface{}{"path": c.Request.URL.Path},
			)
		}
		if id := GetRequestID(c); id != "" {
			problem.TraceID = id
		}
		if logger != nil && problem.Status >= http.StatusInternalServerError {
			logger.Errorf("HTTP 错误 code=%s trace=%s path=%s: %v", problem.Code, problem.TraceID, c.Request.URL.Path, err)
		}
		problem.WriteJSON(c.Writer)
		c.Abort()
	}
}

// WriteProblemDetails 写入 Problem Details 响应
func WriteProblemDetails(c *gin.Context, problem *apitypes.ProblemDetails) {
	c.Header("Content-Type", "application/problem+json")
	c.JSON(problem.Status, problem)
	c.Abort()
}
