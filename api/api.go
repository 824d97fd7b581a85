// Package api exposes the tool service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pevans/wechatfed/failure"
	"github.com/pevans/wechatfed/history"
	"github.com/pevans/wechatfed/tools"
	"github.com/sirupsen/logrus"
)

// Runner runs a tool by name. *tools.Service implements it.
type Runner interface {
	Call(ctx context.Context, name string, raw json.RawMessage) (string, error)
}

// APIServer represents the HTTP API server for the tools.
type APIServer struct {
	runner  Runner
	history *history.Store
	log     logrus.FieldLogger
}

// NewAPIServer creates a new API server. store may be nil, in which case
// the history routes answer 404.
func NewAPIServer(runner Runner, store *history.Store, log logrus.FieldLogger) *APIServer {
	return &APIServer{
		runner:  runner,
		history: store,
		log:     log,
	}
}

// SetupRouter configures the Gin router with all API routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/tools", s.HandleListTools)
	api.POST("/tools/:name", s.HandleCallTool)
	api.GET("/history", s.HandleListHistory)
	api.GET("/history/:id", s.HandleGetHistory)

	return router
}

// ListToolsResponse represents the response for GET /api/v1/tools.
type ListToolsResponse struct {
	Tools []tools.Tool `json:"tools"`
}

// CallToolResponse represents the response for POST /api/v1/tools/{name}.
type CallToolResponse struct {
	Result string `json:"result"`
}

// ListHistoryResponse represents the response for GET /api/v1/history.
type ListHistoryResponse struct {
	Calls []history.Call `json:"calls"`
	Total int            `json:"total"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message, suggestion string) gin.H {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if suggestion != "" {
		body["suggestion"] = suggestion
	}
	return gin.H{"error": body}
}

// statusFor maps a failure kind to an HTTP status.
func statusFor(kind failure.Kind) int {
	switch kind {
	case failure.KindValidation:
		return http.StatusBadRequest
	case failure.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// handleError maps tool failures to HTTP responses.
func (s *APIServer) handleError(c *gin.Context, err error) {
	var f *failure.Error
	if !errors.As(err, &f) {
		f = failure.Classify(err)
	}
	c.JSON(statusFor(f.Kind), errorResponse(string(f.Kind), f.Message, f.Suggestion))
}

// HandleListTools handles GET /api/v1/tools.
func (s *APIServer) HandleListTools(c *gin.Context) {
	c.JSON(http.StatusOK, ListToolsResponse{Tools: tools.Tools()})
}

// HandleCallTool handles POST /api/v1/tools/{name}.
func (s *APIServer) HandleCallTool(c *gin.Context) {
	name := c.Param("name")
	if _, ok := tools.Lookup(name); !ok {
		c.JSON(http.StatusNotFound, errorResponse("not_found", "未知工具: "+name, ""))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(string(failure.KindValidation), "无法读取请求内容", ""))
		return
	}

	result, err := s.runner.Call(c.Request.Context(), name, body)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CallToolResponse{Result: result})
}

// HandleListHistory handles GET /api/v1/history.
func (s *APIServer) HandleListHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, errorResponse("not_found", "call history is disabled", ""))
		return
	}

	// Build filter from query parameters
	filter := history.Filter{Limit: 50}

	filter.Tool = c.Query("tool")

	if failedParam := c.Query("failed"); failedParam != "" {
		failed := failedParam == "true"
		filter.Failed = &failed
	}

	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid limit", ""))
			return
		}
		filter.Limit = limit
	}

	if offsetParam := c.Query("offset"); offsetParam != "" {
		offset, err := strconv.Atoi(offsetParam)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid offset", ""))
			return
		}
		filter.Offset = offset
	}

	calls, err := s.history.ListCalls(filter)
	if err != nil {
		s.log.WithError(err).Error("failed to list call history")
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request", ""))
		return
	}

	c.JSON(http.StatusOK, ListHistoryResponse{
		Calls: calls,
		Total: len(calls),
	})
}

// HandleGetHistory handles GET /api/v1/history/{id}.
func (s *APIServer) HandleGetHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, errorResponse("not_found", "call history is disabled", ""))
		return
	}

	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid call ID", ""))
		return
	}

	call, err := s.history.GetCall(callID)
	if err != nil {
		if errors.Is(err, history.ErrCallNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error(), ""))
			return
		}
		s.log.WithError(err).Error("failed to get call")
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request", ""))
		return
	}

	c.JSON(http.StatusOK, call)
}
