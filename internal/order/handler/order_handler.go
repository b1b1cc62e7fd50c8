package handler

import (
	"errors"
	"net/http"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/middleware"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/reconcile"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/repository"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/service"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/shared/gateway"
	"github.com/gin-gonic/gin"
)

// OrderHandler 采购单/下料单处理器
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes 注册订单路由
func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/orders/:kind/batch", h.BatchReconcile)
	r.GET("/orders/:kind", h.ListOrders)
	r.GET("/orders/:kind/:id", h.GetOrder)
	r.GET("/reconcile-batches", h.ListBatches)
}

// BatchResponse 批量入库响应
type BatchResponse struct {
	Success bool               `json:"success"`
	Data    []entity.Order     `json:"data"`
	Count   int                `json:"count"`
	Stats   reconcile.Stats    `json:"stats"`
	Results []reconcile.Result `json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// BatchError 批量入库失败响应
type BatchError struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Detail  string      `json:"detail,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// BatchReconcile 批量生成/更新订单
// POST /api/v1/orders/:kind/batch  {"orders": [...]}
func (h *OrderHandler) BatchReconcile(c *gin.Context) {
	spec, err := entity.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, BatchError{Error: err.Error()})
		return
	}

	var req service.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, BatchError{Error: "参数错误: " + err.Error()})
		return
	}

	report, err := h.svc.ReconcileBatch(c.Request.Context(), service.BatchInput{
		Spec:      spec,
		Orders:    req.Orders,
		Operator:  middleware.GetOperator(c),
		RequestID: c.GetString("request_id"),
	})
	if err != nil {
		var vErr *reconcile.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, BatchError{Error: vErr.Error(), Details: vErr.Problems})
			return
		}
		c.JSON(http.StatusInternalServerError, BatchError{Error: err.Error(), Detail: gateway.PgDetail(err)})
		return
	}

	resp := BatchResponse{
		Success: report.Stats.Failed == 0,
		Data:    report.Orders,
		Count:   len(report.Orders),
		Stats:   report.Stats,
		Results: report.Results,
	}
	if !resp.Success {
		resp.Error = "部分记录处理失败，详见 results"
	}
	c.JSON(http.StatusOK, resp)
}

// ListOrders 订单列表
// GET /api/v1/orders/:kind?project_name=xxx&status=xxx&tooling_id=xxx&search=xxx
func (h *OrderHandler) ListOrders(c *gin.Context) {
	spec, err := entity.ParseKind(c.Param("kind"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"project_name": c.Query("project_name"),
		"status":       c.Query("status"),
		"tooling_id":   c.Query("tooling_id"),
		"search":       c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), spec, page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取"+spec.Label+"列表失败: "+err.Error())
		return
	}

	Success(c, NewList(items, page, pageSize, total))
}

// GetOrder 订单详情
// GET /api/v1/orders/:kind/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	spec, err := entity.ParseKind(c.Param("kind"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	order, err := h.svc.Get(c.Request.Context(), spec, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, spec.Label+"不存在")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, order)
}

// ListBatches 批量入库记录
// GET /api/v1/reconcile-batches?kind=xxx&status=xxx&operator=xxx
func (h *OrderHandler) ListBatches(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"kind":     c.Query("kind"),
		"status":   c.Query("status"),
		"operator": c.Query("operator"),
	}

	items, total, err := h.svc.ListBatches(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取批次记录失败: "+err.Error())
		return
	}

	Success(c, NewList(items, page, pageSize, total))
}
