package handler

import (
	"net/http"
	"testing"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/reconcile"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/service"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/testutil"
	"github.com/gin-gonic/gin"
)

// 校验失败发生在任何存储访问之前，这里不需要数据库
func setupValidationRouter() *gin.Engine {
	reconciler := reconcile.NewReconciler(nil, nil, nil, reconcile.Options{})
	svc := service.NewOrderService(nil, nil, reconciler, nil)
	router := testutil.SetupRouter()
	NewOrderHandler(svc).RegisterRoutes(testutil.AuthGroup(router, "/api/v1"))
	return router
}

func TestBatchReconcile_MissingUnitRejectsBatch(t *testing.T) {
	router := setupValidationRouter()

	missingUnit := boltOrder("")
	delete(missingUnit, "unit")
	missingUnit["part_id"] = "p2"

	w := testutil.DoRequest(router, "POST", "/api/v1/orders/purchase/batch", batchBody(boltOrder(""), missingUnit), testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["success"] != false {
		t.Errorf("Expected success=false, got %v", resp["success"])
	}
	details, ok := resp["details"].([]interface{})
	if !ok || len(details) != 1 {
		t.Fatalf("Expected one problem, got %v", resp["details"])
	}
	if int(details[0].(map[string]interface{})["index"].(float64)) != 1 {
		t.Errorf("Expected problem at index 1, got %v", details[0])
	}
}

func TestBatchReconcile_UnknownKind(t *testing.T) {
	router := setupValidationRouter()

	w := testutil.DoRequest(router, "POST", "/api/v1/orders/welding/batch", batchBody(boltOrder("")), testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestBatchReconcile_MalformedBody(t *testing.T) {
	router := setupValidationRouter()

	w := testutil.DoRequest(router, "POST", "/api/v1/orders/purchase/batch", `{"orders": "nope"}`, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	w = testutil.DoRequest(router, "POST", "/api/v1/orders/purchase/batch", `{"orders": []}`, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for empty batch, got %d", w.Code)
	}
}

func TestBatchReconcile_RequiresToken(t *testing.T) {
	router := setupValidationRouter()

	w := testutil.DoRequest(router, "POST", "/api/v1/orders/purchase/batch", batchBody(boltOrder("")), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
}
