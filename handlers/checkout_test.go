package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"restaurant-orders-api/models"
	"restaurant-orders-api/store"
)

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Category{}, &models.Subcategory{}, &models.Product{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderLine{}, &models.OrderStatusHistory{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cat := models.Category{Name: "Platos de Fondo"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&models.Product{
		Name: "Lomo Saltado", PriceCents: 1000, CategoryID: cat.ID, IsAvailable: true,
	}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	carts := &store.CartStore{DB: db, TaxRateBP: 1800, MaxQty: 20, TTL: time.Hour}
	orders := &store.OrderStore{DB: db, Cache: &store.Cache{}, TaxRateBP: 1800}
	cartH := &CartHandler{Carts: carts, Log: log}
	checkoutH := &CheckoutHandler{Orders: orders, Log: log}

	r := gin.New()
	r.GET("/api/cart", cartH.Get)
	r.POST("/api/cart/items", cartH.AddItem)
	r.POST("/api/checkout", checkoutH.Submit)
	return &testAPI{router: r, db: db}
}

func (a *testAPI) do(t *testing.T, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Cart-Session", session)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestCartCheckoutFlow(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/cart/items", "", gin.H{"product_id": 1, "quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("add item: %d %s", w.Code, w.Body.String())
	}
	session := w.Header().Get("X-Cart-Session")
	if session == "" {
		t.Fatal("no session token issued")
	}

	checkout := gin.H{
		"idempotency_key": "ik-flow-1",
		"customer_name":   "Maria Quispe",
		"customer_email":  "maria@example.com",
		"customer_phone":  "987-654-3210",
		"pickup_estimate": "20m",
	}
	w = api.do(t, http.MethodPost, "/api/checkout", session, checkout)
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["total_cents"].(float64) != 2360 { // 2000 + 18% tax
		t.Errorf("total_cents = %v, want 2360", body["total_cents"])
	}
	if body["status"].(string) != "pending" {
		t.Errorf("status = %v, want pending", body["status"])
	}
	code := body["order_code"].(string)

	// the same key replays the original order with 200 instead of 201
	w = api.do(t, http.MethodPost, "/api/checkout", session, checkout)
	if w.Code != http.StatusOK {
		t.Fatalf("replay: %d %s", w.Code, w.Body.String())
	}
	replay := decode(t, w)
	if replay["order_code"].(string) != code {
		t.Errorf("replay code = %v, want %v", replay["order_code"], code)
	}
	if replay["idempotent_replay"].(bool) != true {
		t.Error("replay not flagged")
	}

	// cart was consumed by the first submit
	w = api.do(t, http.MethodGet, "/api/cart", session, nil)
	cart := decode(t, w)
	if items, ok := cart["items"].([]interface{}); ok && len(items) != 0 {
		t.Errorf("cart items after checkout = %d, want 0", len(items))
	}
}

func TestCheckoutRejectsBadContact(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/cart/items", "", gin.H{"product_id": 1, "quantity": 1})
	session := w.Header().Get("X-Cart-Session")

	w = api.do(t, http.MethodPost, "/api/checkout", session, gin.H{
		"idempotency_key": "ik-bad-1",
		"customer_name":   "Maria Quispe",
		"customer_email":  "not-an-email",
		"customer_phone":  "987-654-3210",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	fields, ok := body["errors"].(map[string]interface{})
	if !ok || fields["customer_email"] == nil {
		t.Fatalf("errors = %v, want customer_email field error", body["errors"])
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodPost, "/api/checkout", "unknown-session", gin.H{
		"idempotency_key": "ik-empty-1",
		"customer_name":   "Maria Quispe",
		"customer_email":  "maria@example.com",
		"customer_phone":  "987-654-3210",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
}

func TestAddItemValidation(t *testing.T) {
	api := newTestAPI(t)

	// binding rejects a missing quantity before the store is reached
	w := api.do(t, http.MethodPost, "/api/cart/items", "", gin.H{"product_id": 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing quantity: %d, want 400", w.Code)
	}

	w = api.do(t, http.MethodPost, "/api/cart/items", "", gin.H{"product_id": 1, "quantity": 21})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("over-limit quantity: %d, want 422", w.Code)
	}

	w = api.do(t, http.MethodPost, "/api/cart/items", "", gin.H{"product_id": 999, "quantity": 1})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown product: %d, want 404", w.Code)
	}
}
