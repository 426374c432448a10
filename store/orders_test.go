package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"restaurant-orders-api/models"
)

func validCheckout(token string) CheckoutInput {
	return CheckoutInput{
		SessionToken:   token,
		IdempotencyKey: uuid.NewString(),
		CustomerName:   "Maria Quispe",
		CustomerEmail:  "maria@example.com",
		CustomerPhone:  "987-654-3210",
		PickupEstimate: "20m",
	}
}

// fillCart returns a session token holding 2x product A and 1x product B.
func fillCart(t *testing.T, carts *CartStore, a, b models.Product) string {
	t.Helper()
	ctx := context.Background()
	view, err := carts.AddItem(ctx, "", a.ID, 2, models.Customizations{})
	if err != nil {
		t.Fatalf("fill cart: %v", err)
	}
	if _, err := carts.AddItem(ctx, view.SessionToken, b.ID, 1, models.Customizations{}); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
	return view.SessionToken
}

func TestCheckout(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	token := fillCart(t, carts, a, b)
	res, err := orders.Checkout(ctx, validCheckout(token))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	o := res.Order
	if o.SubtotalCents != 3500 || o.TaxCents != 630 || o.TotalCents != 4130 {
		t.Errorf("totals = %d/%d/%d, want 3500/630/4130", o.SubtotalCents, o.TaxCents, o.TotalCents)
	}
	if o.Status != models.OrderPending || o.PaymentStatus != models.PaymentPending {
		t.Errorf("status = %s/%s, want pending/pending", o.Status, o.PaymentStatus)
	}
	wantPrefix := "PED" + time.Now().Format("20060102")
	if !strings.HasPrefix(o.Code, wantPrefix) || len(o.Code) != len(wantPrefix)+4 {
		t.Errorf("code = %q, want %s + 4 digits", o.Code, wantPrefix)
	}
	if len(o.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(o.Lines))
	}
	if res.ReadyMinutes != 25 {
		t.Errorf("ready minutes = %d, want 25", res.ReadyMinutes)
	}
	if res.Existed {
		t.Error("fresh checkout flagged as replay")
	}

	// checkout consumes the cart
	view, err := carts.Snapshot(ctx, token)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("cart still holds %d items after checkout", len(view.Items))
	}
}

func TestCheckoutSnapshotsPrices(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	token := fillCart(t, carts, a, b)
	res, err := orders.Checkout(ctx, validCheckout(token))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// a later price change must not rewrite history
	if err := db.Model(&models.Product{}).Where("id = ?", a.ID).Update("price_cents", 9900).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}
	reloaded, err := orders.GetByCode(ctx, res.Order.Code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, line := range reloaded.Lines {
		if line.ProductID == a.ID && line.UnitPriceCents != 1000 {
			t.Errorf("snapshot unit price = %d, want 1000", line.UnitPriceCents)
		}
	}
	if reloaded.TotalCents != 4130 {
		t.Errorf("total after reprice = %d, want 4130", reloaded.TotalCents)
	}
}

func TestCheckoutPricesFromCurrentProductRows(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	token := fillCart(t, carts, a, b)
	// price changes between add-to-cart and checkout; checkout wins
	if err := db.Model(&models.Product{}).Where("id = ?", a.ID).Update("price_cents", 2000).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}
	res, err := orders.Checkout(ctx, validCheckout(token))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	// 2*2000 + 1*1500 = 5500, tax 990
	if res.Order.SubtotalCents != 5500 || res.Order.TaxCents != 990 {
		t.Errorf("totals = %d/%d, want 5500/990", res.Order.SubtotalCents, res.Order.TaxCents)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	orders := newOrderStore(db)
	ctx := context.Background()

	in := validCheckout("no-such-session")
	if _, err := orders.Checkout(ctx, in); !errors.Is(err, models.ErrEmptyCart) {
		t.Fatalf("got %v, want ErrEmptyCart", err)
	}
}

func TestCheckoutValidation(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	token := fillCart(t, carts, a, b)
	in := validCheckout(token)
	in.CustomerEmail = "not-an-email"
	in.CustomerPhone = ""

	_, err := orders.Checkout(ctx, in)
	ve, ok := models.AsValidation(err)
	if !ok {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if _, found := ve.Fields["customer_email"]; !found {
		t.Error("missing customer_email field error")
	}
	if _, found := ve.Fields["customer_phone"]; !found {
		t.Error("missing customer_phone field error")
	}

	// the cart is untouched by a rejected checkout
	view, err := carts.Snapshot(ctx, token)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(view.Items) != 2 {
		t.Errorf("cart items = %d after rejected checkout, want 2", len(view.Items))
	}
}

func TestCheckoutRequiresIdempotencyKey(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)

	in := validCheckout(fillCart(t, carts, a, b))
	in.IdempotencyKey = "  "
	_, err := orders.Checkout(context.Background(), in)
	if ve, ok := models.AsValidation(err); !ok || ve.Fields["idempotency_key"] == "" {
		t.Fatalf("got %v, want idempotency_key validation error", err)
	}
}

func TestCheckoutIdempotentReplay(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	in := validCheckout(fillCart(t, carts, a, b))
	first, err := orders.Checkout(ctx, in)
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	second, err := orders.Checkout(ctx, in)
	if err != nil {
		t.Fatalf("replay checkout: %v", err)
	}

	if !second.Existed {
		t.Error("replay not flagged")
	}
	if second.Order.Code != first.Order.Code {
		t.Errorf("replay code = %q, want %q", second.Order.Code, first.Order.Code)
	}
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("orders = %d, want exactly 1", count)
	}
}

func TestGetByCodeUnknown(t *testing.T) {
	db := newTestDB(t)
	orders := newOrderStore(db)
	if _, err := orders.GetByCode(context.Background(), "PED200001019999"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestOrderTransitionLifecycle(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	res, err := orders.Checkout(ctx, validCheckout(fillCart(t, carts, a, b)))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	code := res.Order.Code

	if _, err := orders.Transition(ctx, code, models.OrderConfirmed, "admin@local", "kitchen accepted"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// the step is visible to an immediate read
	o, err := orders.GetByCode(ctx, code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Status != models.OrderConfirmed {
		t.Fatalf("status = %s, want confirmed", o.Status)
	}

	if _, err := orders.Transition(ctx, code, models.OrderCompleted, "admin@local", ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// terminal states reject further steps
	if _, err := orders.Transition(ctx, code, models.OrderPending, "admin@local", ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("completed->pending: got %v, want ErrInvalidTransition", err)
	}

	// placed + confirmed + completed
	o, _ = orders.GetByCode(ctx, code)
	if len(o.StatusHistory) != 3 {
		t.Errorf("history rows = %d, want 3", len(o.StatusHistory))
	}
}

func TestOrderTransitionSkippingStep(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	res, err := orders.Checkout(ctx, validCheckout(fillCart(t, carts, a, b)))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := orders.Transition(ctx, res.Order.Code, models.OrderCompleted, "admin@local", ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("pending->completed: got %v, want ErrInvalidTransition", err)
	}
}

func TestOrderTransitionStaleState(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	res, err := orders.Checkout(ctx, validCheckout(fillCart(t, carts, a, b)))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	order, err := orders.GetByCode(ctx, res.Order.Code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// another admin moves the order after we observed pending
	if _, err := orders.Transition(ctx, order.Code, models.OrderConfirmed, "other@local", ""); err != nil {
		t.Fatalf("racing transition: %v", err)
	}

	err = orders.applyTransition(ctx, order, models.OrderPending, models.OrderCancelled, "admin@local", "customer called")
	if !errors.Is(err, models.ErrStaleState) {
		t.Fatalf("got %v, want ErrStaleState", err)
	}
	// the losing write left no trace
	o, _ := orders.GetByCode(ctx, order.Code)
	if o.Status != models.OrderConfirmed {
		t.Errorf("status = %s, want confirmed", o.Status)
	}
}

func TestForceStatusOverride(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	res, err := orders.Checkout(ctx, validCheckout(fillCart(t, carts, a, b)))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	code := res.Order.Code
	if _, err := orders.Transition(ctx, code, models.OrderCancelled, "admin@local", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// cancelled is terminal for the normal path but not for an override
	o, err := orders.ForceStatus(ctx, code, models.OrderConfirmed, "admin@local", "cancelled by mistake")
	if err != nil {
		t.Fatalf("force: %v", err)
	}
	if o.Status != models.OrderConfirmed {
		t.Fatalf("status = %s, want confirmed", o.Status)
	}
	reloaded, _ := orders.GetByCode(ctx, code)
	last := reloaded.StatusHistory[len(reloaded.StatusHistory)-1]
	if !strings.HasPrefix(last.Note, "[ADMIN OVERRIDE]") {
		t.Errorf("override note = %q, want [ADMIN OVERRIDE] prefix", last.Note)
	}
}

func TestSetPaymentStatus(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	res, err := orders.Checkout(ctx, validCheckout(fillCart(t, carts, a, b)))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := orders.SetPaymentStatus(ctx, res.Order.Code, models.PaymentCompleted); err != nil {
		t.Fatalf("set payment: %v", err)
	}
	o, _ := orders.GetByCode(ctx, res.Order.Code)
	if o.PaymentStatus != models.PaymentCompleted {
		t.Fatalf("payment_status = %s, want completed", o.PaymentStatus)
	}
	if o.Status != models.OrderPending {
		t.Fatalf("lifecycle status changed to %s by payment update", o.Status)
	}
}

func TestOrderList(t *testing.T) {
	db := newTestDB(t)
	a, b := seedCatalog(t, db)
	carts := newCartStore(db)
	orders := newOrderStore(db)
	ctx := context.Background()

	mk := func(email string) *models.Order {
		in := validCheckout(fillCart(t, carts, a, b))
		in.CustomerEmail = email
		res, err := orders.Checkout(ctx, in)
		if err != nil {
			t.Fatalf("checkout %s: %v", email, err)
		}
		return res.Order
	}
	first := mk("ana@example.com")
	second := mk("ana@example.com")
	third := mk("jose@example.com")
	if _, err := orders.Transition(ctx, third.Code, models.OrderConfirmed, "admin@local", ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// newest first; a transition is visible immediately
	page, err := orders.List(ctx, OrderFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || len(page.Orders) != 3 {
		t.Fatalf("total = %d, rows = %d, want 3/3", page.Total, len(page.Orders))
	}
	if page.Orders[0].Code != third.Code {
		t.Errorf("first row = %s, want newest %s", page.Orders[0].Code, third.Code)
	}
	if page.Orders[0].Status != models.OrderConfirmed {
		t.Errorf("newest status = %s, want confirmed", page.Orders[0].Status)
	}
	if page.Summary["pending"] != 2 || page.Summary["confirmed"] != 1 {
		t.Errorf("summary = %v, want pending:2 confirmed:1", page.Summary)
	}

	byStatus, err := orders.List(ctx, OrderFilter{Status: "confirmed"})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if byStatus.Total != 1 || byStatus.Orders[0].Code != third.Code {
		t.Errorf("status filter returned %d rows", byStatus.Total)
	}

	byEmail, err := orders.List(ctx, OrderFilter{Search: "ana@"})
	if err != nil {
		t.Fatalf("list by email: %v", err)
	}
	if byEmail.Total != 2 {
		t.Errorf("email search total = %d, want 2", byEmail.Total)
	}

	byCode, err := orders.List(ctx, OrderFilter{Search: first.Code})
	if err != nil {
		t.Fatalf("list by code: %v", err)
	}
	if byCode.Total != 1 || byCode.Orders[0].Code != first.Code {
		t.Errorf("code search total = %d, want 1", byCode.Total)
	}
	_ = second

	paged, err := orders.List(ctx, OrderFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if paged.Total != 3 || len(paged.Orders) != 1 {
		t.Errorf("page 2 of 2: total = %d, rows = %d, want 3/1", paged.Total, len(paged.Orders))
	}
	// summary is a dashboard aggregate and must not shrink with the page
	if paged.Summary["pending"] != 2 || paged.Summary["confirmed"] != 1 {
		t.Errorf("paged summary = %v, want pending:2 confirmed:1", paged.Summary)
	}
}
