package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"restaurant-orders-api/models"
	"restaurant-orders-api/pricing"
	"restaurant-orders-api/statemachine"
	"restaurant-orders-api/validation"
)

// OrderStore owns checkout and the order lifecycle.
type OrderStore struct {
	DB        *gorm.DB
	Cache     *Cache
	TaxRateBP int64
}

// CheckoutInput is everything a checkout submission carries. IdempotencyKey
// is client-supplied; retrying with the same key never creates a second
// order.
type CheckoutInput struct {
	SessionToken   string
	IdempotencyKey string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	PickupEstimate string
	Instructions   string
}

// CheckoutResult is what the storefront shows on the confirmation screen.
type CheckoutResult struct {
	Order        *models.Order `json:"order"`
	ReadyMinutes int           `json:"estimated_ready_minutes"`
	Existed      bool          `json:"idempotent_replay"`
}

// Checkout turns the session cart into an order in one transaction:
// validate contact, re-price authoritatively from current product rows,
// snapshot the lines, assign a unique code, clear the cart. The cart-time
// totals are advisory only; what is persisted here is the source of truth.
func (s *OrderStore) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if fe := validation.Checkout(in.CustomerName, in.CustomerEmail, in.CustomerPhone); len(fe) > 0 {
		return nil, &models.ValidationError{Fields: fe}
	}
	if strings.TrimSpace(in.IdempotencyKey) == "" {
		return nil, &models.ValidationError{Fields: models.FieldErrors{"idempotency_key": validation.CodeRequired}}
	}

	// fast path: a replay we have already seen
	if code, ok := s.Cache.IdemCheckoutGet(ctx, in.IdempotencyKey); ok {
		if order, err := s.GetByCode(ctx, code); err == nil {
			return &CheckoutResult{Order: order, ReadyMinutes: readyMinutes(order.Lines), Existed: true}, nil
		}
	}
	// authoritative replay check
	var existing models.Order
	err := s.DB.WithContext(ctx).Preload("Lines").
		Where("idempotency_key = ?", in.IdempotencyKey).First(&existing).Error
	if err == nil {
		return &CheckoutResult{Order: &existing, ReadyMinutes: readyMinutes(existing.Lines), Existed: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var order models.Order
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("session_token = ?", in.SessionToken).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrEmptyCart
			}
			return err
		}
		if time.Now().After(cart.ExpiresAt) {
			return models.ErrCartExpired
		}

		var items []models.CartItem
		if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).Order("id asc").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return models.ErrEmptyCart
		}

		// re-price from then-current product rows
		lines := make([]models.OrderLine, 0, len(items))
		priced := make([]pricing.Line, 0, len(items))
		for _, it := range items {
			if it.Product == nil {
				return models.ErrNotFound
			}
			unit := it.Product.PriceCents + it.Customizations.DeltaCents()
			lines = append(lines, models.OrderLine{
				ProductID:      it.ProductID,
				ProductName:    it.Product.Name,
				UnitPriceCents: unit,
				Quantity:       it.Quantity,
				LineTotalCents: unit * int64(it.Quantity),
				Customizations: it.Customizations,
			})
			priced = append(priced, pricing.Line{UnitPriceCents: unit, Quantity: it.Quantity})
		}
		totals := pricing.Compute(priced, s.TaxRateBP)

		order = models.Order{
			IdempotencyKey: in.IdempotencyKey,
			CustomerName:   in.CustomerName,
			CustomerEmail:  in.CustomerEmail,
			CustomerPhone:  in.CustomerPhone,
			Lines:          lines,
			SubtotalCents:  totals.SubtotalCents,
			TaxCents:       totals.TaxCents,
			TotalCents:     totals.TotalCents,
			Status:         models.OrderPending,
			PaymentStatus:  models.PaymentPending,
			PickupEstimate: in.PickupEstimate,
			Instructions:   in.Instructions,
		}
		for attempt := 0; ; attempt++ {
			order.Code = newCode(orderCodePrefix, time.Now())
			if err := tx.Create(&order).Error; err == nil {
				break
			} else if attempt >= 5 {
				return err
			}
			order.ID = 0
		}

		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.OrderPending,
			ChangedBy: "customer",
			Note:      "order placed at checkout",
		}).Error; err != nil {
			return err
		}

		// checkout consumes the cart
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
	if err != nil {
		// a concurrent submit with the same key may have won the insert
		var raced models.Order
		if dbErr := s.DB.WithContext(ctx).Preload("Lines").
			Where("idempotency_key = ?", in.IdempotencyKey).First(&raced).Error; dbErr == nil {
			return &CheckoutResult{Order: &raced, ReadyMinutes: readyMinutes(raced.Lines), Existed: true}, nil
		}
		return nil, err
	}

	s.Cache.IdemCheckoutSet(ctx, in.IdempotencyKey, order.Code)
	s.Cache.OrderStatusSet(ctx, order.Code, string(order.Status))
	return &CheckoutResult{Order: &order, ReadyMinutes: readyMinutes(order.Lines)}, nil
}

// readyMinutes estimates readiness from a flat kitchen base plus a small
// per-line overhead.
func readyMinutes(lines []models.OrderLine) int {
	est := 15
	for range lines {
		est += 5
	}
	return est
}

// GetByCode fetches one order with lines and history.
func (s *OrderStore) GetByCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Preload("Lines").Preload("StatusHistory").
		Where("code = ?", code).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderFilter narrows List.
type OrderFilter struct {
	Status        string
	PaymentStatus string
	Search        string // matches code exactly or customer email substring
	From, To      *time.Time
	Page, Limit   int
}

// OrderPage is a filtered page with the dashboard summary counts.
type OrderPage struct {
	Orders  []models.Order `json:"orders"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Summary map[string]int `json:"summary"`
}

// List returns orders newest-first with admin dashboard filters.
func (s *OrderStore) List(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	apply := func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.PaymentStatus != "" {
			q = q.Where("payment_status = ?", f.PaymentStatus)
		}
		if f.Search != "" {
			q = q.Where("code = ? OR customer_email LIKE ?", f.Search, "%"+f.Search+"%")
		}
		if f.From != nil {
			q = q.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("created_at <= ?", *f.To)
		}
		return q
	}

	var total int64
	if err := apply(s.DB.WithContext(ctx).Model(&models.Order{})).Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := apply(s.DB.WithContext(ctx).Model(&models.Order{})).
		Preload("Lines").Order("created_at desc, id desc").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).Find(&orders).Error; err != nil {
		return nil, err
	}

	// summary spans the whole filtered set, not just this page
	var counts []struct {
		Status string
		N      int
	}
	if err := apply(s.DB.WithContext(ctx).Model(&models.Order{})).
		Select("status, COUNT(*) AS n").Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}
	summary := map[string]int{}
	for _, c := range counts {
		summary[c.Status] = c.N
	}
	return &OrderPage{Orders: orders, Total: total, Page: f.Page, Limit: f.Limit, Summary: summary}, nil
}

// Transition applies one lifecycle step. The UPDATE is conditional on the
// status read in this call, so two admins racing on the same order cannot
// silently overwrite each other: the loser gets ErrStaleState.
func (s *OrderStore) Transition(ctx context.Context, code string, to models.OrderStatus, actor, note string) (*models.Order, error) {
	order, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(ctx, order, order.Status, to, actor, note); err != nil {
		return nil, err
	}

	s.Cache.OrderStatusInvalidate(ctx, order.Code)
	s.Cache.OrderStatusSet(ctx, order.Code, string(to))
	order.Status = to
	return order, nil
}

// applyTransition does the optimistic conditional update: it succeeds only
// if the row still holds the status the caller observed.
func (s *OrderStore) applyTransition(ctx context.Context, order *models.Order, from, to models.OrderStatus, actor, note string) error {
	if err := statemachine.CanTransitionOrder(from, to); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrStaleState
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actor,
			Note:       note,
		}).Error
	})
}

// ForceStatus is the explicit administrative override: it skips the
// transition table and records the jump as an override in the history.
func (s *OrderStore) ForceStatus(ctx context.Context, code string, to models.OrderStatus, actor, reason string) (*models.Order, error) {
	order, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	from := order.Status
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", to).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actor,
			Note:       "[ADMIN OVERRIDE] " + reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.Cache.OrderStatusInvalidate(ctx, order.Code)
	order.Status = to
	return order, nil
}

// SetPaymentStatus updates the payment flag independent of the lifecycle.
func (s *OrderStore) SetPaymentStatus(ctx context.Context, code string, ps models.PaymentStatus) (*models.Order, error) {
	order, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).Update("payment_status", ps).Error; err != nil {
		return nil, err
	}
	order.PaymentStatus = ps
	return order, nil
}
