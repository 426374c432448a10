package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"restaurant-orders-api/models"
	"restaurant-orders-api/pricing"
	"restaurant-orders-api/validation"
)

// CartStore owns the server-held session carts. Every mutation recomputes
// totals so the caller always sees fresh advisory pricing; the checkout path
// re-prices authoritatively on its own.
type CartStore struct {
	DB        *gorm.DB
	TaxRateBP int64
	MaxQty    int
	TTL       time.Duration
}

// CartView is a cart snapshot plus its computed totals.
type CartView struct {
	SessionToken string            `json:"session_token"`
	Items        []models.CartItem `json:"items"`
	Totals       pricing.Totals    `json:"totals"`
	ExpiresAt    time.Time         `json:"expires_at"`
}

// getOrCreate loads the live cart for token, creating one when the token is
// empty or unknown. An expired cart is wiped and reused in place.
func (s *CartStore) getOrCreate(ctx context.Context, token string) (*models.Cart, error) {
	if token == "" {
		cart := &models.Cart{SessionToken: uuid.NewString(), ExpiresAt: time.Now().Add(s.TTL)}
		if err := s.DB.WithContext(ctx).Create(cart).Error; err != nil {
			return nil, err
		}
		return cart, nil
	}

	var cart models.Cart
	err := s.DB.WithContext(ctx).Where("session_token = ?", token).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{SessionToken: token, ExpiresAt: time.Now().Add(s.TTL)}
		if err := s.DB.WithContext(ctx).Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(cart.ExpiresAt) {
		if err := s.DB.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return nil, err
		}
	}
	// sliding expiry: any access keeps the session alive
	cart.ExpiresAt = time.Now().Add(s.TTL)
	if err := s.DB.WithContext(ctx).Model(&cart).Update("expires_at", cart.ExpiresAt).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem adds qty of a product with the given customizations. Identical
// configurations merge into one line; distinct customizations stay separate
// even for the same product.
func (s *CartStore) AddItem(ctx context.Context, token string, productID uint, qty int, cust models.Customizations) (*CartView, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: %d", models.ErrQuantityOutOfRange, qty)
	}
	if err := validation.Quantity(qty, s.MaxQty); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if !product.IsAvailable {
		return nil, models.ErrNotFound
	}

	cart, err := s.getOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}

	fp := cust.Fingerprint()
	var line models.CartItem
	err = s.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND fingerprint = ?", cart.ID, productID, fp).
		First(&line).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = models.CartItem{
			CartID:         cart.ID,
			ProductID:      productID,
			Fingerprint:    fp,
			Customizations: cust,
			Quantity:       qty,
		}
		if err := s.DB.WithContext(ctx).Create(&line).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		merged := line.Quantity + qty
		if err := validation.Quantity(merged, s.MaxQty); err != nil {
			return nil, err
		}
		if err := s.DB.WithContext(ctx).Model(&line).Update("quantity", merged).Error; err != nil {
			return nil, err
		}
	}
	return s.view(ctx, cart)
}

// UpdateQuantity sets the quantity of one cart line. Zero removes the line
// rather than persisting a zero-quantity row.
func (s *CartStore) UpdateQuantity(ctx context.Context, token string, itemID uint, qty int) (*CartView, error) {
	if err := validation.Quantity(qty, s.MaxQty); err != nil {
		return nil, err
	}
	cart, err := s.getOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}
	var line models.CartItem
	if err := s.DB.WithContext(ctx).Where("cart_id = ? AND id = ?", cart.ID, itemID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if qty == 0 {
		if err := s.DB.WithContext(ctx).Delete(&line).Error; err != nil {
			return nil, err
		}
	} else if err := s.DB.WithContext(ctx).Model(&line).Update("quantity", qty).Error; err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// RemoveItem deletes one cart line.
func (s *CartStore) RemoveItem(ctx context.Context, token string, itemID uint) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Where("cart_id = ? AND id = ?", cart.ID, itemID).Delete(&models.CartItem{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrNotFound
	}
	return s.view(ctx, cart)
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context, token string) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// Snapshot returns the cart and its advisory totals without mutating it.
func (s *CartStore) Snapshot(ctx context.Context, token string) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// SweepExpired deletes carts whose TTL lapsed. Run periodically.
func (s *CartStore) SweepExpired(ctx context.Context) (int64, error) {
	var ids []uint
	if err := s.DB.WithContext(ctx).Model(&models.Cart{}).
		Where("expires_at < ?", time.Now()).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.DB.WithContext(ctx).Where("cart_id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
		return 0, err
	}
	res := s.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}

func (s *CartStore) view(ctx context.Context, cart *models.Cart) (*CartView, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).Preload("Product").
		Where("cart_id = ?", cart.ID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		unit := it.Customizations.DeltaCents()
		if it.Product != nil {
			unit += it.Product.PriceCents
		}
		lines = append(lines, pricing.Line{UnitPriceCents: unit, Quantity: it.Quantity})
	}
	return &CartView{
		SessionToken: cart.SessionToken,
		Items:        items,
		Totals:       pricing.Compute(lines, s.TaxRateBP),
		ExpiresAt:    cart.ExpiresAt,
	}, nil
}
