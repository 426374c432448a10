package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"restaurant-orders-api/models"
	"restaurant-orders-api/statemachine"
	"restaurant-orders-api/validation"
)

// ReservationStore owns table bookings.
type ReservationStore struct {
	DB            *gorm.DB
	OpenHourSlots []string
	MaxPartySize  int
}

type ReservationInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ReservationDate string // YYYY-MM-DD
	ReservationTime string // HH:MM
	PartySize       int
	SpecialRequests string
}

// Create validates the form server-side and persists a pending reservation
// with a unique RES code.
func (s *ReservationStore) Create(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	fe := validation.Reservation(
		in.CustomerName, in.CustomerEmail, in.CustomerPhone,
		in.ReservationDate, in.ReservationTime, in.PartySize,
		s.OpenHourSlots, s.MaxPartySize, time.Now(),
	)
	if len(fe) > 0 {
		return nil, &models.ValidationError{Fields: fe}
	}

	res := models.Reservation{
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		ReservationDate: in.ReservationDate,
		ReservationTime: in.ReservationTime,
		PartySize:       in.PartySize,
		SpecialRequests: in.SpecialRequests,
		Status:          models.ReservationPending,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; ; attempt++ {
			res.Code = newCode(reservationCodePrefix, time.Now())
			if err := tx.Create(&res).Error; err == nil {
				break
			} else if attempt >= 5 {
				return err
			}
			res.ID = 0
		}
		return tx.Create(&models.ReservationStatusHistory{
			ReservationID: res.ID,
			ToStatus:      models.ReservationPending,
			ChangedBy:     "customer",
			Note:          "reservation submitted",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByCode is an exact-match lookup.
func (s *ReservationStore) GetByCode(ctx context.Context, code string) (*models.Reservation, error) {
	var res models.Reservation
	err := s.DB.WithContext(ctx).Preload("StatusHistory").Where("code = ?", code).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByEmail returns every reservation for that email, newest first.
func (s *ReservationStore) FindByEmail(ctx context.Context, email string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := s.DB.WithContext(ctx).
		Where("customer_email = ?", email).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

type ReservationFilter struct {
	Status      string
	Search      string // code exact or email substring
	Date        string
	Page, Limit int
}

type ReservationPage struct {
	Reservations []models.Reservation `json:"reservations"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
}

// List is the admin console view, newest first.
func (s *ReservationStore) List(ctx context.Context, f ReservationFilter) (*ReservationPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	q := s.DB.WithContext(ctx).Model(&models.Reservation{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where("code = ? OR customer_email LIKE ?", f.Search, "%"+f.Search+"%")
	}
	if f.Date != "" {
		q = q.Where("reservation_date = ?", f.Date)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var out []models.Reservation
	if err := q.Order("created_at desc, id desc").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return &ReservationPage{Reservations: out, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Transition moves a reservation one lifecycle step with the same optimistic
// check as orders; the change is committed before this returns, so any
// subsequent lookup sees it.
func (s *ReservationStore) Transition(ctx context.Context, code string, to models.ReservationStatus, actor, note string) (*models.Reservation, error) {
	res, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	from := res.Status
	if err := statemachine.CanTransitionReservation(from, to); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upd := tx.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", res.ID, from).
			Update("status", to)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return models.ErrStaleState
		}
		return tx.Create(&models.ReservationStatusHistory{
			ReservationID: res.ID,
			FromStatus:    from,
			ToStatus:      to,
			ChangedBy:     actor,
			Note:          note,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	res.Status = to
	return res, nil
}
