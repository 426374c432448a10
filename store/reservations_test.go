package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant-orders-api/models"
)

func validReservation() ReservationInput {
	return ReservationInput{
		CustomerName:    "Carlos Mendoza",
		CustomerEmail:   "carlos@example.com",
		CustomerPhone:   "999-888-7777",
		ReservationDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		ReservationTime: "20:00",
		PartySize:       4,
		SpecialRequests: "mesa junto a la ventana",
	}
}

func TestReservationCreate(t *testing.T) {
	db := newTestDB(t)
	store := newReservationStore(db)
	ctx := context.Background()

	res, err := store.Create(ctx, validReservation())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantPrefix := "RES" + time.Now().Format("20060102")
	if !strings.HasPrefix(res.Code, wantPrefix) || len(res.Code) != len(wantPrefix)+4 {
		t.Errorf("code = %q, want %s + 4 digits", res.Code, wantPrefix)
	}
	if res.Status != models.ReservationPending {
		t.Errorf("status = %s, want pending", res.Status)
	}

	reloaded, err := store.GetByCode(ctx, res.Code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(reloaded.StatusHistory) != 1 {
		t.Errorf("history rows = %d, want 1", len(reloaded.StatusHistory))
	}
}

func TestReservationCreateRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	store := newReservationStore(db)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*ReservationInput)
		field  string
	}{
		{"past date", func(in *ReservationInput) {
			in.ReservationDate = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		}, "reservation_date"},
		{"off-hours slot", func(in *ReservationInput) { in.ReservationTime = "15:00" }, "reservation_time"},
		{"party too large", func(in *ReservationInput) { in.PartySize = 13 }, "party_size"},
		{"party zero", func(in *ReservationInput) { in.PartySize = 0 }, "party_size"},
		{"bad email", func(in *ReservationInput) { in.CustomerEmail = "nope" }, "customer_email"},
		{"missing name", func(in *ReservationInput) { in.CustomerName = "" }, "customer_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validReservation()
			tt.mutate(&in)
			_, err := store.Create(ctx, in)
			ve, ok := models.AsValidation(err)
			if !ok {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if ve.Fields[tt.field] == "" {
				t.Fatalf("fields = %v, want error on %q", ve.Fields, tt.field)
			}
		})
	}

	var count int64
	if err := db.Model(&models.Reservation{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected input persisted %d reservations", count)
	}
}

func TestReservationGetByCodeUnknown(t *testing.T) {
	db := newTestDB(t)
	store := newReservationStore(db)
	if _, err := store.GetByCode(context.Background(), "RES200001019999"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestReservationFindByEmail(t *testing.T) {
	db := newTestDB(t)
	store := newReservationStore(db)
	ctx := context.Background()

	first, err := store.Create(ctx, validReservation())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := store.Create(ctx, validReservation())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other := validReservation()
	other.CustomerEmail = "someone.else@example.com"
	if _, err := store.Create(ctx, other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	out, err := store.FindByEmail(ctx, "carlos@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("found %d reservations, want 2", len(out))
	}
	if out[0].Code != second.Code || out[1].Code != first.Code {
		t.Errorf("order = %s,%s, want newest first %s,%s", out[0].Code, out[1].Code, second.Code, first.Code)
	}
}

func TestReservationTransition(t *testing.T) {
	db := newTestDB(t)
	store := newReservationStore(db)
	ctx := context.Background()

	res, err := store.Create(ctx, validReservation())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Transition(ctx, res.Code, models.ReservationConfirmed, "admin@local", "table assigned"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// committed before return, so a fresh lookup already sees it
	reloaded, err := store.GetByCode(ctx, res.Code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Status != models.ReservationConfirmed {
		t.Fatalf("status = %s, want confirmed", reloaded.Status)
	}
	if len(reloaded.StatusHistory) != 2 {
		t.Errorf("history rows = %d, want 2", len(reloaded.StatusHistory))
	}

	if _, err := store.Transition(ctx, res.Code, models.ReservationPending, "admin@local", ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("confirmed->pending: got %v, want ErrInvalidTransition", err)
	}
	if _, err := store.Transition(ctx, res.Code, models.ReservationCompleted, "admin@local", ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := store.Transition(ctx, res.Code, models.ReservationCancelled, "admin@local", ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("completed->cancelled: got %v, want ErrInvalidTransition", err)
	}
}

func TestReservationList(t *testing.T) {
	db := newTestDB(t)
	store := newReservationStore(db)
	ctx := context.Background()

	a, err := store.Create(ctx, validReservation())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other := validReservation()
	other.CustomerEmail = "lucia@example.com"
	other.ReservationDate = time.Now().AddDate(0, 0, 2).Format("2006-01-02")
	b, err := store.Create(ctx, other)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Transition(ctx, b.Code, models.ReservationConfirmed, "admin@local", ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	page, err := store.List(ctx, ReservationFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 || page.Reservations[0].Code != b.Code {
		t.Errorf("total = %d, first = %s, want 2 newest-first", page.Total, page.Reservations[0].Code)
	}

	confirmed, err := store.List(ctx, ReservationFilter{Status: "confirmed"})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if confirmed.Total != 1 || confirmed.Reservations[0].Code != b.Code {
		t.Errorf("status filter total = %d", confirmed.Total)
	}

	byDate, err := store.List(ctx, ReservationFilter{Date: a.ReservationDate})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if byDate.Total != 1 || byDate.Reservations[0].Code != a.Code {
		t.Errorf("date filter total = %d", byDate.Total)
	}

	byCode, err := store.List(ctx, ReservationFilter{Search: a.Code})
	if err != nil {
		t.Fatalf("list by code: %v", err)
	}
	if byCode.Total != 1 || byCode.Reservations[0].Code != a.Code {
		t.Errorf("code search total = %d", byCode.Total)
	}
}
