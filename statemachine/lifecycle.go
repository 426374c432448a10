// Package statemachine defines the order and reservation lifecycles. Both
// entities share the same shape: pending -> confirmed -> completed, with
// cancelled reachable from the two non-terminal states. Completed and
// cancelled are terminal; nothing moves backwards except an explicit admin
// override, which bypasses this package and is recorded as such.
package statemachine

import (
	"fmt"
	"strings"

	"restaurant-orders-api/models"
)

// validNext is the authoritative transition table.
var validNext = map[string]map[string]bool{
	string(models.OrderPending):   {string(models.OrderConfirmed): true, string(models.OrderCancelled): true},
	string(models.OrderConfirmed): {string(models.OrderCompleted): true, string(models.OrderCancelled): true},
	string(models.OrderCompleted): {},
	string(models.OrderCancelled): {},
}

func canTransition(from, to string) error {
	next, known := validNext[from]
	if !known {
		return fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, from)
	}
	if !next[to] {
		return fmt.Errorf("%w: %s -> %s (valid next: %s)", models.ErrInvalidTransition, from, to, describeNext(from))
	}
	return nil
}

func describeNext(from string) string {
	next := validNext[from]
	if len(next) == 0 {
		return "none, terminal state"
	}
	out := make([]string, 0, len(next))
	// deterministic order for error messages
	for _, s := range []string{string(models.OrderConfirmed), string(models.OrderCompleted), string(models.OrderCancelled)} {
		if next[s] {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

// CanTransitionOrder reports whether an order may move from -> to.
func CanTransitionOrder(from, to models.OrderStatus) error {
	return canTransition(string(from), string(to))
}

// CanTransitionReservation reports whether a reservation may move from -> to.
func CanTransitionReservation(from, to models.ReservationStatus) error {
	return canTransition(string(from), string(to))
}

// IsTerminalOrder reports whether no further transition exists.
func IsTerminalOrder(s models.OrderStatus) bool {
	return len(validNext[string(s)]) == 0
}

func IsTerminalReservation(s models.ReservationStatus) bool {
	return len(validNext[string(s)]) == 0
}

// ValidNextOrder lists the states reachable from s, for error payloads.
func ValidNextOrder(s models.OrderStatus) []models.OrderStatus {
	var out []models.OrderStatus
	for _, n := range []models.OrderStatus{models.OrderConfirmed, models.OrderCompleted, models.OrderCancelled} {
		if validNext[string(s)][string(n)] {
			out = append(out, n)
		}
	}
	return out
}
