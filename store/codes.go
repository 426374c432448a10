package store

import (
	"fmt"
	"math/rand"
	"time"
)

// Human-shareable code prefixes (PED = pedido, RES = reserva).
const (
	orderCodePrefix       = "PED"
	reservationCodePrefix = "RES"
)

// newCode builds prefix + YYYYMMDD + a 4-digit suffix, e.g. PED202601178316.
// Uniqueness is enforced by the column index; callers retry on collision.
func newCode(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%s%04d", prefix, now.Format("20060102"), 1000+rand.Intn(9000))
}
