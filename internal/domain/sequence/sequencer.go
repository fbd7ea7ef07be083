// Package sequence issues gapless per-company order numbers for stock
// documents. Numbers follow the pattern SO-YYYYMMDD-NNN and restart at 001
// each day, per company.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
)

const prefix = "SO"

// Store hands out monotonically increasing values for a named counter.
// Implementations must be safe under concurrent callers; two calls with the
// same key never return the same value.
type Store interface {
	NextValue(ctx context.Context, key string) (int64, error)
}

// Sequencer formats order numbers backed by a Store.
type Sequencer struct {
	store Store
}

func NewSequencer(store Store) *Sequencer {
	return &Sequencer{store: store}
}

// NextOrderNumber returns the next order number for the company on the given
// day, e.g. "SO-20250817-003".
func (s *Sequencer) NextOrderNumber(ctx context.Context, entrepriseID id.ID, day time.Time) (string, error) {
	key := counterKey(entrepriseID, day)

	val, err := s.store.NextValue(ctx, key)
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("next value for %s: %w", key, err))
	}

	return fmt.Sprintf("%s-%s-%03d", prefix, day.Format("20060102"), val), nil
}

func counterKey(entrepriseID id.ID, day time.Time) string {
	return fmt.Sprintf("%s_%s_%s", prefix, entrepriseID.String(), day.Format("20060102"))
}

// OrderNumber is the parsed form of a formatted order number.
type OrderNumber struct {
	Day time.Time
	Seq int64
}

// ParseOrderNumber splits a formatted order number back into its day and
// sequence parts. It accepts any sequence width of at least one digit.
func ParseOrderNumber(num string) (OrderNumber, error) {
	parts := strings.Split(num, "-")
	if len(parts) != 3 || parts[0] != prefix {
		return OrderNumber{}, fmt.Errorf("malformed order number %q", num)
	}

	day, err := time.Parse("20060102", parts[1])
	if err != nil {
		return OrderNumber{}, fmt.Errorf("malformed order number %q: %w", num, err)
	}

	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 1 {
		return OrderNumber{}, fmt.Errorf("malformed order number %q: bad sequence", num)
	}

	return OrderNumber{Day: day, Seq: seq}, nil
}
