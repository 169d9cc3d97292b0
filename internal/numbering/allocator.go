// Package numbering allocates human-readable document numbers per owner and kind.
package numbering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// ErrConflict reports a duplicate document number detected at commit time.
var ErrConflict = errors.New("document_number_conflict")

// Kind identifies which document sequence a number belongs to.
type Kind string

const (
	KindQuote   Kind = "quote"
	KindInvoice Kind = "invoice"
)

func (k Kind) Prefix() string {
	switch k {
	case KindInvoice:
		return "F"
	default:
		return "Q"
	}
}

func (k Kind) table() string {
	switch k {
	case KindInvoice:
		return "invoices"
	default:
		return "quotes"
	}
}

// Allocator serializes number allocation per owner and kind. The read-then-
// increment below is not atomic on its own, so callers must hold the owner's
// lock across the whole allocating transaction; a unique index on
// (owner_id, number) backs the lock up, and a duplicate-key commit surfaces
// as ErrConflict instead of being retried.
type Allocator struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Allocator {
	return &Allocator{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the (owner, kind) sequence and returns the release function.
func (a *Allocator) Acquire(ownerID snowflake.ID, kind Kind) func() {
	key := fmt.Sprintf("%d/%s", ownerID, kind)

	a.mu.Lock()
	lock, ok := a.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[key] = lock
	}
	a.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Next returns the next number in the owner's sequence for the given kind,
// formatted "<prefix>-<zero-padded sequence>". Padding is four digits minimum;
// the sequence keeps counting past 9999 with a fifth digit.
func (a *Allocator) Next(tx *gorm.DB, ownerID snowflake.ID, kind Kind) (string, error) {
	var numbers []string
	err := tx.Table(kind.table()).
		Where("owner_id = ?", ownerID).
		Pluck("number", &numbers).Error
	if err != nil {
		return "", err
	}

	highest := 0
	for _, number := range numbers {
		suffix, ok := strings.CutPrefix(number, kind.Prefix()+"-")
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}

	return fmt.Sprintf("%s-%04d", kind.Prefix(), highest+1), nil
}

// Module wires the process-wide allocator.
var Module = fx.Module("numbering",
	fx.Provide(New),
)
