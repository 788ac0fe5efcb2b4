// Package numbering allocates sequential invoice numbers per invoice kind.
//
// A number is the kind's prefix followed by MAX(id)+1 padded to three digits.
// Candidates already taken by a caller-supplied number are skipped.
// Allocate must run inside the transaction that inserts the invoice, after the
// per-kind lock is held, so two writers never see the same high-water mark.
package numbering

import (
	"context"
	"fmt"

	"stock-backend/internal/models"
)

const (
	DefaultIncomingPrefix = "inv"
	DefaultOutgoingPrefix = "out"
)

// Reader exposes the highest identity stored for a kind (0 when empty) and
// whether a number is already in use
type Reader interface {
	MaxInvoiceID(ctx context.Context, kind models.InvoiceKind) (int, error)
	InvoiceNumberExists(ctx context.Context, kind models.InvoiceKind, number string) (bool, error)
}

// Source is a Reader bound to a transaction that can serialize allocations
type Source interface {
	Reader
	LockInvoiceSequence(ctx context.Context, kind models.InvoiceKind) error
}

type Allocator struct {
	incomingPrefix string
	outgoingPrefix string
}

// NewAllocator builds an allocator; empty prefixes fall back to the defaults
func NewAllocator(incomingPrefix, outgoingPrefix string) *Allocator {
	if incomingPrefix == "" {
		incomingPrefix = DefaultIncomingPrefix
	}
	if outgoingPrefix == "" {
		outgoingPrefix = DefaultOutgoingPrefix
	}
	return &Allocator{incomingPrefix: incomingPrefix, outgoingPrefix: outgoingPrefix}
}

// Allocate takes the kind's sequence lock and returns the next number
func (a *Allocator) Allocate(ctx context.Context, src Source, kind models.InvoiceKind) (string, error) {
	if err := src.LockInvoiceSequence(ctx, kind); err != nil {
		return "", fmt.Errorf("lock %s invoice sequence: %w", kind, err)
	}
	return a.next(ctx, src, kind)
}

// Peek returns the number the next Allocate would produce without reserving it.
// The value may be stale by the time a caller uses it.
func (a *Allocator) Peek(ctx context.Context, r Reader, kind models.InvoiceKind) (string, error) {
	return a.next(ctx, r, kind)
}

func (a *Allocator) next(ctx context.Context, r Reader, kind models.InvoiceKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown invoice kind %q", kind)
	}
	maxID, err := r.MaxInvoiceID(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("read max %s invoice id: %w", kind, err)
	}
	for seq := maxID + 1; ; seq++ {
		number := a.Format(kind, seq)
		taken, err := r.InvoiceNumberExists(ctx, kind, number)
		if err != nil {
			return "", fmt.Errorf("check %s invoice number: %w", kind, err)
		}
		if !taken {
			return number, nil
		}
	}
}

// Format renders seq with the kind's prefix
func (a *Allocator) Format(kind models.InvoiceKind, seq int) string {
	return fmt.Sprintf("%s%03d", a.prefix(kind), seq)
}

func (a *Allocator) prefix(kind models.InvoiceKind) string {
	if kind == models.InvoiceOutgoing {
		return a.outgoingPrefix
	}
	return a.incomingPrefix
}
