package stock

import (
	"fmt"
	"strings"
)

// IncomingPolicy selects how edits and deletions of incoming invoices touch stock
type IncomingPolicy string

const (
	// PolicyPreserve only applies item names new to the invoice; nothing is reversed
	PolicyPreserve IncomingPolicy = "preserve"
	// PolicyReconcile applies the per-product difference between old and new items
	PolicyReconcile IncomingPolicy = "reconcile"
)

func ParsePolicy(s string) (IncomingPolicy, error) {
	switch IncomingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPreserve:
		return PolicyPreserve, nil
	case PolicyReconcile:
		return PolicyReconcile, nil
	}
	return "", fmt.Errorf("unknown incoming policy %q (want preserve or reconcile)", s)
}
