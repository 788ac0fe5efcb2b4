package http

import (
	"fmt"
	"strings"
)

// Mode selects which operations require a bearer token
type Mode string

const (
	// ModeStrict protects every mutation
	ModeStrict Mode = "strict"
	// ModeLegacy protects only incoming invoice writes and archiving, as older clients expect
	ModeLegacy Mode = "legacy"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeLegacy:
		return ModeLegacy, nil
	}
	return "", fmt.Errorf("unknown auth mode %q (want strict or legacy)", s)
}

type access struct {
	strict bool
	legacy bool
}

var (
	open      = access{}
	mutation  = access{strict: true}
	protected = access{strict: true, legacy: true}
)

// catalogResources are the master-data collections served by the generic CRUD routes
var catalogResources = []string{
	"organizations", "storages", "employees", "suppliers", "customers", "contracts", "operations", "products",
}

var accessTable = buildAccessTable()

func buildAccessTable() map[string]access {
	t := map[string]access{
		"user.register": open,
		"user.login":    open,
		// the handler checks the refresh token itself
		"user.refresh": open,
		"user.me":      protected,

		"products.by_name": open,

		"incoming.list":        open,
		"incoming.get":         open,
		"incoming.next_number": open,
		"incoming.by_date":     open,
		"incoming.create":      protected,
		"incoming.update":      protected,
		"incoming.delete":      protected,
		"incoming.pdf":         open,
		"incoming.archive":     protected,

		"outgoing.list":        open,
		"outgoing.get":         open,
		"outgoing.next_number": open,
		"outgoing.create":      mutation,
		"outgoing.update":      mutation,
		"outgoing.delete":      mutation,
		"outgoing.pdf":         open,
		"outgoing.archive":     protected,
	}
	for _, res := range catalogResources {
		t[res+".list"] = open
		t[res+".get"] = open
		t[res+".create"] = mutation
		t[res+".update"] = mutation
		t[res+".delete"] = mutation
	}
	return t
}

// Protected reports whether op needs an authenticated caller. Unknown operations are protected.
func (m Mode) Protected(op string) bool {
	a, ok := accessTable[op]
	if !ok {
		return true
	}
	if m == ModeLegacy {
		return a.legacy
	}
	return a.strict
}
