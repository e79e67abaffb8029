// Package remap assigns numeric surrogate shot ids to legacy name-keyed
// shots. Assignment is pure and deterministic: the same legacy input
// always yields the same identity table, so a re-run after a partial
// failure reproduces the ids of already-committed shots.
package remap

import (
	"fmt"
	"sort"

	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// Legacy is one shot as found in the legacy source, in source order
type Legacy struct {
	Name     string
	Order    int
	HasOrder bool // false when the source row has no usable order key
}

// Identity binds a legacy shot name to its assigned surrogate id
type Identity struct {
	LegacyName  string
	SurrogateID int64
	Order       int
}

// Assign maps legacy shots to surrogate ids 1..N. Shots are sorted by
// their order key; shots without one sort after all ordered shots.
// Ties keep source order (stable sort). Duplicate legacy names are
// rejected: the name mapping must stay reversible.
func Assign(shots []Legacy) ([]Identity, error) {
	seen := make(map[string]bool, len(shots))
	for _, s := range shots {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: shot with empty name", util.ErrConfiguration)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate shot name %q", util.ErrConfiguration, s.Name)
		}
		seen[s.Name] = true
	}

	ordered := make([]Legacy, len(shots))
	copy(ordered, shots)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.HasOrder != b.HasOrder {
			return a.HasOrder
		}
		if !a.HasOrder {
			return false // both unordered: keep source order
		}
		return a.Order < b.Order
	})

	ids := make([]Identity, len(ordered))
	for i, s := range ordered {
		order := s.Order
		if !s.HasOrder {
			order = i + 1
		}
		ids[i] = Identity{
			LegacyName:  s.Name,
			SurrogateID: int64(i + 1),
			Order:       order,
		}
	}
	return ids, nil
}

// Table is a lookup view over an identity assignment
type Table struct {
	byName map[string]Identity
	byID   map[int64]Identity
	order  []Identity
}

// NewTable builds lookup maps over an assignment
func NewTable(ids []Identity) *Table {
	t := &Table{
		byName: make(map[string]Identity, len(ids)),
		byID:   make(map[int64]Identity, len(ids)),
		order:  ids,
	}
	for _, id := range ids {
		t.byName[id.LegacyName] = id
		t.byID[id.SurrogateID] = id
	}
	return t
}

// ByName returns the identity for a legacy shot name
func (t *Table) ByName(name string) (Identity, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// ByID returns the identity for a surrogate id
func (t *Table) ByID(id int64) (Identity, bool) {
	ident, ok := t.byID[id]
	return ident, ok
}

// All returns identities in surrogate-id order
func (t *Table) All() []Identity {
	return t.order
}

// Mapping returns the name → id map persisted in shot_name_mapping.json
func (t *Table) Mapping() map[string]int64 {
	m := make(map[string]int64, len(t.order))
	for _, id := range t.order {
		m[id.LegacyName] = id.SurrogateID
	}
	return m
}
