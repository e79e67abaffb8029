package remap

import (
	"errors"
	"testing"

	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

func TestAssignOrdersByOrderKey(t *testing.T) {
	// Names that would sort differently alphabetically than by order key
	shots := []Legacy{
		{Name: "zebra_shot", Order: 10, HasOrder: true},
		{Name: "alpha_shot", Order: 30, HasOrder: true},
		{Name: "mid_shot", Order: 20, HasOrder: true},
	}

	ids, err := Assign(shots)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	want := []struct {
		name string
		id   int64
	}{
		{"zebra_shot", 1},
		{"mid_shot", 2},
		{"alpha_shot", 3},
	}
	for i, w := range want {
		if ids[i].LegacyName != w.name || ids[i].SurrogateID != w.id {
			t.Errorf("position %d: expected %s=%d, got %s=%d",
				i, w.name, w.id, ids[i].LegacyName, ids[i].SurrogateID)
		}
	}
}

func TestAssignTiesKeepSourceOrder(t *testing.T) {
	shots := []Legacy{
		{Name: "first", Order: 5, HasOrder: true},
		{Name: "second", Order: 5, HasOrder: true},
		{Name: "third", Order: 5, HasOrder: true},
	}

	ids, err := Assign(shots)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	for i, name := range []string{"first", "second", "third"} {
		if ids[i].LegacyName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, ids[i].LegacyName)
		}
	}
}

func TestAssignUnorderedSortLast(t *testing.T) {
	shots := []Legacy{
		{Name: "no_order_a"},
		{Name: "ordered", Order: 1, HasOrder: true},
		{Name: "no_order_b"},
	}

	ids, err := Assign(shots)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	want := []string{"ordered", "no_order_a", "no_order_b"}
	for i, name := range want {
		if ids[i].LegacyName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, ids[i].LegacyName)
		}
	}
}

func TestAssignContiguousFromOne(t *testing.T) {
	shots := []Legacy{
		{Name: "a", Order: 100, HasOrder: true},
		{Name: "b", Order: 250, HasOrder: true},
		{Name: "c", Order: 999, HasOrder: true},
	}

	ids, err := Assign(shots)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	for i, id := range ids {
		if id.SurrogateID != int64(i+1) {
			t.Errorf("expected contiguous id %d, got %d", i+1, id.SurrogateID)
		}
	}
}

func TestAssignDeterministic(t *testing.T) {
	shots := []Legacy{
		{Name: "opening", Order: 3, HasOrder: true},
		{Name: "chase", Order: 1, HasOrder: true},
		{Name: "finale", Order: 2, HasOrder: true},
		{Name: "extra"},
	}

	first, err := Assign(shots)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	for run := 0; run < 5; run++ {
		again, err := Assign(shots)
		if err != nil {
			t.Fatalf("assign failed on run %d: %v", run, err)
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d diverged at position %d: %+v vs %+v",
					run, i, again[i], first[i])
			}
		}
	}
}

func TestAssignRejectsDuplicates(t *testing.T) {
	shots := []Legacy{
		{Name: "shot_a", Order: 1, HasOrder: true},
		{Name: "shot_a", Order: 2, HasOrder: true},
	}

	_, err := Assign(shots)
	if err == nil {
		t.Fatal("expected duplicate names to be rejected")
	}
	if !errors.Is(err, util.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestAssignRejectsEmptyName(t *testing.T) {
	_, err := Assign([]Legacy{{Name: ""}})
	if !errors.Is(err, util.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestTableLookups(t *testing.T) {
	ids, err := Assign([]Legacy{
		{Name: "intro", Order: 1, HasOrder: true},
		{Name: "outro", Order: 2, HasOrder: true},
	})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	table := NewTable(ids)

	id, ok := table.ByName("outro")
	if !ok || id.SurrogateID != 2 {
		t.Errorf("expected outro=2, got %+v ok=%v", id, ok)
	}

	ident, ok := table.ByID(1)
	if !ok || ident.LegacyName != "intro" {
		t.Errorf("expected id 1 to be intro, got %+v ok=%v", ident, ok)
	}

	if _, ok := table.ByName("missing"); ok {
		t.Error("expected lookup miss for unknown name")
	}

	m := table.Mapping()
	if len(m) != 2 || m["intro"] != 1 || m["outro"] != 2 {
		t.Errorf("unexpected mapping: %v", m)
	}
}
