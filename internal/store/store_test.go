package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mdkberry/migrating-to-aimms/internal/schema"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "shots.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Initialize(schema.Default()); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	return s
}

func TestInitializeCreatesSchema(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"shots", "takes", "assets", "meta", "deleted_shots"} {
		ok, err := s.HasTable(table)
		if err != nil {
			t.Fatalf("failed to check table %s: %v", table, err)
		}
		if !ok {
			t.Errorf("expected table %s to exist", table)
		}
	}

	d, err := schema.Default().Diff(s.DB())
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !d.Clean() {
		t.Errorf("expected clean diff after initialize, got %+v", d)
	}
}

func TestCommitShotAndReadBack(t *testing.T) {
	s := openTestStore(t)

	shot := &Shot{
		ID:          1,
		OrderNumber: 10,
		ShotName:    "opening_scene",
		Section:     "act_1",
		Description: "wide establishing shot",
		CreatedDate: "2024-06-01T12:00:00Z",
	}
	takes := []Take{
		{TakeID: "t-1", ShotID: 1, TakeType: TakeBaseImage, FilePath: "media/1/base_01.png", SequenceNumber: 1},
		{TakeID: "t-2", ShotID: 1, TakeType: TakeFinalVideo, FilePath: "media/1/video_01.mp4", SequenceNumber: 1},
		{TakeID: "t-3", ShotID: 1, TakeType: TakeVideoWorkflow, FilePath: "media/1/video_01.png", SequenceNumber: 1, Starred: true},
	}

	if err := s.CommitShot(shot, takes); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	shots, err := s.AllShots()
	if err != nil {
		t.Fatalf("failed to read shots: %v", err)
	}
	if len(shots) != 1 {
		t.Fatalf("expected 1 shot, got %d", len(shots))
	}
	if shots[0].ShotName != "opening_scene" || shots[0].ID != 1 {
		t.Errorf("unexpected shot: %+v", shots[0])
	}

	gotTakes, err := s.AllTakes()
	if err != nil {
		t.Fatalf("failed to read takes: %v", err)
	}
	if len(gotTakes) != 3 {
		t.Fatalf("expected 3 takes, got %d", len(gotTakes))
	}
	for _, take := range gotTakes {
		if take.ShotID != 1 {
			t.Errorf("expected shot_id 1, got %d", take.ShotID)
		}
	}
}

func TestCommitShotTakeIDCollision(t *testing.T) {
	s := openTestStore(t)

	first := &Shot{ID: 1, OrderNumber: 1, ShotName: "shot_a"}
	if err := s.CommitShot(first, []Take{
		{TakeID: "same-id", ShotID: 1, TakeType: TakeBaseImage, FilePath: "media/1/base_01.png", SequenceNumber: 1},
	}); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	second := &Shot{ID: 2, OrderNumber: 2, ShotName: "shot_b"}
	err := s.CommitShot(second, []Take{
		{TakeID: "same-id", ShotID: 2, TakeType: TakeBaseImage, FilePath: "media/2/base_01.png", SequenceNumber: 1},
	})
	if err == nil {
		t.Fatal("expected collision to fail the shot")
	}
	if !errors.Is(err, util.ErrDatabaseMigration) {
		t.Errorf("expected ErrDatabaseMigration, got %v", err)
	}

	// The failed shot's transaction rolled back entirely
	shots, err := s.AllShots()
	if err != nil {
		t.Fatal(err)
	}
	if len(shots) != 1 || shots[0].ShotName != "shot_a" {
		t.Errorf("expected only shot_a committed, got %+v", shots)
	}

	takes, err := s.AllTakes()
	if err != nil {
		t.Fatal(err)
	}
	if len(takes) != 1 || takes[0].ShotID != 1 {
		t.Errorf("expected original take untouched, got %+v", takes)
	}
}

func TestInsertAsset(t *testing.T) {
	s := openTestStore(t)

	asset := &Asset{
		IDKey:     "asset-uuid-1",
		AssetName: "hero.png",
		AssetType: "characters",
		FilePath:  "media/characters/hero.png",
	}
	if err := s.InsertAsset(asset); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Same id again is a collision
	err := s.InsertAsset(&Asset{IDKey: "asset-uuid-1", AssetName: "other.png", AssetType: "other", FilePath: "media/other/other.png"})
	if !errors.Is(err, util.ErrDatabaseMigration) {
		t.Errorf("expected ErrDatabaseMigration, got %v", err)
	}

	assets, err := s.AllAssets()
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 || assets[0].AssetName != "hero.png" {
		t.Errorf("expected single original asset, got %+v", assets)
	}
}

func TestSeedAndCarryMeta(t *testing.T) {
	s := openTestStore(t)

	if err := s.SeedMeta(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	legacy := map[string]string{
		"schema_version": "0.9-beta",
		"app_version":    "legacy-2.3",
		"project_title":  "my film",
		"export_date":    "2023-05-01 10:30:00",
		"migration_date": "should-not-overwrite",
	}
	if err := s.CarryLegacyMeta(legacy); err != nil {
		t.Fatalf("carry failed: %v", err)
	}

	meta, err := s.AllMeta()
	if err != nil {
		t.Fatal(err)
	}

	if meta["schema_version"] != "1" {
		t.Errorf("expected schema_version coerced to 1, got %q", meta["schema_version"])
	}
	if meta["app_version"] != "1.0" {
		t.Errorf("expected app_version coerced to 1.0, got %q", meta["app_version"])
	}
	if meta["project_title"] != "my film" {
		t.Errorf("expected passthrough key, got %q", meta["project_title"])
	}
	if meta["export_date"] != "2023-05-01T10:30:00Z" {
		t.Errorf("expected normalized date, got %q", meta["export_date"])
	}
	if meta["migration_date"] == "should-not-overwrite" {
		t.Error("legacy migration_date overwrote the seeded value")
	}

	value, ok, err := s.GetMeta("migration_date")
	if err != nil || !ok || value == "" {
		t.Errorf("expected migration_date present, got %q ok=%v err=%v", value, ok, err)
	}

	if _, ok, _ := s.GetMeta("nonexistent"); ok {
		t.Error("expected miss for unknown meta key")
	}
}

func TestOrphanedTakes(t *testing.T) {
	s := openTestStore(t)

	shot := &Shot{ID: 1, OrderNumber: 1, ShotName: "real_shot"}
	if err := s.CommitShot(shot, []Take{
		{TakeID: "ok", ShotID: 1, TakeType: TakeBaseImage, FilePath: "media/1/base_01.png", SequenceNumber: 1},
	}); err != nil {
		t.Fatal(err)
	}

	// Insert a take pointing at a shot that does not exist
	_, err := s.DB().Exec(`
		INSERT INTO takes (take_id, shot_id, take_type, file_path, sequence_number)
		VALUES ('orphan', 99, 'base_image', 'media/99/base_01.png', 1)`)
	if err != nil {
		t.Fatal(err)
	}

	orphans, err := s.OrphanedTakes()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(orphans) != 1 || orphans[0].TakeID != "orphan" {
		t.Errorf("expected one orphan take, got %+v", orphans)
	}
}

func TestDuplicateShotNames(t *testing.T) {
	s := openTestStore(t)

	for i, name := range []string{"dup", "dup", "unique"} {
		if err := s.CommitShot(&Shot{ID: int64(i + 1), OrderNumber: i + 1, ShotName: name}, nil); err != nil {
			t.Fatal(err)
		}
	}

	dups, err := s.DuplicateShotNames()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(dups) != 1 || dups[0] != "dup" {
		t.Errorf("expected [dup], got %v", dups)
	}
}

func TestTakeTypeFamily(t *testing.T) {
	tests := []struct {
		taketype TakeType
		family   string
	}{
		{TakeBaseImage, "base_image"},
		{TakeFinalVideo, "video"},
		{TakeVideoWorkflow, "video"},
		{TakeAsset, "asset"},
	}
	for _, tt := range tests {
		if got := tt.taketype.Family(); got != tt.family {
			t.Errorf("%s: expected family %s, got %s", tt.taketype, tt.family, got)
		}
	}
}

func TestAddTake(t *testing.T) {
	s := openTestStore(t)

	if err := s.CommitShot(&Shot{ID: 1, OrderNumber: 1, ShotName: "opening"}, []Take{
		{TakeID: "t-vid", ShotID: 1, TakeType: TakeFinalVideo, FilePath: "media/1/video_01.mp4", SequenceNumber: 1},
	}); err != nil {
		t.Fatal(err)
	}

	thumb := &Take{
		TakeID: "t-thumb", ShotID: 1, TakeType: TakeVideoWorkflow,
		FilePath: "media/1/video_01.png", SequenceNumber: 1,
	}
	if err := s.AddTake(thumb); err != nil {
		t.Fatalf("add take failed: %v", err)
	}

	takes, err := s.AllTakes()
	if err != nil {
		t.Fatal(err)
	}
	if len(takes) != 2 {
		t.Fatalf("expected 2 takes, got %d", len(takes))
	}

	// Re-adding the same id collides
	err = s.AddTake(thumb)
	if !errors.Is(err, util.ErrDatabaseMigration) {
		t.Errorf("expected ErrDatabaseMigration on collision, got %v", err)
	}
}
