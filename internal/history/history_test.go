package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeffcwolf/klinscore/internal/cache"
	"github.com/jeffcwolf/klinscore/internal/platform"
	"github.com/jeffcwolf/klinscore/pkg/config"
	"github.com/jeffcwolf/klinscore/pkg/library"
	"github.com/jeffcwolf/klinscore/pkg/scoring"
	"github.com/jeffcwolf/klinscore/scores"
)

type fixture struct {
	svc     *Service
	store   *Store
	blobDir string
	def     *scoring.ScoreDefinition
}

func newFixture(t *testing.T, c cache.Cache) *fixture {
	t.Helper()
	dir := t.TempDir()

	db, err := platform.OpenDB(config.DatabaseConfig{Driver: "sqlite", SQLitePath: filepath.Join(dir, "history.db")})
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := platform.AutoMigrate(db, "sqlite"); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	lib, err := library.LoadFS(scores.FS, ".", nil)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	def, err := lib.Get("cha2ds2_va")
	if err != nil {
		t.Fatal(err)
	}

	blobDir := filepath.Join(dir, "records")
	store := NewStore(db, "sqlite")
	svc := NewService(store, NewLocalStorage(blobDir), c, time.Minute, nil)
	return &fixture{svc: svc, store: store, blobDir: blobDir, def: def}
}

func TestService_CalculateAndGet(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	inputs := scoring.Inputs{
		"age":          scoring.Number(72),
		"hypertension": scoring.Bool(true),
	}
	rec, err := f.svc.Calculate(ctx, "cha2ds2_va", f.def, inputs)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if rec.ID == "" || rec.ScoreName != f.def.Name || rec.Result.Total != 2 {
		t.Errorf("unexpected record %+v", rec)
	}

	blob := filepath.Join(f.blobDir, "cha2ds2_va", "records", rec.ID+".json")
	if _, err := os.Stat(blob); err != nil {
		t.Errorf("expected blob at %s: %v", blob, err)
	}

	got, err := f.svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Result.Total != 2 || got.Result.RiskLevel != rec.Result.RiskLevel {
		t.Errorf("Get result = %+v", got.Result)
	}
	if age, ok := got.Inputs["age"].AsNumber(); !ok || age != 72 {
		t.Errorf("Get inputs = %v", got.Inputs)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestService_CalculateErrorPersistsNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Calculate(ctx, "cha2ds2_va", f.def, scoring.Inputs{"hypertension": scoring.Bool(true)})
	if !errors.Is(err, scoring.ErrMissingRequiredField) {
		t.Fatalf("expected missing required field, got %v", err)
	}

	list, err := f.svc.List(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected no records, got %d", len(list))
	}
	if _, err := os.Stat(f.blobDir); !os.IsNotExist(err) {
		t.Errorf("expected no blob directory, stat err = %v", err)
	}
}

func TestService_GetNotFound(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.svc.Get(context.Background(), "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_GetReadsThroughCache(t *testing.T) {
	c := cache.NewLRUCache(8)
	f := newFixture(t, c)
	ctx := context.Background()

	rec, err := f.svc.Calculate(ctx, "cha2ds2_va", f.def, scoring.Inputs{"age": scoring.Number(50)})
	if err != nil {
		t.Fatal(err)
	}

	// With the blob gone, only the cache can serve the record.
	if err := os.RemoveAll(f.blobDir); err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get from cache: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}

	_ = c.Delete(ctx, "record:"+rec.ID)
	if _, err := f.svc.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected missing blob error after cache eviction, got %v", err)
	}
}

func TestService_ListNewestFirst(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	var ids []string
	for i, age := range []float64{50, 66, 80} {
		now := base.Add(time.Duration(i) * time.Minute)
		f.svc.now = func() time.Time { return now }
		rec, err := f.svc.Calculate(ctx, "cha2ds2_va", f.def, scoring.Inputs{"age": scoring.Number(age)})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, rec.ID)
	}

	list, err := f.svc.List(ctx, "cha2ds2_va", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List len = %d", len(list))
	}
	if list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Errorf("expected newest first, got %v", []string{list[0].ID, list[1].ID, list[2].ID})
	}
	if list[0].Total != 2 || list[0].RiskLevel != scoring.RiskHigh {
		t.Errorf("newest summary = %+v", list[0])
	}

	limited, _ := f.svc.List(ctx, "", 2)
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d", len(limited))
	}
	other, _ := f.svc.List(ctx, "has_bled", 0)
	if len(other) != 0 {
		t.Errorf("filter by other score returned %d", len(other))
	}
}

func TestLocalStorage_PutGetRecord(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"id":"rec1"}`)
	if err := s.PutRecord(ctx, "kfre", "rec1", data); err != nil {
		t.Fatalf("PutRecord: %v", err)
	}
	got, err := s.GetRecord(ctx, "kfre", "rec1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetRecord = %q, want %q", got, data)
	}

	expectedPath := filepath.Join(dir, "kfre", "records", "rec1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}

	if _, err := s.GetRecord(ctx, "kfre", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	s, err := NewStorage(ctx, config.StorageConfig{Backend: "local", LocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStorage(local): %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Errorf("expected *LocalStorage, got %T", s)
	}

	if _, err := NewStorage(ctx, config.StorageConfig{Backend: "ftp"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := NewStorage(ctx, config.StorageConfig{Backend: "s3"}); err == nil {
		t.Error("expected error for s3 without bucket")
	}
}
