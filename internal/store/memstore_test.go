package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pkodial/tulubot/internal/store"
)

func TestTaughtRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemStore()
	now := time.Now().UTC().Truncate(time.Second)

	e := store.TaughtEntry{
		English:     "friend",
		Tulu:        "doste",
		Contributor: "user-1",
		UsageCount:  1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.PutTaught(ctx, e); err != nil {
		t.Fatalf("PutTaught: %v", err)
	}

	got, err := s.GetTaught(ctx, "friend")
	if err != nil {
		t.Fatalf("GetTaught: %v", err)
	}
	if got != e {
		t.Fatalf("GetTaught = %+v, want %+v", got, e)
	}
}

func TestTaughtUpsertOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemStore()

	first := store.TaughtEntry{English: "friend", Tulu: "wrong", UsageCount: 0}
	second := store.TaughtEntry{English: "friend", Tulu: "doste", UsageCount: 1}
	if err := s.PutTaught(ctx, first); err != nil {
		t.Fatalf("PutTaught first: %v", err)
	}
	if err := s.PutTaught(ctx, second); err != nil {
		t.Fatalf("PutTaught second: %v", err)
	}

	got, err := s.GetTaught(ctx, "friend")
	if err != nil {
		t.Fatalf("GetTaught: %v", err)
	}
	if got.Tulu != "doste" || got.UsageCount != 1 {
		t.Fatalf("GetTaught after overwrite = %+v", got)
	}

	n, err := s.Count(ctx, store.TableTaught)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1 (no duplicate rows)", n)
	}
}

func TestAPICacheRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemStore()
	e := store.APICacheEntry{
		English:     "mountain",
		Translation: "gudde",
		Source:      "openai",
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.PutAPICache(ctx, e); err != nil {
		t.Fatalf("PutAPICache: %v", err)
	}
	got, err := s.GetAPICache(ctx, "mountain")
	if err != nil {
		t.Fatalf("GetAPICache: %v", err)
	}
	if got != e {
		t.Fatalf("GetAPICache = %+v, want %+v", got, e)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemStore()

	if _, err := s.GetTaught(ctx, "absent"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetTaught(absent): expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetAPICache(ctx, "absent"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetAPICache(absent): expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTaught(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemStore()
	if err := s.PutTaught(ctx, store.TaughtEntry{English: "friend", Tulu: "doste"}); err != nil {
		t.Fatalf("PutTaught: %v", err)
	}

	if err := s.DeleteTaught(ctx, "friend"); err != nil {
		t.Fatalf("DeleteTaught: %v", err)
	}
	if _, err := s.GetTaught(ctx, "friend"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetTaught after delete: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTaught(ctx, "friend"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("DeleteTaught twice: expected ErrNotFound, got %v", err)
	}
}

func TestListRecentOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemStore()
	base := time.Now().UTC()

	for i, key := range []string{"oldest", "middle", "newest"} {
		e := store.TaughtEntry{
			English:   key,
			Tulu:      "t" + key,
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.PutTaught(ctx, e); err != nil {
			t.Fatalf("PutTaught(%s): %v", key, err)
		}
	}

	records, err := s.ListRecent(ctx, store.TableTaught, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListRecent returned %d records, want 2", len(records))
	}
	if records[0].Key != "newest" || records[1].Key != "middle" {
		t.Fatalf("ListRecent order = [%s %s], want [newest middle]", records[0].Key, records[1].Key)
	}
}

func TestUnknownTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemStore()

	if _, err := s.Count(ctx, store.Table("nope")); !errors.Is(err, store.ErrUnknownTable) {
		t.Fatalf("Count(nope): expected ErrUnknownTable, got %v", err)
	}
	if _, err := s.ListRecent(ctx, store.Table("nope"), 5); !errors.Is(err, store.ErrUnknownTable) {
		t.Fatalf("ListRecent(nope): expected ErrUnknownTable, got %v", err)
	}
}
