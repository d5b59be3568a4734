package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedLocalTypes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.SeedLocalTypes(ctx)
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 seeded types, got %d", n)
	}

	// Re-seeding is a no-op.
	n, err = s.SeedLocalTypes(ctx)
	if err != nil || n != 0 {
		t.Errorf("expected idempotent seed, got n=%d err=%v", n, err)
	}

	types, err := s.LocalTypes(ctx)
	if err != nil {
		t.Fatalf("listing types: %v", err)
	}
	if len(types) != 4 {
		t.Fatalf("expected 4 types, got %d", len(types))
	}
	if types[0].Name != "Event & Occassions" {
		t.Errorf("unexpected first type %q", types[0].Name)
	}

	got, err := s.LocalTypeByUUID(ctx, types[2].UUID)
	if err != nil {
		t.Fatalf("lookup by uuid: %v", err)
	}
	if got.Name != "Tourist" {
		t.Errorf("unexpected type %q", got.Name)
	}

	if _, err := s.LocalTypeByUUID(ctx, "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func seedLocal(t *testing.T, s *SQLiteStore, name string) *Local {
	t.Helper()
	ctx := context.Background()
	if _, err := s.SeedLocalTypes(ctx); err != nil {
		t.Fatalf("seeding types: %v", err)
	}
	types, _ := s.LocalTypes(ctx)
	local, err := s.CreateLocal(ctx, LocalParams{
		LocalTypeID:  types[0].ID,
		Name:         name,
		Description:  "a street fair",
		Coordinates:  "24.977006,67.211599",
		RadiusMeters: 2000,
	})
	if err != nil {
		t.Fatalf("creating local: %v", err)
	}
	return local
}

func TestLocalLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	local := seedLocal(t, s, "Summer Fair")
	if local.UUID == "" {
		t.Fatal("expected generated uuid")
	}
	if local.LocalType == nil || local.LocalType.Name != "Event & Occassions" {
		t.Errorf("expected joined local type, got %+v", local.LocalType)
	}

	got, err := s.LocalByUUID(ctx, local.UUID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Name != "Summer Fair" || got.RadiusMeters != 2000 {
		t.Errorf("unexpected local %+v", got)
	}

	updated, err := s.UpdateLocal(ctx, local.UUID, LocalParams{
		Name:         "Winter Fair",
		Coordinates:  got.Coordinates,
		RadiusMeters: 3000,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Winter Fair" || updated.RadiusMeters != 3000 {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := s.DeleteLocal(ctx, local.UUID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.LocalByUUID(ctx, local.UUID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteLocal(ctx, local.UUID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestLocalsFilterAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedLocal(t, s, "Coffee Week")
	seedLocal(t, s, "Coffee Festival")
	seedLocal(t, s, "Book Fair")

	locals, total, err := s.Locals(ctx, LocalFilter{Search: "Coffee"})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if total != 2 || len(locals) != 2 {
		t.Errorf("expected 2 coffee locals, got total=%d len=%d", total, len(locals))
	}

	page, total, err := s.Locals(ctx, LocalFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("paging: %v", err)
	}
	if total != 3 || len(page) != 1 {
		t.Errorf("expected page 2 with 1 of 3, got total=%d len=%d", total, len(page))
	}
}

func TestMessagesAppendAndPurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	local := seedLocal(t, s, "Summer Fair")

	for _, m := range []MessageRecord{
		{MessageBy: MessageByUser, LocalID: local.ID, Message: "where can I get coffee?"},
		{MessageBy: MessageByAssistant, LocalID: local.ID, Message: "There are two cafes nearby.",
			Summary: "recommended nearby cafes", Metadata: []byte(`{"tool_usage_count":1}`)},
	} {
		if _, err := s.SaveMessage(ctx, m); err != nil {
			t.Fatalf("saving message: %v", err)
		}
	}

	msgs, err := s.MessagesForLocal(ctx, local.UUID, 10)
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	// Newest first.
	if msgs[0].MessageBy != MessageByAssistant {
		t.Errorf("unexpected ordering: %+v", msgs)
	}
	if string(msgs[0].Metadata) != `{"tool_usage_count":1}` {
		t.Errorf("metadata not round-tripped: %s", msgs[0].Metadata)
	}
	if msgs[0].Summary != "recommended nearby cafes" {
		t.Errorf("summary not round-tripped: %q", msgs[0].Summary)
	}
	if msgs[1].Summary != "" {
		t.Errorf("expected empty summary, got %q", msgs[1].Summary)
	}

	// Nothing is old enough to purge yet.
	n, err := s.PurgeMessagesBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Errorf("expected no purge, got n=%d err=%v", n, err)
	}

	// A future cutoff removes everything.
	n, err = s.PurgeMessagesBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("purging: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 purged, got %d", n)
	}
}

func TestEnsureUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.EnsureUser(ctx, "subj-1", "visitor@example.com")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if u.CustomerID == 0 {
		t.Error("expected a backing customer row")
	}
	if u.OnboardingComplete {
		t.Error("new user must not be onboarded")
	}

	again, err := s.EnsureUser(ctx, "subj-1", "visitor@example.com")
	if err != nil {
		t.Fatalf("ensure user twice: %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("expected same user row, got %d vs %d", again.ID, u.ID)
	}

	if err := s.MarkUserOnboarded(ctx, u.ID); err != nil {
		t.Fatalf("mark onboarded: %v", err)
	}
	u2, _ := s.EnsureUser(ctx, "subj-1", "visitor@example.com")
	if !u2.OnboardingComplete {
		t.Error("expected onboarding flag set")
	}
}
