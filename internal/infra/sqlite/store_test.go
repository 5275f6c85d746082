package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping sqlite store test in short mode")
	}

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStore_FocusSetSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutFocusSet(ctx, 1, entities.CategoryAlphabet, entities.NewFocusSet("A", "B")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutFocusSet(ctx, 1, entities.CategoryAlphabet, entities.NewFocusSet("C")); err != nil {
		t.Fatalf("put again: %v", err)
	}

	focus, err := s.GetFocusSet(ctx, 1, entities.CategoryAlphabet)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ids := focus.IDs(); len(ids) != 1 || ids[0] != "C" {
		t.Errorf("expected snapshot {C}, got %v", ids)
	}

	other, _ := s.GetFocusSet(ctx, 1, entities.CategoryNumbers)
	if len(other) != 0 {
		t.Errorf("expected empty numbers focus set, got %v", other.IDs())
	}
}

func TestStore_MasteryCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := entities.MasteryCounters{"Dog": 2, "Cat": 0}
	if err := s.PutMasteryCounters(ctx, 3, entities.CategoryAnimals, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetMasteryCounters(ctx, 3, entities.CategoryAnimals)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got["Dog"] != 2 || got["Cat"] != 0 {
		t.Errorf("unexpected counters %v", got)
	}

	colours, _ := s.GetMasteryCounters(ctx, 3, entities.CategoryColours)
	if len(colours) != 0 {
		t.Errorf("expected no colours counters, got %v", colours)
	}
}

func TestStore_ScoresAndXP(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	rec := entities.NewScoreRecord(8)
	if err := s.AppendScoreRecord(ctx, 1, entities.CategoryColours, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !rec.Timestamp.Equal(fixed) {
		t.Errorf("expected record stamped with %v, got %v", fixed, rec.Timestamp)
	}
	_ = s.AppendScoreRecord(ctx, 1, entities.CategoryColours, entities.NewScoreRecord(10))

	records, err := s.ListScoreRecords(ctx, 1, entities.CategoryColours)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].Score != 8 || records[1].Score != 10 || records[1].Total != 10 {
		t.Fatalf("unexpected records %+v", records)
	}
	if !records[0].Timestamp.Equal(fixed) {
		t.Errorf("expected timestamp %v, got %v", fixed, records[0].Timestamp)
	}

	if xp, _ := s.GetXP(ctx, 1); xp != 0 {
		t.Errorf("expected 0 xp for new user, got %d", xp)
	}

	total, err := s.AddXP(ctx, 1, "Sam", 80)
	if err != nil || total != 80 {
		t.Fatalf("expected 80, got %d %v", total, err)
	}
	total, _ = s.AddXP(ctx, 1, "Samira", 100)
	if total != 180 {
		t.Errorf("expected 180, got %d", total)
	}

	if err := s.ResetScores(ctx, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}
	records, _ = s.ListScoreRecords(ctx, 1, entities.CategoryColours)
	if len(records) != 0 {
		t.Errorf("expected empty history after reset, got %d", len(records))
	}
	if xp, _ := s.GetXP(ctx, 1); xp != 180 {
		t.Errorf("expected xp kept after reset, got %d", xp)
	}

	_, _ = s.AddXP(ctx, 2, "Alex", 180)
	_, _ = s.AddXP(ctx, 3, "Zed", 500)

	top, err := s.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].DisplayName != "Zed" || top[1].DisplayName != "Alex" {
		t.Errorf("unexpected leaderboard %+v", top)
	}
}

func TestStore_LeaderboardLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"Ann", "Bo", "Cy", "Di"} {
		if _, err := s.AddXP(ctx, int64(i+1), name, (i+1)*10); err != nil {
			t.Fatalf("add xp: %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "positive limit", limit: 3, want: 3},
		{name: "limit above count", limit: 10, want: 4},
		{name: "zero returns all", limit: 0, want: 4},
		{name: "negative returns all", limit: -5, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, err := s.Leaderboard(ctx, tt.limit)
			if err != nil {
				t.Fatalf("leaderboard: %v", err)
			}
			if len(top) != tt.want {
				t.Fatalf("expected %d users, got %d", tt.want, len(top))
			}
			if top[0].DisplayName != "Di" {
				t.Errorf("expected Di first, got %+v", top[0])
			}
		})
	}
}

func TestStore_AddXPConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AddXP(ctx, 9, "Kit", 10); err != nil {
				t.Errorf("add xp: %v", err)
			}
		}()
	}
	wg.Wait()

	if xp, _ := s.GetXP(ctx, 9); xp != 200 {
		t.Errorf("expected 200 xp, got %d", xp)
	}
}

func TestStore_UsersProgressReminders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.SaveUser(ctx, entities.NewUser(1, 100, "Sam"))
	if err != nil || !created {
		t.Fatalf("expected new user, got %v %v", created, err)
	}
	created, _ = s.SaveUser(ctx, entities.NewUser(1, 101, "Sam"))
	if created {
		t.Error("expected existing user on second save")
	}

	first, _ := s.MarkLearned(ctx, 1, entities.CategoryNumbers, time.Now())
	second, _ := s.MarkLearned(ctx, 1, entities.CategoryNumbers, time.Now())
	if !first || second {
		t.Errorf("expected first=true second=false, got %v %v", first, second)
	}

	p, err := s.GetLearningProgress(ctx, 1)
	if err != nil || !p.HasLearned(entities.CategoryNumbers) {
		t.Errorf("expected numbers learned, got %+v %v", p, err)
	}

	_ = s.PutFocusSet(ctx, 1, entities.CategoryGreetings, entities.NewFocusSet("Hello", "Please"))
	_ = s.PutFocusSet(ctx, 2, entities.CategoryGreetings, entities.NewFocusSet("Sorry"))

	rows, err := s.ListFocusReminders(ctx)
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one reminder, got %+v", rows)
	}
	if rows[0].ChatID != 101 || rows[0].FocusCount != 2 || rows[0].Category != entities.CategoryGreetings {
		t.Errorf("unexpected reminder %+v", rows[0])
	}
}
