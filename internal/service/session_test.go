package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
	"github.com/aliskhannn/bsl-quest/internal/storage"
)

type staticBanks map[entities.Category]*entities.ItemBank

func (b staticBanks) GetBank(c entities.Category) (*entities.ItemBank, error) {
	bank, ok := b[c]
	if !ok {
		return nil, errors.New("no bank")
	}
	return bank, nil
}

func (b staticBanks) Categories() []entities.Category {
	var out []entities.Category
	for _, c := range entities.Categories() {
		if _, ok := b[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// failingMastery fails every read and write.
type failingMastery struct{}

var errStoreDown = errors.New("store down")

func (failingMastery) GetFocusSet(context.Context, int64, entities.Category) (entities.FocusSet, error) {
	return nil, errStoreDown
}

func (failingMastery) PutFocusSet(context.Context, int64, entities.Category, entities.FocusSet) error {
	return errStoreDown
}

func (failingMastery) GetMasteryCounters(context.Context, int64, entities.Category) (entities.MasteryCounters, error) {
	return nil, errStoreDown
}

func (failingMastery) PutMasteryCounters(context.Context, int64, entities.Category, entities.MasteryCounters) error {
	return errStoreDown
}

type sessionFixture struct {
	store   *storage.MemoryStore
	queue   *WriteQueue
	svc     *SessionService
	banks   staticBanks
	mastery MasteryStore
}

func newSessionFixture(t *testing.T, seed int64) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		store: storage.NewMemoryStore(),
		banks: staticBanks{
			entities.CategoryAlphabet: testBank(t, entities.CategoryAlphabet, "A", "B", "C", "D"),
			entities.CategoryAnimals: testBank(t, entities.CategoryAnimals,
				"Dog", "Cat", "Fish", "Horse", "Monkey", "Cow", "Sheep", "Chicken", "Lion", "Snake"),
		},
	}
	f.mastery = f.store
	f.build(seed)

	return f
}

func (f *sessionFixture) build(seed int64) {
	logger := zap.NewNop()
	f.queue = NewWriteQueue(WriteQueueConfig{QueueSize: 64, Workers: 2, Timeout: time.Second}, logger)
	f.svc = NewSessionService(
		f.banks,
		f.mastery,
		NewQuestionSelector(rand.New(rand.NewSource(seed))),
		NewScoreRecorder(f.store, f.store, logger),
		f.queue,
		storage.NewSessionStorage[*Tracker](),
		logger,
	)
}

// startOn starts sessions until the first question asks for itemID.
func (f *sessionFixture) startOn(t *testing.T, userID int64, c entities.Category, itemID string) *Tracker {
	t.Helper()

	for i := 0; i < 500; i++ {
		tr, err := f.svc.Start(context.Background(), userID, "Sam", c)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if tr.Question().Item.ID == itemID {
			return tr
		}
	}
	t.Fatalf("never drew %q as the first question", itemID)
	return nil
}

func wrongOption(q Question) string {
	for _, o := range q.Options {
		if o != q.Item.ID {
			return o
		}
	}
	return ""
}

func TestSession_MasteringFocusItem(t *testing.T) {
	f := newSessionFixture(t, 1)
	ctx := context.Background()

	_ = f.store.PutFocusSet(ctx, 1, entities.CategoryAlphabet, entities.NewFocusSet("B"))
	_ = f.store.PutMasteryCounters(ctx, 1, entities.CategoryAlphabet, entities.MasteryCounters{"B": 2})

	tr := f.startOn(t, 1, entities.CategoryAlphabet, "B")

	res, err := tr.Answer("B")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.Correct || !res.Change.Mastered {
		t.Errorf("expected correct mastered answer, got %+v", res)
	}
	if n := tr.Counters()["B"]; n != 0 {
		t.Errorf("expected counter 0, got %d", n)
	}
	if len(tr.Focus()) != 0 {
		t.Errorf("expected empty focus set, got %v", tr.Focus().IDs())
	}

	f.queue.Close()

	focus, _ := f.store.GetFocusSet(ctx, 1, entities.CategoryAlphabet)
	counters, _ := f.store.GetMasteryCounters(ctx, 1, entities.CategoryAlphabet)
	if len(focus) != 0 {
		t.Errorf("expected stored focus set to be empty, got %v", focus.IDs())
	}
	if counters["B"] != 0 {
		t.Errorf("expected stored counter 0, got %d", counters["B"])
	}
}

func TestSession_AllCorrect(t *testing.T) {
	f := newSessionFixture(t, 2)
	ctx := context.Background()

	tr, err := f.svc.Start(ctx, 9, "Robin", entities.CategoryAnimals)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var result *SessionResult
	for i := 0; i < entities.QuestionsPerSession; i++ {
		q := tr.Question()
		if q.Index != i {
			t.Fatalf("expected question %d, got %d", i, q.Index)
		}

		if _, err := tr.Answer(q.Item.ID); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}

		adv, err := tr.Advance()
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if adv.Completed {
			if i != entities.QuestionsPerSession-1 {
				t.Fatalf("completed early at question %d", i)
			}
			result = adv.Result
		}
	}

	if result == nil {
		t.Fatal("expected session to complete")
	}
	if result.Score != 10 || result.XP != 100 || result.Tier != entities.TierPerfect {
		t.Errorf("unexpected result %+v", result)
	}

	if _, err := tr.Advance(); !errors.Is(err, entities.ErrSessionComplete) {
		t.Errorf("expected ErrSessionComplete, got %v", err)
	}
	if _, err := f.svc.Get(tr.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected finished session to be released, got %v", err)
	}

	f.queue.Close()

	records, _ := f.store.ListScoreRecords(ctx, 9, entities.CategoryAnimals)
	if len(records) != 1 {
		t.Fatalf("expected exactly one score record, got %d", len(records))
	}
	if records[0].Score != 10 || records[0].Total != 10 {
		t.Errorf("unexpected record %+v", records[0])
	}

	xp, _ := f.store.GetXP(ctx, 9)
	if xp != 100 {
		t.Errorf("expected 100 xp, got %d", xp)
	}

	top, _ := f.store.Leaderboard(ctx, 1)
	if len(top) != 1 || top[0].DisplayName != "Robin" {
		t.Errorf("expected display name to be stored, got %+v", top)
	}
}

func TestSession_IncorrectAddsToFocus(t *testing.T) {
	f := newSessionFixture(t, 3)
	ctx := context.Background()

	tr, err := f.svc.Start(ctx, 4, "Kit", entities.CategoryAnimals)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	q := tr.Question()
	if _, err := tr.Answer(q.Item.ID); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := tr.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	q = tr.Question()
	res, err := tr.Answer(wrongOption(q))
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	if res.Correct || res.Streak != 0 {
		t.Errorf("expected incorrect answer with streak 0, got %+v", res)
	}
	if !tr.Focus().Contains(q.Item.ID) {
		t.Errorf("expected %q in focus set", q.Item.ID)
	}
	if n, ok := tr.Counters()[q.Item.ID]; !ok || n != 0 {
		t.Errorf("expected counter 0, got %d (present %v)", n, ok)
	}

	f.queue.Close()

	focus, _ := f.store.GetFocusSet(ctx, 4, entities.CategoryAnimals)
	if !focus.Contains(q.Item.ID) {
		t.Errorf("expected stored focus set to contain %q", q.Item.ID)
	}
}

func TestSession_AdvanceWithoutAnswer(t *testing.T) {
	f := newSessionFixture(t, 4)
	defer f.queue.Close()

	tr, err := f.svc.Start(context.Background(), 1, "Sam", entities.CategoryAnimals)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	q := tr.Question()
	_, _ = tr.Answer(wrongOption(q))
	_, _ = tr.Advance()

	before := tr.Session()
	focusBefore := tr.Focus()

	if _, err := tr.Advance(); !errors.Is(err, entities.ErrNotAnswered) {
		t.Fatalf("expected ErrNotAnswered, got %v", err)
	}

	after := tr.Session()
	if after.Score != before.Score || after.Streak != before.Streak || after.QuestionIndex != before.QuestionIndex {
		t.Errorf("session changed: before %+v after %+v", before, after)
	}
	if len(tr.Focus()) != len(focusBefore) {
		t.Errorf("focus set changed: before %v after %v", focusBefore.IDs(), tr.Focus().IDs())
	}
}

func TestSession_SecondAnswerIgnored(t *testing.T) {
	f := newSessionFixture(t, 5)
	defer f.queue.Close()

	tr, err := f.svc.Start(context.Background(), 1, "Sam", entities.CategoryAnimals)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	q := tr.Question()
	_, _ = tr.Answer(wrongOption(q))

	if _, err := tr.Answer(q.Item.ID); !errors.Is(err, entities.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if s := tr.Session(); s.Score != 0 {
		t.Errorf("expected score 0, got %d", s.Score)
	}
}

func TestSession_RandomPlayKeepsInvariants(t *testing.T) {
	f := newSessionFixture(t, 6)
	defer f.queue.Close()

	answers := rand.New(rand.NewSource(99))

	for round := 0; round < 20; round++ {
		tr, err := f.svc.Start(context.Background(), 2, "Sam", entities.CategoryAnimals)
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		for {
			q := tr.Question()
			if _, err := tr.AnswerIndex(answers.Intn(len(q.Options))); err != nil {
				t.Fatalf("answer: %v", err)
			}

			s := tr.Session()
			if s.Score < 0 || s.Score > s.QuestionIndex+1 || s.QuestionIndex+1 > entities.QuestionsPerSession {
				t.Fatalf("invariant broken: score %d index %d", s.Score, s.QuestionIndex)
			}
			for id, n := range tr.Counters() {
				if n < 0 || n >= entities.MasteryThreshold {
					t.Fatalf("counter for %s out of range: %d", id, n)
				}
			}

			adv, err := tr.Advance()
			if err != nil {
				t.Fatalf("advance: %v", err)
			}
			if adv.Completed {
				break
			}
		}
	}
}

func TestSession_AnonymousWritesNothing(t *testing.T) {
	f := newSessionFixture(t, 7)
	ctx := context.Background()

	tr, err := f.svc.Start(ctx, 0, "", entities.CategoryAnimals)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for {
		q := tr.Question()
		_, _ = tr.Answer(wrongOption(q))
		adv, err := tr.Advance()
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if adv.Completed {
			break
		}
	}
	f.queue.Close()

	focus, _ := f.store.GetFocusSet(ctx, 0, entities.CategoryAnimals)
	records, _ := f.store.ListScoreRecords(ctx, 0, entities.CategoryAnimals)
	if len(focus) != 0 || len(records) != 0 {
		t.Errorf("expected nothing stored, got focus %v records %v", focus.IDs(), records)
	}
}

func TestSession_StoreFailuresDoNotBlockPlay(t *testing.T) {
	f := newSessionFixture(t, 8)
	f.queue.Close()
	f.mastery = failingMastery{}
	f.build(8)
	defer f.queue.Close()

	tr, err := f.svc.Start(context.Background(), 1, "Sam", entities.CategoryAnimals)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(tr.Focus()) != 0 {
		t.Errorf("expected empty focus set after failed load")
	}

	q := tr.Question()
	if _, err := tr.Answer(wrongOption(q)); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := tr.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
}

func TestSessionService_StartErrors(t *testing.T) {
	f := newSessionFixture(t, 9)
	defer f.queue.Close()

	if _, err := f.svc.Start(context.Background(), 1, "Sam", "shapes"); !errors.Is(err, entities.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := f.svc.Start(context.Background(), 1, "Sam", entities.CategoryColours); err == nil {
		t.Error("expected error for category without a bank")
	}
}

func TestSessionService_NewSessionReplacesOld(t *testing.T) {
	f := newSessionFixture(t, 10)
	defer f.queue.Close()

	first, _ := f.svc.Start(context.Background(), 1, "Sam", entities.CategoryAnimals)
	second, _ := f.svc.Start(context.Background(), 1, "Sam", entities.CategoryAlphabet)

	if _, err := f.svc.Get(first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected first session to be gone, got %v", err)
	}
	if got, err := f.svc.Get(second.ID); err != nil || got != second {
		t.Errorf("expected second session, got %v %v", got, err)
	}
}

func TestSession_ExpireIdle(t *testing.T) {
	f := newSessionFixture(t, 6)
	defer f.queue.Close()

	tr, err := f.svc.Start(context.Background(), 1, "Sam", entities.CategoryAnimals)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if n := f.svc.ExpireIdle(time.Hour); n != 0 {
		t.Fatalf("expected fresh session to survive, %d expired", n)
	}

	time.Sleep(20 * time.Millisecond)
	if n := f.svc.ExpireIdle(5 * time.Millisecond); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if _, err := f.svc.Get(tr.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	if _, err := f.svc.Start(context.Background(), 1, "Sam", entities.CategoryAnimals); err != nil {
		t.Errorf("expected a new session after expiry: %v", err)
	}
}
