package workflow_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkodial/tulubot/internal/cache"
	"github.com/pkodial/tulubot/internal/engine"
	"github.com/pkodial/tulubot/internal/lexicon"
	"github.com/pkodial/tulubot/internal/store"
	"github.com/pkodial/tulubot/internal/workflow"
)

// recorder collects outbound replies.
type recorder struct {
	mu      sync.Mutex
	replies []string
}

func (r *recorder) send(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replies)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1]
}

// harness wires a workflow over a real engine and mem store, with no
// external backends.
type harness struct {
	wf *workflow.Workflow
	st store.Store
	rec *recorder
	seq int
}

func newHarness(t *testing.T, stateTTL time.Duration) *harness {
	t.Helper()

	st := store.NewMemStore()
	lex := lexicon.New()
	taught := cache.NewTaughtCache(st, time.Hour)
	api := cache.NewAPICache(st, time.Hour)
	states := workflow.NewStates(stateTTL, nil)

	eng := engine.New(lex, taught, api, nil, st, states, nil)
	wf := workflow.New(eng, states, workflow.NewDedup(time.Hour), taught, lex, st, nil)

	return &harness{wf: wf, st: st, rec: &recorder{}}
}

// say delivers a message from userID and returns the bot's reply (empty
// when none was sent).
func (h *harness) say(t *testing.T, userID, text string) string {
	t.Helper()

	h.seq++
	before := h.rec.count()
	h.wf.HandleMessage(context.Background(), workflow.Event{
		UserID:    userID,
		ChatID:    "c1",
		MessageID: "m" + string(rune('0'+h.seq)),
		Text:      text,
		At:        time.Now(),
	}, h.rec.send)

	if h.rec.count() > before+1 {
		t.Fatalf("more than one reply for %q", text)
	}
	if h.rec.count() == before {
		return ""
	}
	return h.rec.last()
}

func TestTranslationReply(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	reply := h.say(t, "u1", "hello")
	if !strings.Contains(reply, "namaskara") {
		t.Fatalf("reply = %q, want to contain namaskara", reply)
	}
}

func TestTeachFlow(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	ctx := context.Background()

	prompt := h.say(t, "u1", "medicine")
	if !strings.Contains(prompt, "medicine") || !strings.Contains(prompt, "teach") {
		t.Fatalf("teach prompt = %q", prompt)
	}

	confirm := h.say(t, "u1", "maddu")
	if !strings.Contains(confirm, "maddu") {
		t.Fatalf("confirmation = %q", confirm)
	}

	entry, err := h.st.GetTaught(ctx, "medicine")
	if err != nil {
		t.Fatalf("GetTaught: %v", err)
	}
	if entry.Tulu != "maddu" || entry.Contributor != "u1" {
		t.Fatalf("stored entry = %+v", entry)
	}

	// Next ask answers from the taught dictionary.
	answer := h.say(t, "u2", "medicine")
	if !strings.Contains(answer, "maddu") || !strings.Contains(answer, "community") {
		t.Fatalf("taught answer = %q", answer)
	}
}

func TestTeachRejectsTooShort(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)

	h.say(t, "u1", "medicine")
	reply := h.say(t, "u1", "m")
	if !strings.Contains(reply, "too short") {
		t.Fatalf("reply = %q, want too-short rejection", reply)
	}

	// The conversation stays open; a valid retry succeeds.
	confirm := h.say(t, "u1", "maddu")
	if !strings.Contains(confirm, "maddu") {
		t.Fatalf("retry confirmation = %q", confirm)
	}
}

func TestDuplicateDeliveryDropped(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	ev := workflow.Event{
		UserID: "u1", ChatID: "c1", MessageID: "m1",
		Text: "hello", At: time.Now(),
	}

	h.wf.HandleMessage(context.Background(), ev, h.rec.send)
	h.wf.HandleMessage(context.Background(), ev, h.rec.send)

	if n := h.rec.count(); n != 1 {
		t.Fatalf("duplicate delivery produced %d replies, want 1", n)
	}
}

func TestExpiredStateResolvesNormally(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 20*time.Millisecond)

	h.say(t, "u1", "medicine")
	time.Sleep(40 * time.Millisecond)

	// The contribution window has closed; "hello" is a fresh request.
	reply := h.say(t, "u1", "hello")
	if !strings.Contains(reply, "namaskara") {
		t.Fatalf("reply = %q, want translation of hello", reply)
	}
	if _, err := h.st.GetTaught(context.Background(), "medicine"); err == nil {
		t.Fatal("expired conversation still stored a contribution")
	}
}

func TestCorrectionFlow(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	ctx := context.Background()

	h.say(t, "u1", "medicine")
	h.say(t, "u1", "wrong")

	prompt := h.say(t, "u2", "/correct medicine")
	if !strings.Contains(prompt, "wrong") {
		t.Fatalf("correction prompt = %q", prompt)
	}

	confirm := h.say(t, "u2", "maddu")
	if !strings.Contains(confirm, "maddu") {
		t.Fatalf("correction confirmation = %q", confirm)
	}

	entry, err := h.st.GetTaught(ctx, "medicine")
	if err != nil {
		t.Fatalf("GetTaught: %v", err)
	}
	if entry.Tulu != "maddu" || entry.Contributor != "u2" {
		t.Fatalf("corrected entry = %+v", entry)
	}
	if entry.UsageCount != 1 {
		t.Fatalf("UsageCount = %d, want 1 (bumped by correction)", entry.UsageCount)
	}
}

func TestCorrectMachineCachedWord(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	ctx := context.Background()

	// A translation known only to the machine cache is still correctable.
	err := h.st.PutAPICache(ctx, store.APICacheEntry{
		English: "mountain", Translation: "wrongword", Source: "openai",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("PutAPICache: %v", err)
	}

	prompt := h.say(t, "u1", "/correct mountain")
	if !strings.Contains(prompt, "wrongword") {
		t.Fatalf("correction prompt = %q, want cached translation shown", prompt)
	}

	confirm := h.say(t, "u1", "gudde")
	if !strings.Contains(confirm, "gudde") {
		t.Fatalf("correction confirmation = %q", confirm)
	}

	// The contribution lands in the taught table and shadows the cache.
	entry, err := h.st.GetTaught(ctx, "mountain")
	if err != nil {
		t.Fatalf("GetTaught: %v", err)
	}
	if entry.Tulu != "gudde" || entry.Contributor != "u1" {
		t.Fatalf("taught entry = %+v", entry)
	}
	answer := h.say(t, "u2", "mountain")
	if !strings.Contains(answer, "gudde") || !strings.Contains(answer, "community") {
		t.Fatalf("answer after correction = %q", answer)
	}
}

func TestCorrectBaseRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	reply := h.say(t, "u1", "/correct hello")
	if !strings.Contains(reply, "can't be changed") {
		t.Fatalf("reply = %q, want immutability explanation", reply)
	}

	// No correction conversation was opened.
	next := h.say(t, "u1", "hello")
	if !strings.Contains(next, "namaskara") {
		t.Fatalf("follow-up = %q, want normal translation", next)
	}
}

func TestCorrectUnknownWord(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	reply := h.say(t, "u1", "/correct zzznotaword")
	if !strings.Contains(reply, "nothing to correct") {
		t.Fatalf("reply = %q, want nothing-to-correct", reply)
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)

	h.say(t, "u1", "medicine")
	reply := h.say(t, "u1", "/cancel")
	if !strings.Contains(reply, "cancelled") {
		t.Fatalf("reply = %q, want cancellation", reply)
	}

	// The next message is a fresh request, not a contribution.
	next := h.say(t, "u1", "hello")
	if !strings.Contains(next, "namaskara") {
		t.Fatalf("follow-up = %q, want normal translation", next)
	}
}

func TestCancelWithoutPending(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	reply := h.say(t, "u1", "/cancel")
	if !strings.Contains(reply, "Nothing to cancel") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestSkipAlias(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	h.say(t, "u1", "medicine")
	reply := h.say(t, "u1", "/skip")
	if !strings.Contains(reply, "cancelled") {
		t.Fatalf("reply = %q, want cancellation via /skip", reply)
	}
}

func TestTeachCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	ctx := context.Background()

	reply := h.say(t, "u1", "/teach friend doste")
	if !strings.Contains(reply, "doste") {
		t.Fatalf("reply = %q", reply)
	}

	entry, err := h.st.GetTaught(ctx, "friend")
	if err != nil {
		t.Fatalf("GetTaught: %v", err)
	}
	if entry.Tulu != "doste" {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestTeachCommandOverwriteBumpsUsage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	ctx := context.Background()

	h.say(t, "u1", "/teach friend dosta")
	h.say(t, "u2", "/teach friend doste")

	entry, err := h.st.GetTaught(ctx, "friend")
	if err != nil {
		t.Fatalf("GetTaught: %v", err)
	}
	if entry.Tulu != "doste" || entry.Contributor != "u2" {
		t.Fatalf("overwritten entry = %+v", entry)
	}
	if entry.UsageCount != 1 {
		t.Fatalf("UsageCount = %d, want 1 (bumped by overwrite)", entry.UsageCount)
	}
}

func TestTeachCommandBaseRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	reply := h.say(t, "u1", "/teach hello wrongword")
	if !strings.Contains(reply, "can't be changed") {
		t.Fatalf("reply = %q, want immutability explanation", reply)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	h.say(t, "u1", "/teach friend doste")

	reply := h.say(t, "u1", "/stats")
	if !strings.Contains(reply, "Community-taught: 1") {
		t.Fatalf("stats = %q", reply)
	}
}

func TestRecentAndForget(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)

	h.say(t, "u1", "/teach friend doste")
	recent := h.say(t, "u1", "/recent")
	if !strings.Contains(recent, "friend") || !strings.Contains(recent, "doste") {
		t.Fatalf("recent = %q", recent)
	}

	forget := h.say(t, "u1", "/forget friend")
	if !strings.Contains(forget, "Forgot") {
		t.Fatalf("forget = %q", forget)
	}

	again := h.say(t, "u1", "/forget friend")
	if !strings.Contains(again, "isn't in the community dictionary") {
		t.Fatalf("second forget = %q", again)
	}
}

func TestWordsCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)

	reply := h.say(t, "u1", "/words greetings")
	if !strings.Contains(reply, "hello") || !strings.Contains(reply, "namaskara") {
		t.Fatalf("words listing = %q", reply)
	}

	bad := h.say(t, "u1", "/words dances")
	if !strings.Contains(bad, "greetings") {
		t.Fatalf("unknown-category reply = %q, want valid categories listed", bad)
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, time.Hour)
	reply := h.say(t, "u1", "/dance")
	if !strings.Contains(reply, "commands") {
		t.Fatalf("reply = %q, want command listing", reply)
	}
}

func TestLatchOneShot(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	latch := workflow.NewLatch(rec.send)

	fired, err := latch.Reply("first")
	if err != nil || !fired {
		t.Fatalf("first Reply = %v, %v", fired, err)
	}
	fired, err = latch.Reply("second")
	if err != nil || fired {
		t.Fatalf("second Reply = %v, %v; want suppressed", fired, err)
	}
	if rec.count() != 1 || rec.last() != "first" {
		t.Fatalf("replies = %v", rec.replies)
	}
}
