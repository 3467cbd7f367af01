// Package workflow drives the conversation side of the bot: translation
// requests, the teach-me and correction flows, and the slash commands.
//
// Every inbound event flows through [Workflow.HandleMessage], which wraps
// the transport's send function in a one-shot [Latch]. Whatever branch
// handles the event, at most one reply goes out; a redelivered event is
// recognised by the [Dedup] set and produces none.
package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pkodial/tulubot/internal/cache"
	"github.com/pkodial/tulubot/internal/engine"
	"github.com/pkodial/tulubot/internal/format"
	"github.com/pkodial/tulubot/internal/lexicon"
	"github.com/pkodial/tulubot/internal/observe"
	"github.com/pkodial/tulubot/internal/store"
)

// minContributionRunes is the shortest contribution accepted as a real word.
const minContributionRunes = 2

// recentLimit is how many rows /recent shows.
const recentLimit = 5

// Event is one inbound chat message.
type Event struct {
	UserID    string
	ChatID    string
	MessageID string
	Text      string
	At        time.Time
}

// Resolver produces translations. Satisfied by [engine.Engine].
type Resolver interface {
	Resolve(ctx context.Context, text, userID string) engine.Result
}

// Workflow routes inbound events to the right conversation branch.
type Workflow struct {
	resolver Resolver
	states   *States
	dedup    *Dedup
	taught   *cache.TaughtCache
	lex      *lexicon.Lexicon
	st       store.Store
	metrics  *observe.Metrics
}

// New creates a [Workflow]. metrics may be nil to use
// [observe.DefaultMetrics].
func New(resolver Resolver, states *States, dedup *Dedup, taught *cache.TaughtCache, lex *lexicon.Lexicon, st store.Store, metrics *observe.Metrics) *Workflow {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Workflow{
		resolver: resolver,
		states:   states,
		dedup:    dedup,
		taught:   taught,
		lex:      lex,
		st:       st,
		metrics:  metrics,
	}
}

// States exposes the conversation tracker, for wiring the engine's teach-me
// callback and the background sweeper.
func (w *Workflow) States() *States {
	return w.states
}

// HandleMessage processes one inbound event. It sends at most one reply
// through send, and none for duplicate deliveries.
func (w *Workflow) HandleMessage(ctx context.Context, ev Event, send ReplyFunc) {
	latch := NewLatch(send)
	log := observe.Logger(ctx)

	if w.dedup.Seen(ev.ChatID + ":" + ev.MessageID) {
		log.Debug("dropping duplicate delivery", "chat", ev.ChatID, "message", ev.MessageID)
		return
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		w.handleCommand(ctx, ev, text, latch)
		return
	}

	if st, ok := w.states.Get(ev.UserID); ok {
		w.completePending(ctx, ev, st, text, latch)
		return
	}

	r := w.resolver.Resolve(ctx, text, ev.UserID)
	if r.Found {
		w.reply(ctx, latch, "translation", format.Translation(text, r))
		return
	}
	w.reply(ctx, latch, "teach_prompt", format.TeachPrompt(text, r.Suggestions))
}

// completePending consumes a contribution for the user's open conversation.
func (w *Workflow) completePending(ctx context.Context, ev Event, st UserState, contribution string, latch *Latch) {
	if len([]rune(contribution)) < minContributionRunes {
		// State stays open so the user can try again.
		w.reply(ctx, latch, "validation", format.TooShort(contribution))
		return
	}

	now := time.Now().UTC()
	entry := store.TaughtEntry{
		English:     st.English,
		Tulu:        contribution,
		Contributor: ev.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if st.Mode == ModeCorrecting {
		if existing, err := w.st.GetTaught(ctx, st.English); err == nil {
			entry.CreatedAt = existing.CreatedAt
			entry.UsageCount = existing.UsageCount + 1
			entry.Votes = existing.Votes
		}
	}

	if err := w.taught.Put(ctx, entry); err != nil {
		observe.Logger(ctx).Error("storing contribution failed", "key", st.English, "err", err)
		// State stays open; nothing was persisted.
		w.reply(ctx, latch, "error", format.SaveFailed())
		return
	}

	w.states.Clear(ev.UserID)
	w.metrics.WordsTaught.Add(ctx, 1)

	if st.Mode == ModeCorrecting {
		w.reply(ctx, latch, "confirmation", format.CorrectionConfirmation(st.English, st.OldTranslation, contribution))
		return
	}
	w.reply(ctx, latch, "confirmation", format.TaughtConfirmation(st.English, contribution))
}

// handleCommand dispatches a slash command.
func (w *Workflow) handleCommand(ctx context.Context, ev Event, text string, latch *Latch) {
	fields := strings.Fields(text)
	command := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	args := fields[1:]

	switch command {
	case "teach":
		w.commandTeach(ctx, ev, args, latch)
	case "correct":
		w.commandCorrect(ctx, ev, args, latch)
	case "cancel", "skip":
		w.commandCancel(ctx, ev, latch)
	case "stats":
		w.commandStats(ctx, latch)
	case "recent":
		w.commandRecent(ctx, latch)
	case "forget":
		w.commandForget(ctx, args, latch)
	case "words":
		w.commandWords(ctx, args, latch)
	default:
		w.reply(ctx, latch, "help", format.UnknownCommand())
	}
}

// commandTeach stores a contribution directly, without the conversational
// round trip: /teach <english> <tulu>.
func (w *Workflow) commandTeach(ctx context.Context, ev Event, args []string, latch *Latch) {
	if len(args) < 2 {
		w.reply(ctx, latch, "help", format.CommandUsage("/teach <english> <tulu>"))
		return
	}

	english := lexicon.Normalize(args[0])
	tulu := strings.TrimSpace(strings.Join(args[1:], " "))

	if w.lex.Contains(english) {
		w.reply(ctx, latch, "validation", format.BaseImmutable(english))
		return
	}
	if len([]rune(tulu)) < minContributionRunes {
		w.reply(ctx, latch, "validation", format.TooShort(tulu))
		return
	}

	now := time.Now().UTC()
	entry := store.TaughtEntry{
		English:     english,
		Tulu:        tulu,
		Contributor: ev.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// An overwrite keeps the entry's history and counts as one more use,
	// same as a conversational correction.
	if existing, err := w.st.GetTaught(ctx, english); err == nil {
		entry.CreatedAt = existing.CreatedAt
		entry.UsageCount = existing.UsageCount + 1
		entry.Votes = existing.Votes
	}

	if err := w.taught.Put(ctx, entry); err != nil {
		observe.Logger(ctx).Error("storing contribution failed", "key", english, "err", err)
		w.reply(ctx, latch, "error", format.SaveFailed())
		return
	}

	w.metrics.WordsTaught.Add(ctx, 1)
	w.reply(ctx, latch, "confirmation", format.TaughtConfirmation(english, tulu))
}

// commandCorrect opens a correction conversation: /correct <english>.
func (w *Workflow) commandCorrect(ctx context.Context, ev Event, args []string, latch *Latch) {
	if len(args) == 0 {
		w.reply(ctx, latch, "help", format.CommandUsage("/correct <english>"))
		return
	}

	english := lexicon.Normalize(strings.Join(args, " "))

	// The core dictionary is immutable: corrections to it are refused
	// rather than queued.
	if w.lex.Contains(english) {
		w.reply(ctx, latch, "validation", format.BaseImmutable(english))
		return
	}

	existing, err := w.st.GetTaught(ctx, english)
	if err == nil {
		w.states.BeginCorrection(ev.UserID, english, existing.Tulu)
		w.reply(ctx, latch, "correction_prompt", format.CorrectionPrompt(english, existing.Tulu))
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		observe.Logger(ctx).Error("correction lookup failed", "key", english, "err", err)
		w.reply(ctx, latch, "error", format.SaveFailed())
		return
	}

	// A machine-cached translation is correctable too: the contribution
	// lands in the taught table and shadows the cached row from then on.
	cached, err := w.st.GetAPICache(ctx, english)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.reply(ctx, latch, "validation", format.NothingToCorrect(english))
			return
		}
		observe.Logger(ctx).Error("correction lookup failed", "key", english, "err", err)
		w.reply(ctx, latch, "error", format.SaveFailed())
		return
	}

	w.states.BeginCorrection(ev.UserID, english, cached.Translation)
	w.reply(ctx, latch, "correction_prompt", format.CorrectionPrompt(english, cached.Translation))
}

// commandCancel abandons the user's pending conversation.
func (w *Workflow) commandCancel(ctx context.Context, ev Event, latch *Latch) {
	if w.states.Clear(ev.UserID) {
		w.reply(ctx, latch, "confirmation", format.Cancelled())
		return
	}
	w.reply(ctx, latch, "confirmation", format.NothingToCancel())
}

// commandStats reports the dictionary counters.
func (w *Workflow) commandStats(ctx context.Context, latch *Latch) {
	log := observe.Logger(ctx)

	taughtCount, err := w.st.Count(ctx, store.TableTaught)
	if err != nil {
		log.Warn("counting taught words failed", "err", err)
	}
	cachedCount, err := w.st.Count(ctx, store.TableAPICache)
	if err != nil {
		log.Warn("counting cached translations failed", "err", err)
	}

	w.reply(ctx, latch, "stats", format.Stats(w.lex.Size(), taughtCount, cachedCount))
}

// commandRecent lists the latest community contributions.
func (w *Workflow) commandRecent(ctx context.Context, latch *Latch) {
	records, err := w.st.ListRecent(ctx, store.TableTaught, recentLimit)
	if err != nil {
		observe.Logger(ctx).Warn("listing recent contributions failed", "err", err)
		records = nil
	}

	rows := make([]format.RecentRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, format.RecentRow{
			English:     r.Key,
			Tulu:        r.Value,
			Contributor: r.Source,
		})
	}
	w.reply(ctx, latch, "recent", format.Recent(rows))
}

// commandForget deletes a taught entry: /forget <english>.
func (w *Workflow) commandForget(ctx context.Context, args []string, latch *Latch) {
	if len(args) == 0 {
		w.reply(ctx, latch, "help", format.CommandUsage("/forget <english>"))
		return
	}

	english := lexicon.Normalize(strings.Join(args, " "))
	if err := w.taught.Delete(ctx, english); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.reply(ctx, latch, "validation", format.NotTaught(english))
			return
		}
		observe.Logger(ctx).Error("forgetting taught entry failed", "key", english, "err", err)
		w.reply(ctx, latch, "error", format.SaveFailed())
		return
	}
	w.reply(ctx, latch, "confirmation", format.Forgotten(english))
}

// commandWords lists the core dictionary by category: /words <category>.
func (w *Workflow) commandWords(ctx context.Context, args []string, latch *Latch) {
	if len(args) == 0 {
		w.reply(ctx, latch, "help", format.CommandUsage("/words <category>"))
		return
	}

	c := lexicon.Category(lexicon.Normalize(args[0]))
	if !c.IsValid() {
		w.reply(ctx, latch, "validation", format.UnknownCategory(string(c), lexicon.Categories()))
		return
	}
	w.reply(ctx, latch, "words", format.Words(c, w.lex.ByCategory(c)))
}

// reply fires the latch and records the outcome.
func (w *Workflow) reply(ctx context.Context, latch *Latch, kind, text string) {
	fired, err := latch.Reply(text)
	if err != nil {
		observe.Logger(ctx).Error("sending reply failed", "kind", kind, "err", err)
		return
	}
	if fired {
		w.metrics.RecordReply(ctx, kind)
	}
}
