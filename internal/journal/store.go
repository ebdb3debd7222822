// Package journal implements the in-memory journal store: an ordered list of
// entries with observable state and a one-shot effect channel.
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/starford/chroniclelens/internal/apperr"
	"github.com/starford/chroniclelens/internal/effect"
	"github.com/starford/chroniclelens/internal/models"
)

// Effect messages.
const (
	msgAdded    = "Journal added"
	msgSaved    = "Journal saved successfully"
	msgAddFail  = "Failed to add journal: "
	msgSaveFail = "Failed to save journal: "
	msgDeleted  = "%d journal(s) deleted"
)

// Store is the journal state container.
//
// Concurrency model: mu guards state and bookkeeping. Every mutation copies
// the current State, changes the copy and swaps it in whole. emitMu is taken
// before mu by every mutation and held while subscribers are notified, so
// subscribers observe replacements in the order they were committed. Reads
// take only mu and never wait on the simulated add latency.
type Store struct {
	logger    *slog.Logger
	clock     func() time.Time
	failure   FailureFunc
	placement Placement
	effects   *effect.Queue

	emitMu sync.Mutex

	mu       sync.Mutex
	state    State
	latency  time.Duration
	nextSeq  int
	cancel   context.CancelFunc
	inFlight chan struct{}
	subs     []subscriber
	subSeq   uint64
	closed   bool
}

type subscriber struct {
	id uint64
	fn func(State)
}

// change collects effects raised while a mutation is applied.
type change struct {
	effects []effect.Effect
}

func (c *change) emit(e effect.Effect) {
	c.effects = append(c.effects, e)
}

// New creates a store.
func New(opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.entries == nil {
		o.entries = []models.JournalEntry{}
	}

	return &Store{
		logger:    o.logger,
		clock:     o.clock,
		failure:   o.failure,
		placement: o.placement,
		effects:   effect.NewQueue(o.effectCap),
		latency:   o.latency,
		nextSeq:   firstSequence(o.entries),
		state: State{
			Entries:  o.entries,
			Selected: []string{},
			Sort:     NewestFirst,
			Mood:     DefaultMood,
		},
	}
}

// update applies fn to a copy of the current state. When fn reports a
// change the copy replaces the state and is published to subscribers.
// Effects collected by fn are emitted afterwards either way. Closed stores
// ignore updates.
func (s *Store) update(fn func(st *State, c *change) bool) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	next := s.state
	var c change
	changed := fn(&next, &c)
	var subs []subscriber
	if changed {
		s.state = next
		subs = slices.Clone(s.subs)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
	for _, e := range c.effects {
		s.effects.Emit(e)
	}
	return changed
}

// GetAll returns a copy of the entries in list order.
func (s *Store) GetAll() []models.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Entries)
}

// GetByID looks up an entry. The boolean is false when id is not present.
func (s *Store) GetByID(id string) (models.JournalEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.state.Entries, id)
	if i < 0 {
		return models.JournalEntry{}, false
	}
	return s.state.Entries[i], true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn for state replacements. fn is invoked immediately
// with the current state and then after every replacement, in order. fn
// must not call mutating store methods synchronously. The returned function
// unsubscribes and is safe to call more than once.
func (s *Store) Subscribe(fn func(State)) func() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	snap := s.state
	if s.closed {
		s.mu.Unlock()
		fn(snap)
		return func() {}
	}
	s.subSeq++
	id := s.subSeq
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
		})
	}
}

// Add starts a simulated add. It reports false, doing nothing, while another
// write is in flight or the store is closed. The new entry is committed
// after the configured latency unless ctx is cancelled or the store is
// closed first.
func (s *Store) Add(ctx context.Context) bool {
	_, err := s.StartAdd(ctx)
	return err == nil
}

// StartAdd is Add returning a handle on the in-flight operation.
func (s *Store) StartAdd(ctx context.Context) (*Pending, error) {
	return s.start(ctx, operation{})
}

// Create validates d and starts adding it as a new entry. It returns an
// error wrapping apperr.ErrValidation for an invalid draft, apperr.ErrBusy
// while another operation is in flight and apperr.ErrClosed after Close.
func (s *Store) Create(ctx context.Context, d Draft) error {
	_, err := s.StartCreate(ctx, d)
	return err
}

// StartCreate is Create returning a handle on the in-flight operation.
func (s *Store) StartCreate(ctx context.Context, d Draft) (*Pending, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.start(ctx, operation{draft: &d})
}

// Replace validates d and starts swapping it in for the entry id. The entry
// keeps its id, creation time and list position. Besides the Create errors
// it returns apperr.ErrNotFound when id is not present.
func (s *Store) Replace(ctx context.Context, id string, d Draft) error {
	_, err := s.StartReplace(ctx, id, d)
	return err
}

// StartReplace is Replace returning a handle on the in-flight operation.
func (s *Store) StartReplace(ctx context.Context, id string, d Draft) (*Pending, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.start(ctx, operation{draft: &d, replaceID: id})
}

// operation describes an in-flight write. A nil draft is a placeholder add.
type operation struct {
	draft     *Draft
	replaceID string
}

func (op operation) failPrefix() string {
	if op.replaceID != "" {
		return msgSaveFail
	}
	return msgAddFail
}

// Pending is the handle on an in-flight add, create or replace.
type Pending struct {
	done  chan struct{}
	entry models.JournalEntry
	err   error
}

// Done is closed once the operation has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result waits for the operation and returns the entry it committed, or the
// reason it committed none: the context error on cancellation,
// apperr.ErrClosed after Close, apperr.ErrNotFound when a replaced entry
// was deleted meanwhile, or the wrapped failure hook error.
func (p *Pending) Result() (models.JournalEntry, error) {
	<-p.done
	return p.entry, p.err
}

func (s *Store) start(ctx context.Context, op operation) (*Pending, error) {
	err := apperr.ErrClosed
	var (
		runCtx  context.Context
		cancel  context.CancelFunc
		p       *Pending
		latency time.Duration
	)

	s.update(func(st *State, _ *change) bool {
		if st.IsLoading {
			err = apperr.ErrBusy
			return false
		}
		if op.replaceID != "" && indexOf(st.Entries, op.replaceID) < 0 {
			err = fmt.Errorf("%w: %s", apperr.ErrNotFound, op.replaceID)
			return false
		}
		err = nil
		st.IsLoading = true
		st.ErrorMessage = ""

		runCtx, cancel = context.WithCancel(ctx)
		p = &Pending{done: make(chan struct{}), err: apperr.ErrClosed}
		s.cancel = cancel
		s.inFlight = p.done
		latency = s.latency
		return true
	})
	if err != nil {
		s.logger.Debug("journal: write rejected", slog.String("error", err.Error()))
		return nil, err
	}

	go s.finish(runCtx, cancel, p, latency, op)
	return p, nil
}

func (s *Store) finish(ctx context.Context, cancel context.CancelFunc, p *Pending, latency time.Duration, op operation) {
	defer close(p.done)
	defer cancel()

	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	var failErr error
	if ctx.Err() == nil && s.failure != nil {
		failErr = s.failure(ctx)
	}

	s.update(func(st *State, c *change) bool {
		s.cancel = nil
		s.inFlight = nil
		st.IsLoading = false

		if ctx.Err() != nil {
			p.err = ctx.Err()
			return true
		}

		pos := -1
		if failErr == nil && op.replaceID != "" {
			if pos = indexOf(st.Entries, op.replaceID); pos < 0 {
				failErr = fmt.Errorf("%w: %s", apperr.ErrNotFound, op.replaceID)
			}
		}
		if failErr != nil {
			msg := op.failPrefix() + failErr.Error()
			st.ErrorMessage = msg
			p.err = fmt.Errorf("%s%w", op.failPrefix(), failErr)
			c.emit(effect.Snackbar(msg))
			return true
		}

		p.err = nil
		switch {
		case op.replaceID != "":
			p.entry = replaced(st.Entries[pos], *op.draft)
			entries := slices.Clone(st.Entries)
			entries[pos] = p.entry
			st.Entries = entries
		default:
			p.entry = s.newEntryLocked(op.draft)
			st.Entries = s.place(st.Entries, p.entry)
		}

		if op.draft == nil {
			c.emit(effect.Toast(msgAdded))
		} else {
			c.emit(effect.Snackbar(msgSaved))
			c.emit(effect.NavigateBack())
		}
		return true
	})

	switch {
	case p.err == nil && op.replaceID != "":
		s.logger.Info("journal: entry replaced", slog.String("id", p.entry.ID))
	case p.err == nil:
		s.logger.Info("journal: entry added", slog.String("id", p.entry.ID))
	case ctx.Err() != nil:
		s.logger.Info("journal: write cancelled", slog.String("error", ctx.Err().Error()))
	default:
		s.logger.Warn("journal: write failed", slog.String("error", p.err.Error()))
	}
}

// replaced builds the full replacement of old from d.
func replaced(old models.JournalEntry, d Draft) models.JournalEntry {
	return models.JournalEntry{
		ID:          old.ID,
		Title:       d.Title,
		Content:     d.Content,
		CreatedAt:   old.CreatedAt,
		Tags:        slices.Clone(d.Tags),
		HasPhoto:    d.HasPhoto,
		HasAudio:    d.HasAudio,
		HasLocation: d.HasLocation,
	}
}

// newEntryLocked mints the next id. Caller holds mu.
func (s *Store) newEntryLocked(draft *Draft) models.JournalEntry {
	id := formatID(s.nextSeq)
	s.nextSeq++

	e := models.JournalEntry{
		ID:        id,
		Title:     "New journal " + id,
		CreatedAt: s.clock(),
	}
	if draft != nil {
		e.Title = draft.Title
		e.Content = draft.Content
		e.Tags = slices.Clone(draft.Tags)
		e.HasPhoto = draft.HasPhoto
		e.HasAudio = draft.HasAudio
		e.HasLocation = draft.HasLocation
	}
	return e
}

func (s *Store) place(entries []models.JournalEntry, e models.JournalEntry) []models.JournalEntry {
	if s.placement == Prepend {
		return append([]models.JournalEntry{e}, entries...)
	}
	return append(slices.Clip(entries), e)
}

// Wait blocks until the in-flight add, create or replace, if any, has
// finished.
func (s *Store) Wait() {
	s.mu.Lock()
	done := s.inFlight
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Delete removes every entry whose id is in ids and returns how many were
// removed. Removed ids leave the selection.
func (s *Store) Delete(ids ...string) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	removed := 0
	s.update(func(st *State, c *change) bool {
		kept := make([]models.JournalEntry, 0, len(st.Entries))
		for _, e := range st.Entries {
			if _, ok := set[e.ID]; ok {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if removed == 0 {
			return false
		}

		selected := make([]string, 0, len(st.Selected))
		for _, id := range st.Selected {
			if _, ok := set[id]; !ok {
				selected = append(selected, id)
			}
		}
		st.Entries = kept
		st.Selected = selected
		c.emit(effect.Snackbar(fmt.Sprintf(msgDeleted, removed)))
		return true
	})

	if removed > 0 {
		s.logger.Info("journal: entries deleted", slog.Int("count", removed))
	}
	return removed
}

// RequestDelete asks the presentation layer to confirm deleting ids, or the
// current selection when ids is empty.
func (s *Store) RequestDelete(ids ...string) {
	s.update(func(st *State, c *change) bool {
		if len(ids) == 0 {
			ids = st.Selected
		}
		if len(ids) > 0 {
			c.emit(effect.DeleteConfirmation(ids))
		}
		return false
	})
}

// ToggleSelection flips the selection mark on id. It reports false when id
// is not in the store.
func (s *Store) ToggleSelection(id string) bool {
	return s.update(func(st *State, _ *change) bool {
		if indexOf(st.Entries, id) < 0 {
			return false
		}
		selected := slices.Clone(st.Selected)
		if i, found := slices.BinarySearch(selected, id); found {
			selected = slices.Delete(selected, i, i+1)
		} else {
			selected = slices.Insert(selected, i, id)
		}
		st.Selected = selected
		return true
	})
}

// ClearSelection leaves selection mode.
func (s *Store) ClearSelection() {
	s.update(func(st *State, _ *change) bool {
		if len(st.Selected) == 0 {
			return false
		}
		st.Selected = []string{}
		return true
	})
}

// Open requests navigation to the detail screen of id. It reports false
// when id is not present.
func (s *Store) Open(id string) bool {
	found := false
	s.update(func(st *State, c *change) bool {
		if indexOf(st.Entries, id) >= 0 {
			found = true
			c.emit(effect.NavigateToDetail(id))
		}
		return false
	})
	return found
}

// Back requests navigation to the previous screen.
func (s *Store) Back() {
	s.emitOnly(effect.NavigateBack())
}

// Toast shows a short notification.
func (s *Store) Toast(msg string) {
	s.emitOnly(effect.Toast(msg))
}

// Snackbar shows a snackbar notification.
func (s *Store) Snackbar(msg string) {
	s.emitOnly(effect.Snackbar(msg))
}

func (s *Store) emitOnly(e effect.Effect) {
	s.update(func(_ *State, c *change) bool {
		c.emit(e)
		return false
	})
}

// SetQuery sets the list search query.
func (s *Store) SetQuery(q string) {
	s.update(func(st *State, _ *change) bool {
		if st.Query == q {
			return false
		}
		st.Query = q
		return true
	})
}

// SetSort sets the list sort order.
func (s *Store) SetSort(order SortOrder) {
	s.update(func(st *State, _ *change) bool {
		if st.Sort == order {
			return false
		}
		st.Sort = order
		return true
	})
}

// Filter returns the entries matching query in the given order.
func (s *Store) Filter(query string, order SortOrder) []models.JournalEntry {
	s.mu.Lock()
	entries := s.state.Entries
	s.mu.Unlock()
	return Filter(entries, query, order)
}

// IncrementCount bumps the home screen counter.
func (s *Store) IncrementCount() {
	s.update(func(st *State, _ *change) bool {
		st.Count++
		return true
	})
}

// SetMood records the selected mood. An empty mood resets it to
// DefaultMood.
func (s *Store) SetMood(mood string) {
	if mood == "" {
		mood = DefaultMood
	}
	s.update(func(st *State, _ *change) bool {
		if st.Mood == mood {
			return false
		}
		st.Mood = mood
		return true
	})
}

// SetLatency changes the simulated add latency. An add already in flight
// keeps its original latency.
func (s *Store) SetLatency(d time.Duration) {
	if d < 0 {
		return
	}
	s.mu.Lock()
	s.latency = d
	s.mu.Unlock()
}

// Latency returns the current simulated add latency.
func (s *Store) Latency() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latency
}

// Observe attaches the caller as the active effect observer. A previous
// observer is detached and its channel closed.
func (s *Store) Observe() (<-chan effect.Effect, func()) {
	return s.effects.Observe()
}

// PendingEffects returns the number of effects waiting for an observer.
func (s *Store) PendingEffects() int {
	return s.effects.Pending()
}

// Close cancels any in-flight add without committing it, drops subscribers
// and closes the effect channel. It is safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	done := s.inFlight
	s.state.IsLoading = false
	s.subs = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.effects.Close()
	s.logger.Debug("journal: store closed")
}
