// Package session owns the state of a card review session: the card
// order, the review cursor, flip state, the add/edit form, and the
// orchestration that keeps all of it consistent with the remote card
// service as the signed-in user changes.
package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/card"
	"tableflip.dev/flip/pkg/store"
)

// Mode is the top-level state of the session.
type Mode int

const (
	SignedOut Mode = iota
	Loading
	Browsing
	Grid
)

func (m Mode) String() string {
	switch m {
	case SignedOut:
		return "signed-out"
	case Loading:
		return "loading"
	case Browsing:
		return "browsing"
	case Grid:
		return "grid"
	}
	return "unknown"
}

// ErrPending reports that a remote mutation was refused because another
// one is still in flight. The caller may re-invoke once it settles.
var ErrPending = errors.New("session: another change is still in flight")

// FormState is the add/edit overlay. Editing means the drafts belong to
// the card under the cursor; otherwise a new card is being composed.
type FormState struct {
	Open    bool
	Editing bool
	Front   string
	Back    string
}

// Snapshot is a read-only copy of the session handed to views. Views
// never mutate session state directly; they issue intents.
type Snapshot struct {
	Mode        Mode
	User        *auth.User
	Cards       []card.Card
	Index       int
	Flipped     bool
	FlippedByID map[string]bool
	Form        FormState
	Busy        bool
	Err         error
}

// Current returns the card under the cursor, or nil when empty.
func (s Snapshot) Current() *card.Card {
	if len(s.Cards) == 0 {
		return nil
	}
	return &s.Cards[s.Index]
}

// Controller is the single owner of session state. All mutation goes
// through its operations; remote calls complete before local state is
// touched, so a failed call leaves the session exactly as it was.
type Controller struct {
	provider auth.Provider
	remote   store.Remote

	mu          sync.Mutex
	mode        Mode
	user        *auth.User
	gen         uint64 // bumped on every user transition; stale completions are dropped
	cards       []card.Card
	index       int
	flipped     bool
	flippedByID map[string]bool
	form        FormState
	busy        bool // one remote mutation outstanding at a time
	lastErr     error

	onChange func()
	onError  func(error)
	rng      *rand.Rand

	cancelWatch func()
}

// New wires a controller to its identity source and card store. The
// provider's current user is applied immediately; a signed-in user
// triggers the initial card load before New returns.
func New(provider auth.Provider, remote store.Remote) *Controller {
	c := &Controller{
		provider:    provider,
		remote:      remote,
		mode:        SignedOut,
		flippedByID: make(map[string]bool),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.cancelWatch = provider.OnUserChanged(c.handleUser)
	return c
}

// Close detaches the controller from the auth provider.
func (c *Controller) Close() {
	if c.cancelWatch != nil {
		c.cancelWatch()
		c.cancelWatch = nil
	}
}

// OnChange registers a callback invoked after every state change.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// OnError registers the error side channel. Operations never return
// errors; failures land here and in LastError.
func (c *Controller) OnError(fn func(error)) {
	c.mu.Lock()
	c.onError = fn
	c.mu.Unlock()
}

// LastError returns the most recent reported error, if any.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError resets the error side channel.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

// Snapshot returns a deep copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Mode:    c.mode,
		Index:   c.index,
		Flipped: c.flipped,
		Form:    c.form,
		Busy:    c.busy,
		Err:     c.lastErr,
	}
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	s.Cards = make([]card.Card, len(c.cards))
	copy(s.Cards, c.cards)
	s.FlippedByID = make(map[string]bool, len(c.flippedByID))
	for id, f := range c.flippedByID {
		s.FlippedByID[id] = f
	}
	return s
}

// SignIn delegates to the auth provider. State changes only through the
// resulting user-change notification; failures go to the error channel.
func (c *Controller) SignIn(ctx context.Context) {
	if err := c.provider.SignIn(ctx); err != nil {
		c.report(err)
	}
}

// SignOut delegates to the auth provider.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.provider.SignOut(ctx); err != nil {
		c.report(err)
	}
}

// Flip toggles the visible side of the current card. Single-card mode only.
func (c *Controller) Flip() {
	c.mu.Lock()
	if c.mode != Browsing || len(c.cards) == 0 {
		c.mu.Unlock()
		return
	}
	c.flipped = !c.flipped
	c.mu.Unlock()
	c.changed()
}

// ToggleFlip toggles the flip state of one card in grid mode. A card
// never flipped before counts as face down, so its first toggle shows
// the back.
func (c *Controller) ToggleFlip(cardID string) {
	c.mu.Lock()
	if c.mode != Grid {
		c.mu.Unlock()
		return
	}
	c.flippedByID[cardID] = !c.flippedByID[cardID]
	c.mu.Unlock()
	c.changed()
}

// Next advances the cursor, wrapping past the last card.
func (c *Controller) Next() { c.move(1) }

// Prev retreats the cursor, wrapping past the first card.
func (c *Controller) Prev() { c.move(-1) }

func (c *Controller) move(delta int) {
	c.mu.Lock()
	if c.mode != Browsing || len(c.cards) == 0 || c.form.Open {
		c.mu.Unlock()
		return
	}
	n := len(c.cards)
	c.index = ((c.index+delta)%n + n) % n
	c.flipped = false
	c.mu.Unlock()
	c.changed()
}

// Shuffle rearranges the review order with a uniform Fisher–Yates
// permutation and rewinds the cursor. Order is session-local; the
// remote store is not touched.
func (c *Controller) Shuffle() {
	c.mu.Lock()
	if (c.mode != Browsing && c.mode != Grid) || len(c.cards) == 0 || c.form.Open {
		c.mu.Unlock()
		return
	}
	c.rng.Shuffle(len(c.cards), func(i, j int) {
		c.cards[i], c.cards[j] = c.cards[j], c.cards[i]
	})
	c.index = 0
	c.flipped = false
	c.mu.Unlock()
	c.changed()
}

// ToggleGrid switches between single-card review and the grid. Per-card
// grid flips survive the round trip; the single-card flip does not.
func (c *Controller) ToggleGrid() {
	c.mu.Lock()
	switch {
	case c.mode == Browsing && !c.form.Open:
		c.mode = Grid
		c.flipped = false
	case c.mode == Grid:
		c.mode = Browsing
		c.flipped = false
	default:
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.changed()
}

// OpenAddForm opens the form with empty drafts for a new card.
func (c *Controller) OpenAddForm() {
	c.mu.Lock()
	if c.mode != Browsing || c.form.Open {
		c.mu.Unlock()
		return
	}
	c.form = FormState{Open: true}
	c.mu.Unlock()
	c.changed()
}

// OpenEditForm opens the form seeded from the card under the cursor.
// Refused when there is nothing to edit.
func (c *Controller) OpenEditForm() {
	c.mu.Lock()
	if c.mode != Browsing || c.form.Open || len(c.cards) == 0 {
		c.mu.Unlock()
		return
	}
	cur := c.cards[c.index]
	c.form = FormState{Open: true, Editing: true, Front: cur.Front, Back: cur.Back}
	c.mu.Unlock()
	c.changed()
}

// SetDrafts replaces the draft text while the form is open.
func (c *Controller) SetDrafts(front, back string) {
	c.mu.Lock()
	if !c.form.Open {
		c.mu.Unlock()
		return
	}
	c.form.Front = front
	c.form.Back = back
	c.mu.Unlock()
	c.changed()
}

// CancelForm closes the form and discards the drafts.
func (c *Controller) CancelForm() {
	c.mu.Lock()
	if !c.form.Open {
		c.mu.Unlock()
		return
	}
	c.form = FormState{}
	c.mu.Unlock()
	c.changed()
}

// SubmitForm commits the drafts. Create appends the stored card and
// moves the cursor to it; edit replaces the card in place. Empty drafts
// are a validation no-op. The drafts survive a store failure so the
// user can retry without retyping.
func (c *Controller) SubmitForm(ctx context.Context) {
	c.mu.Lock()
	if c.mode != Browsing || !c.form.Open || c.user == nil {
		c.mu.Unlock()
		return
	}
	draft := card.Draft{Front: c.form.Front, Back: c.form.Back}
	if !draft.Valid() {
		c.mu.Unlock()
		return
	}
	if c.busy {
		c.mu.Unlock()
		c.report(ErrPending)
		return
	}
	c.busy = true
	gen := c.gen
	userID := c.user.ID
	editing := c.form.Editing
	targetID := ""
	if editing {
		targetID = c.cards[c.index].ID
	}
	c.mu.Unlock()
	c.changed()

	var created *card.Card
	var err error
	if editing {
		err = c.remote.Update(ctx, userID, targetID, draft)
	} else {
		created, err = c.remote.Create(ctx, userID, draft)
	}

	c.mu.Lock()
	if c.gen != gen {
		// User changed while the call was in flight; the session this
		// result belongs to no longer exists.
		c.mu.Unlock()
		return
	}
	c.busy = false
	if err != nil {
		c.mu.Unlock()
		c.report(err)
		return
	}
	if editing {
		for i := range c.cards {
			if c.cards[i].ID == targetID {
				c.cards[i].Front = draft.Front
				c.cards[i].Back = draft.Back
				break
			}
		}
	} else {
		c.cards = append(c.cards, *created)
		c.index = len(c.cards) - 1
		c.flipped = false
	}
	c.form = FormState{}
	c.mu.Unlock()
	c.changed()
}

// DeleteCurrent removes the card under the cursor. The caller supplies
// the user's yes/no confirmation; without it this is a no-op.
func (c *Controller) DeleteCurrent(ctx context.Context, confirmed bool) {
	c.mu.Lock()
	if !confirmed || c.mode != Browsing || c.form.Open || len(c.cards) == 0 || c.user == nil {
		c.mu.Unlock()
		return
	}
	if c.busy {
		c.mu.Unlock()
		c.report(ErrPending)
		return
	}
	c.busy = true
	gen := c.gen
	userID := c.user.ID
	targetID := c.cards[c.index].ID
	c.mu.Unlock()
	c.changed()

	err := c.remote.Delete(ctx, userID, targetID)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.busy = false
	if err != nil {
		c.mu.Unlock()
		c.report(err)
		return
	}
	kept := c.cards[:0]
	for _, cc := range c.cards {
		if cc.ID != targetID {
			kept = append(kept, cc)
		}
	}
	c.cards = kept
	delete(c.flippedByID, targetID)
	c.index = 0
	c.flipped = false
	c.mu.Unlock()
	c.changed()
}

// handleUser applies an auth provider notification. Any in-flight
// remote completion for the previous user is invalidated by the
// generation bump.
func (c *Controller) handleUser(u *auth.User) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.cards = nil
	c.index = 0
	c.flipped = false
	c.flippedByID = make(map[string]bool)
	c.form = FormState{}
	c.busy = false
	c.lastErr = nil

	if u == nil {
		c.user = nil
		c.mode = SignedOut
		c.mu.Unlock()
		c.changed()
		return
	}
	uu := *u
	c.user = &uu
	c.mode = Loading
	c.mu.Unlock()
	c.changed()

	cards, err := c.remote.List(context.Background(), uu.ID)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.mode = Browsing
	if err != nil {
		c.cards = nil
		c.mu.Unlock()
		c.report(err)
		return
	}
	c.cards = cards
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Controller) report(err error) {
	c.mu.Lock()
	c.lastErr = err
	fn := c.onError
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
	c.changed()
}
