// Package sync owns the in-memory document and the session state, and
// mediates every read and write between the local slots and the remote
// store. Application code mutates the shared document and calls Commit;
// the engine persists locally right away and coalesces remote writes.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"timekeep/internal/api"
	"timekeep/internal/credentials"
	"timekeep/internal/localstore"
	"timekeep/internal/model"
	"timekeep/internal/utils"
)

// DefaultDebounce is the delay between the last commit and the remote
// write it triggers.
const DefaultDebounce = 500 * time.Millisecond

// Remote abstracts the backend API consumed by the engine.
// *api.Client is the production implementation.
type Remote interface {
	Login(ctx context.Context, email, password string) (*api.Session, error)
	Register(ctx context.Context, name, email, password string) (*api.Session, error)
	FetchDocument(ctx context.Context, token string) ([]byte, error)
	PushDocument(ctx context.Context, token string, doc *model.Document) error
	UpdateName(ctx context.Context, token, name string) (*model.User, error)
	UpdatePassword(ctx context.Context, token, password string) error
	DeleteAccount(ctx context.Context, token string) error
}

// Options configures an Engine.
type Options struct {
	Store  *localstore.Store
	Remote Remote

	// Debounce overrides DefaultDebounce (tests use a short window).
	Debounce time.Duration

	// Notify surfaces non-fatal failures to the user without blocking.
	// nil falls back to the logger.
	Notify func(message string)

	// DisableKeyring skips OS keyring access (tests, headless hosts).
	DisableKeyring bool
}

// Engine is the dual-mode synchronization core.
type Engine struct {
	store      *localstore.Store
	remote     Remote
	debounce   time.Duration
	notify     func(string)
	useKeyring bool

	mu      gosync.Mutex
	doc     *model.Document
	auth    model.AuthState
	timer   *time.Timer
	dirty   bool            // a commit is awaiting its debounced remote write
	pending *model.Document // snapshot taken at commit time, owned by the writer

	inflight gosync.WaitGroup
}

// New creates an engine. Call Resolve before using the document.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil || opts.Remote == nil {
		return nil, fmt.Errorf("store and remote are required")
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	notify := opts.Notify
	if notify == nil {
		notify = func(msg string) { utils.Warnf("%s", msg) }
	}

	return &Engine{
		store:      opts.Store,
		remote:     opts.Remote,
		debounce:   debounce,
		notify:     notify,
		useKeyring: !opts.DisableKeyring,
		doc:        model.DefaultDocument(),
		auth:       model.GuestAuth(),
	}, nil
}

// Document returns the shared in-memory document. Callers mutate it on
// the command goroutine and then call Commit; the engine is the only
// persistence path. The debounced writer works from snapshots taken
// inside Commit, so it never reads the live document concurrently.
func (e *Engine) Document() *model.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Auth returns the current session state.
func (e *Engine) Auth() model.AuthState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auth
}

// Resolve produces the authoritative document and session state before
// anything renders. It never fails: a broken remote degrades to cached
// or default data, downgrading the session to guest as a last resort.
func (e *Engine) Resolve(ctx context.Context) {
	auth := e.store.LoadAuth()
	if auth.Mode == model.AuthModeUser && auth.Token == "" && e.useKeyring && auth.User != nil {
		if token, src := credentials.Resolve(auth.User.Email); token != "" {
			utils.Debugf("restored token from %s", src)
			auth.Token = token
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !auth.IsAuthenticated() {
		e.auth = model.GuestAuth()
		e.loadGuestLocked()
		return
	}

	e.adoptServerStateLocked(ctx, auth)
}

// adoptServerStateLocked runs the fetch-or-cache resolution for an
// authenticated session (startup step 3, also reused by Login).
func (e *Engine) adoptServerStateLocked(ctx context.Context, auth model.AuthState) {
	raw, err := e.remote.FetchDocument(ctx, auth.Token)
	if err == nil {
		doc, merr := model.MergeOntoDefaults(raw)
		if merr == nil {
			e.auth = auth
			e.doc = doc
			if serr := e.store.SaveUserCache(doc); serr != nil {
				utils.Errorf("failed to write user cache: %v", serr)
			}
			return
		}
		err = merr
	}

	utils.Warnf("startup fetch failed: %v", err)

	if cached, ok := e.store.LoadUserCache(); ok {
		e.auth = auth
		e.doc = cached
		e.notify("Server unavailable, using cached data")
		return
	}

	// No usable cache: downgrade to guest and persist the downgrade.
	e.auth = model.GuestAuth()
	if serr := e.store.SaveAuth(e.auth); serr != nil {
		utils.Errorf("failed to persist auth downgrade: %v", serr)
	}
	e.loadGuestLocked()
	e.notify("Could not reach the server, continuing as guest")
}

func (e *Engine) loadGuestLocked() {
	if doc, ok := e.store.LoadGuest(); ok {
		e.doc = doc
		return
	}
	e.doc = model.DefaultDocument()
}

// Commit persists the current document to the slot matching the session
// and, when authenticated, re-arms the debounced remote write. It never
// fails toward the caller; failures surface as notifications.
func (e *Engine) Commit() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.persistLocalLocked()
	if e.auth.IsAuthenticated() {
		e.armRemoteWriteLocked()
	}
}

func (e *Engine) persistLocalLocked() {
	var err error
	if e.auth.IsAuthenticated() {
		err = e.store.SaveUserCache(e.doc)
	} else {
		err = e.store.SaveGuest(e.doc)
	}
	if err != nil {
		utils.Errorf("local save failed: %v", err)
		e.notify("Could not save data locally: " + err.Error())
	}
}

// armRemoteWriteLocked snapshots the committed document, clears any
// pending timer and starts a fresh one. One pending slot per engine:
// the last commit in a burst wins. The writer goroutine only ever sees
// the snapshot, never the live document.
func (e *Engine) armRemoteWriteLocked() {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.dirty = true
	e.pending = e.doc.Clone()
	e.timer = time.AfterFunc(e.debounce, e.flushDebounced)
}

// flushDebounced sends the last committed snapshot. A failed write is
// dropped apart from a notification; the next commit re-sends naturally.
func (e *Engine) flushDebounced() {
	e.mu.Lock()
	if !e.dirty || !e.auth.IsAuthenticated() || e.pending == nil {
		e.dirty = false
		e.pending = nil
		e.mu.Unlock()
		return
	}
	e.dirty = false
	snapshot := e.pending
	e.pending = nil
	token := e.auth.Token
	e.inflight.Add(1)
	e.mu.Unlock()

	defer e.inflight.Done()
	e.push(context.Background(), token, snapshot)
}

func (e *Engine) push(ctx context.Context, token string, doc *model.Document) {
	if err := e.remote.PushDocument(ctx, token, doc); err != nil {
		utils.Warnf("cloud sync failed: %v", err)
		e.notify("Cloud sync failed: " + err.Error())
	}
}

// Flush sends any pending debounced write immediately.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
	}
	snapshot := e.pending
	if !e.dirty || !e.auth.IsAuthenticated() {
		snapshot = nil
	}
	token := e.auth.Token
	e.dirty = false
	e.pending = nil
	e.mu.Unlock()

	if snapshot != nil {
		e.push(ctx, token, snapshot)
	}
}

// Close flushes pending work and waits for in-flight remote writes.
func (e *Engine) Close() {
	e.Flush(context.Background())
	e.inflight.Wait()
}

// Login adopts the account's cloud state, discarding guest edits made in
// this session.
func (e *Engine) Login(ctx context.Context, email, password string) error {
	session, err := e.remote.Login(ctx, email, password)
	if err != nil {
		return err
	}

	auth := model.UserAuth(session.User, session.Token)
	e.saveSession(auth)

	e.mu.Lock()
	e.adoptServerStateLocked(ctx, auth)
	e.mu.Unlock()
	return nil
}

// Register creates the account and seeds it with the data accumulated so
// far, then re-fetches to confirm.
func (e *Engine) Register(ctx context.Context, name, email, password string) error {
	session, err := e.remote.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	auth := model.UserAuth(session.User, session.Token)
	e.saveSession(auth)

	e.mu.Lock()
	seed := e.doc.Clone()
	e.auth = auth
	e.mu.Unlock()

	if err := e.remote.PushDocument(ctx, auth.Token, seed); err != nil {
		return fmt.Errorf("failed to upload local data: %w", err)
	}

	e.mu.Lock()
	e.adoptServerStateLocked(ctx, auth)
	e.mu.Unlock()
	return nil
}

func (e *Engine) saveSession(auth model.AuthState) {
	if err := e.store.SaveAuth(auth); err != nil {
		utils.Errorf("failed to persist session: %v", err)
	}
	if e.useKeyring && auth.User != nil {
		if err := credentials.Store(auth.User.Email, auth.Token); err != nil {
			utils.Debugf("keyring unavailable: %v", err)
		}
	}
}

// Logout returns to guest mode, reloading the guest slot. The user-cache
// slot is kept as the account's last-known-good copy.
func (e *Engine) Logout() {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.dirty = false
	e.pending = nil
	email := ""
	if e.auth.User != nil {
		email = e.auth.User.Email
	}
	e.auth = model.GuestAuth()
	e.loadGuestLocked()
	e.mu.Unlock()

	if err := e.store.SaveAuth(model.GuestAuth()); err != nil {
		utils.Errorf("failed to persist logout: %v", err)
	}
	if e.useKeyring && email != "" {
		if err := credentials.Delete(email); err != nil {
			utils.Debugf("keyring cleanup failed: %v", err)
		}
	}
}

// DeleteAccount removes the account and its server document, then
// behaves like Logout.
func (e *Engine) DeleteAccount(ctx context.Context) error {
	e.mu.Lock()
	auth := e.auth
	e.mu.Unlock()

	if !auth.IsAuthenticated() {
		return utils.ErrNotLoggedIn()
	}
	if err := e.remote.DeleteAccount(ctx, auth.Token); err != nil {
		return err
	}

	if err := e.store.ClearUserCache(); err != nil {
		utils.Warnf("failed to clear user cache: %v", err)
	}
	e.Logout()
	return nil
}

// UpdateName changes the signed-in account's display name.
func (e *Engine) UpdateName(ctx context.Context, name string) error {
	e.mu.Lock()
	auth := e.auth
	e.mu.Unlock()

	if !auth.IsAuthenticated() {
		return utils.ErrNotLoggedIn()
	}
	user, err := e.remote.UpdateName(ctx, auth.Token, name)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.auth.User = user
	auth = e.auth
	e.mu.Unlock()
	if err := e.store.SaveAuth(auth); err != nil {
		utils.Errorf("failed to persist session: %v", err)
	}
	return nil
}

// UpdatePassword changes the signed-in account's password.
func (e *Engine) UpdatePassword(ctx context.Context, password string) error {
	e.mu.Lock()
	auth := e.auth
	e.mu.Unlock()

	if !auth.IsAuthenticated() {
		return utils.ErrNotLoggedIn()
	}
	return e.remote.UpdatePassword(ctx, auth.Token, password)
}
