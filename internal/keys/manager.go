// Package keys manages the API-key collection shown on the management screen.
package keys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kiranshivaraju/keyconsole/internal/gateway"
	"github.com/kiranshivaraju/keyconsole/internal/i18n"
	"github.com/kiranshivaraju/keyconsole/internal/notice"
	"github.com/kiranshivaraju/keyconsole/internal/session"
	"github.com/kiranshivaraju/keyconsole/pkg/models"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingName   = errors.New("api key name is required")
	ErrCancelled     = errors.New("operation cancelled")
	ErrNoEditSession = errors.New("no api key is being edited")
)

// DefaultRefreshInterval is the background refresh period.
const DefaultRefreshInterval = 30 * time.Second

// Gateway is the subset of the admin API the manager calls.
type Gateway interface {
	Dashboard(ctx context.Context, token string) (*models.DashboardSummary, error)
	ListKeys(ctx context.Context, token string) ([]models.APIKey, error)
	CreateKey(ctx context.Context, token string, req models.CreateKeyRequest) (*models.APIKey, error)
	GetKey(ctx context.Context, token, id string) (*models.APIKey, error)
	UpdateKey(ctx context.Context, token, id string, req models.UpdateKeyRequest) error
	DeleteKey(ctx context.Context, token, id string) error
}

// Localizer is the localization runtime as seen by the manager.
type Localizer interface {
	Renderer
	Subscribe(fn func(i18n.Language)) (unsubscribe func())
}

// Confirmer asks the operator to approve prompt.
type Confirmer func(prompt string) bool

// CreateResult describes a created key. GeneratedSecret is set only when the
// server chose the secret; it is the single time it is shown in the clear.
type CreateResult struct {
	Key             models.APIKey
	GeneratedSecret string
}

// Option configures a Manager.
type Option func(*Manager)

// WithRefreshInterval sets the background refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// Manager runs lifecycle operations on API keys and owns the rendered table
// state. Safe for concurrent use by the UI and the refresh loop.
type Manager struct {
	guard    *session.Guard
	loc      Localizer
	gw       Gateway
	notices  notice.Notifier
	interval time.Duration

	mu          sync.Mutex
	keys        []models.APIKey
	summary     models.DashboardSummary
	loaded      bool
	seq         uint64
	listSeq     uint64
	summarySeq  uint64
	generation  uint64
	createOpen  bool
	edit        *EditSession
	listeners   map[int]func()
	nextID      int
	unsubscribe func()
}

func NewManager(guard *session.Guard, loc Localizer, gw Gateway, notices notice.Notifier, opts ...Option) *Manager {
	m := &Manager{
		guard:     guard,
		loc:       loc,
		gw:        gw,
		notices:   notices,
		interval:  DefaultRefreshInterval,
		listeners: map[int]func(){},
	}
	for _, opt := range opts {
		opt(m)
	}

	// Cached rows re-render in the new language without a request.
	m.unsubscribe = loc.Subscribe(func(i18n.Language) { m.changed(func() {}) })
	return m
}

// Close detaches the manager from language changes.
func (m *Manager) Close() {
	m.unsubscribe()
}

// OnChange registers fn to be called after every state change.
func (m *Manager) OnChange(fn func()) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// changed applies mutate under the lock, bumps the render generation and
// notifies listeners.
func (m *Manager) changed(mutate func()) {
	m.mu.Lock()
	mutate()
	m.generation++
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// View renders the current snapshot in the active language.
func (m *Manager) View() TableView {
	m.mu.Lock()
	keys := append([]models.APIKey(nil), m.keys...)
	summary := m.summary
	loaded := m.loaded
	gen := m.generation
	m.mu.Unlock()

	v := Render(m.loc, keys, summary)
	v.Loaded = loaded
	v.Generation = gen
	return v
}

// Snapshot returns the last applied list and dashboard responses.
func (m *Manager) Snapshot() ([]models.APIKey, models.DashboardSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.APIKey(nil), m.keys...), m.summary
}

func (m *Manager) token() (string, error) {
	token := m.guard.Token()
	if token == "" {
		return "", session.ErrNoSession
	}
	return token, nil
}

func (m *Manager) nextSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

// List fetches the collection and replaces the table. A response dispatched
// before the last applied one is discarded.
func (m *Manager) List(ctx context.Context) error {
	token, err := m.token()
	if err != nil {
		return err
	}
	seq := m.nextSeq()

	keys, err := m.gw.ListKeys(ctx, token)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return m.unauthorized(ctx, token, err)
		}
		slog.Warn("listing api keys", "error", err)
		m.loadFailed(err)
		return fmt.Errorf("listing api keys: %w", err)
	}

	applied := false
	m.changed(func() {
		if seq < m.listSeq {
			return
		}
		m.keys = keys
		m.listSeq = seq
		m.loaded = true
		applied = true
	})
	if !applied {
		slog.Debug("discarding stale key list", "seq", seq)
	}
	return nil
}

// Dashboard fetches the usage summary.
func (m *Manager) Dashboard(ctx context.Context) error {
	token, err := m.token()
	if err != nil {
		return err
	}
	seq := m.nextSeq()

	summary, err := m.gw.Dashboard(ctx, token)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return m.unauthorized(ctx, token, err)
		}
		slog.Warn("loading dashboard", "error", err)
		m.loadFailed(err)
		return fmt.Errorf("loading dashboard: %w", err)
	}

	m.changed(func() {
		if seq < m.summarySeq {
			return
		}
		m.summary = *summary
		m.summarySeq = seq
	})
	return nil
}

// Refresh runs List and Dashboard concurrently and returns the first error.
func (m *Manager) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return m.List(ctx) })
	g.Go(func() error { return m.Dashboard(ctx) })
	return g.Wait()
}

// OpenCreate shows the create view.
func (m *Manager) OpenCreate() {
	m.changed(func() { m.createOpen = true })
}

// CloseCreate hides the create view.
func (m *Manager) CloseCreate() {
	m.changed(func() { m.createOpen = false })
}

// CreateOpen reports whether the create view is showing.
func (m *Manager) CreateOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createOpen
}

// Create adds a key. An empty secret asks the server to generate one.
func (m *Manager) Create(ctx context.Context, name, secret string) (*CreateResult, error) {
	name = strings.TrimSpace(name)
	secret = strings.TrimSpace(secret)
	if name == "" {
		m.notices.Notify(notice.Error, m.loc.Translate("missing_api_key_name"))
		return nil, ErrMissingName
	}

	token, err := m.token()
	if err != nil {
		return nil, err
	}

	created, err := m.gw.CreateKey(ctx, token, models.CreateKeyRequest{KeyName: name, APIKey: secret})
	if err != nil {
		return nil, m.fail(ctx, token, err, "api_key_creation_failed")
	}

	slog.Info("api key created", "id", created.ID, "name", created.KeyName)
	m.notices.Notify(notice.Success, m.loc.Translate("api_key_created"))
	m.CloseCreate()
	m.followUp(ctx)

	res := &CreateResult{Key: *created}
	if created.APIKey != "" {
		res.GeneratedSecret = created.APIKey
		m.notices.Notify(notice.Warning, m.loc.Translate("new_api_key")+": "+created.APIKey)
	}
	return res, nil
}

// FetchOne loads a record and opens it for editing, replacing any open session.
func (m *Manager) FetchOne(ctx context.Context, id string) (*EditSession, error) {
	token, err := m.token()
	if err != nil {
		return nil, err
	}

	key, err := m.gw.GetKey(ctx, token, id)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrUnauthorized):
			return nil, m.unauthorized(ctx, token, err)
		case gateway.IsTransport(err):
			m.notices.Notify(notice.Error, m.loc.Translate("network_error"))
		default:
			m.notices.Notify(notice.Error, m.loc.Translate("load_failed"))
		}
		slog.Warn("loading api key", "id", id, "error", err)
		return nil, fmt.Errorf("loading api key %s: %w", id, err)
	}

	es := newEditSession(*key)
	m.changed(func() { m.edit = es })
	out := *es
	return &out, nil
}

// Editing returns the open edit session.
func (m *Manager) Editing() (EditSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edit == nil {
		return EditSession{}, false
	}
	return *m.edit, true
}

// ToggleReveal flips the open session between Hidden and Revealed.
func (m *Manager) ToggleReveal() (EditSession, error) {
	var (
		out EditSession
		err error
	)
	m.changed(func() {
		if m.edit == nil {
			err = ErrNoEditSession
			return
		}
		if m.edit.Reveal == Hidden {
			m.edit.Reveal = Revealed
		} else {
			m.edit.Reveal = Hidden
		}
		out = *m.edit
	})
	return out, err
}

// CloseEdit discards the edit session together with its secret.
func (m *Manager) CloseEdit() {
	m.changed(func() { m.edit = nil })
}

// Update saves the mutable fields of a key. On failure the edit view stays open.
func (m *Manager) Update(ctx context.Context, id, name string, isActive bool) error {
	token, err := m.token()
	if err != nil {
		return err
	}

	req := models.UpdateKeyRequest{KeyName: strings.TrimSpace(name), IsActive: isActive}
	if err := m.gw.UpdateKey(ctx, token, id, req); err != nil {
		return m.fail(ctx, token, err, "api_key_update_failed")
	}

	slog.Info("api key updated", "id", id, "active", isActive)
	m.notices.Notify(notice.Success, m.loc.Translate("api_key_updated"))
	m.CloseEdit()
	m.followUp(ctx)
	return nil
}

// Remove deletes a key once confirm approves the localized prompt.
func (m *Manager) Remove(ctx context.Context, id string, confirm Confirmer) error {
	token, err := m.token()
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(m.loc.Translate("delete_api_key_confirm")) {
		return ErrCancelled
	}

	if err := m.gw.DeleteKey(ctx, token, id); err != nil {
		return m.fail(ctx, token, err, "api_key_delete_failed")
	}

	slog.Info("api key deleted", "id", id)
	m.notices.Notify(notice.Success, m.loc.Translate("api_key_deleted"))
	m.changed(func() {
		if m.edit != nil && m.edit.ID == id {
			m.edit = nil
		}
	})
	m.followUp(ctx)
	return nil
}

// loadFailed announces a failed read: the server's text when it sent one,
// otherwise the generic load failure.
func (m *Manager) loadFailed(err error) {
	msg := gateway.ServerMessage(err)
	if msg == "" {
		msg = m.loc.Translate("load_failed")
	}
	m.notices.Notify(notice.Error, msg)
}

// followUp refreshes after a mutation. Its failures surface on their own.
func (m *Manager) followUp(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		slog.Debug("refresh after mutation", "error", err)
	}
}

// fail reports a mutation error to the operator and returns it.
func (m *Manager) fail(ctx context.Context, token string, err error, genericKey string) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return m.unauthorized(ctx, token, err)
	}

	slog.Warn("api key operation failed", "error", err)
	if gateway.IsTransport(err) {
		m.notices.Notify(notice.Error, m.loc.Translate("network_error"))
		return err
	}

	msg := gateway.ServerMessage(err)
	if msg == "" {
		msg = m.loc.Translate(genericKey)
	}
	m.notices.Notify(notice.Error, msg)
	return err
}

// unauthorized ends the session the failed request was made with. A newer
// session acquired meanwhile is left alone.
func (m *Manager) unauthorized(ctx context.Context, token string, err error) error {
	if m.guard.Token() == token {
		m.guard.HandleError(ctx, err)
	}
	return err
}
