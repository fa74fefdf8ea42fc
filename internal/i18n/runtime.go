package i18n

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kiranshivaraju/keyconsole/internal/prefs"
	"golang.org/x/text/language"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithCatalog replaces the embedded catalog.
func WithCatalog(c Catalog) Option {
	return func(r *Runtime) { r.catalog = c }
}

// WithDefaultLanguage sets the language used when none has been persisted.
func WithDefaultLanguage(lang Language) Option {
	return func(r *Runtime) { r.fallback = lang }
}

// WithLocation sets the time zone dates are rendered in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Runtime) { r.loc = loc }
}

// LanguageOption describes one entry of the language switcher.
type LanguageOption struct {
	Language Language
	Label    string
	Title    string
	Active   bool
}

var switcherLabels = map[Language]struct{ label, titleKey string }{
	Chinese: {"中", "chinese"},
	English: {"EN", "english"},
}

// Runtime is the console's localization service. One Runtime is shared by
// every view of a console session. It is safe for concurrent use.
type Runtime struct {
	store    prefs.Store
	catalog  Catalog
	fallback Language
	loc      *time.Location
	matcher  language.Matcher
	langs    []Language

	mu      sync.RWMutex
	current Language
	subs    map[int]func(Language)
	nextSub int
}

// New builds a Runtime and restores the persisted language preference.
// An unreadable or unknown preference falls back to the default language.
func New(ctx context.Context, store prefs.Store, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		store:    store,
		fallback: DefaultLanguage,
		loc:      time.Local,
		subs:     map[int]func(Language){},
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.catalog == nil {
		cat, err := LoadCatalog()
		if err != nil {
			return nil, err
		}
		r.catalog = cat
	}

	r.langs = r.catalog.Languages()
	tags := make([]language.Tag, len(r.langs))
	for i, lang := range r.langs {
		tags[i] = language.Make(string(lang))
	}
	r.matcher = language.NewMatcher(tags)

	r.current = r.fallback
	if _, ok := r.catalog[r.current]; !ok {
		r.current = DefaultLanguage
	}

	saved, found, err := store.Get(ctx, prefs.LanguageKey)
	switch {
	case err != nil:
		slog.Warn("reading language preference", "error", err)
	case found:
		if lang, ok := r.resolve(saved); ok {
			r.current = lang
		}
	}

	return r, nil
}

// Language returns the active language.
func (r *Runtime) Language() Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Translate returns the active language's text for key. A missing or empty
// entry yields the first fallback when one is given and non-empty, else the key.
func (r *Runtime) Translate(key string, fallback ...string) string {
	r.mu.RLock()
	lang := r.current
	r.mu.RUnlock()

	if text := r.catalog[lang][key]; text != "" {
		return text
	}
	if len(fallback) > 0 && fallback[0] != "" {
		return fallback[0]
	}
	return key
}

// SwitchLanguage activates lang, persists it and notifies subscribers.
// lang may be a catalog code or any BCP 47 tag that matches one ("en-US").
// Unsupported languages are ignored and reported as false.
func (r *Runtime) SwitchLanguage(ctx context.Context, lang string) bool {
	target, ok := r.resolve(lang)
	if !ok {
		slog.Debug("ignoring unsupported language", "language", lang)
		return false
	}

	r.mu.Lock()
	r.current = target
	subs := make([]func(Language), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	if err := r.store.Set(ctx, prefs.LanguageKey, string(target)); err != nil {
		slog.Warn("persisting language preference", "language", target, "error", err)
	}

	for _, fn := range subs {
		fn(target)
	}
	return true
}

// Subscribe registers fn to be called synchronously with the new language on
// every switch. The returned function removes the subscription.
func (r *Runtime) Subscribe(fn func(Language)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

// Options returns the language switcher entries with the active one flagged.
func (r *Runtime) Options() []LanguageOption {
	active := r.Language()
	opts := make([]LanguageOption, 0, len(r.langs))
	for _, lang := range r.langs {
		label, titleKey := string(lang), string(lang)
		if l, ok := switcherLabels[lang]; ok {
			label, titleKey = l.label, l.titleKey
		}
		opts = append(opts, LanguageOption{
			Language: lang,
			Label:    label,
			Title:    r.Translate(titleKey, string(lang)),
			Active:   lang == active,
		})
	}
	return opts
}

// Next returns the language after the active one in switcher order.
func (r *Runtime) Next() Language {
	active := r.Language()
	for i, lang := range r.langs {
		if lang == active {
			return r.langs[(i+1)%len(r.langs)]
		}
	}
	return r.langs[0]
}

// resolve maps a code or tag onto a catalog language.
func (r *Runtime) resolve(lang string) (Language, bool) {
	if _, ok := r.catalog[Language(lang)]; ok {
		return Language(lang), true
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return "", false
	}
	_, idx, conf := r.matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return r.langs[idx], true
}
