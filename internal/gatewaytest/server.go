// Package gatewaytest runs an in-process fake of the gateway admin API for tests.
package gatewaytest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/keyconsole/internal/gateway"
	"github.com/kiranshivaraju/keyconsole/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// Route names accepted by Calls, Fail and Intercept.
const (
	RouteLogin     = "POST /auth/login"
	RouteVerify    = "GET /auth/verify"
	RouteDashboard = "GET /dashboard"
	RouteListKeys  = "GET /api-keys"
	RouteCreateKey = "POST /api-keys"
	RouteGetKey    = "GET /api-keys/{id}"
	RouteUpdateKey = "PUT /api-keys/{id}"
	RouteDeleteKey = "DELETE /api-keys/{id}"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
)

type failure struct {
	status  int
	message string
}

// Server is the fake admin API. Its state is only changed through the HTTP
// routes and the helper methods below.
type Server struct {
	srv *httptest.Server

	mu           sync.Mutex
	username     string
	passwordHash []byte
	tokens       map[string]bool
	keys         []models.APIKey
	calls        map[string]int
	requests     int
	failures     map[string][]failure
	intercepts   map[string]func(*http.Request)
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials sets the operator account accepted by the login route.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.passwordHash = hashPassword(password)
	}
}

// WithKeys seeds the key store, in list order.
func WithKeys(keys ...models.APIKey) Option {
	return func(s *Server) { s.keys = append(s.keys, keys...) }
}

// New starts a fake admin API that is closed when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		username:   DefaultUsername,
		tokens:     map[string]bool{},
		calls:      map[string]int{},
		failures:   map[string][]failure{},
		intercepts: map[string]func(*http.Request){},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.passwordHash == nil {
		s.passwordHash = hashPassword(DefaultPassword)
	}

	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countRequests)
	r.Use(logRequests)
	r.Use(recoverPanics)

	r.Route("/admin/api", func(r chi.Router) {
		r.Post("/auth/login", s.handle(RouteLogin, s.login))

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/verify", s.handle(RouteVerify, s.verify))
			r.Get("/dashboard", s.handle(RouteDashboard, s.dashboard))
			r.Get("/api-keys", s.handle(RouteListKeys, s.listKeys))
			r.Post("/api-keys", s.handle(RouteCreateKey, s.createKey))
			r.Get("/api-keys/{id}", s.handle(RouteGetKey, s.getKey))
			r.Put("/api-keys/{id}", s.handle(RouteUpdateKey, s.updateKey))
			r.Delete("/api-keys/{id}", s.handle(RouteDeleteKey, s.deleteKey))
		})
	})
	return r
}

// handle counts the call, runs any intercept and serves an injected failure
// before falling through to h.
func (s *Server) handle(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		hook := s.intercepts[route]
		var fail *failure
		if queue := s.failures[route]; len(queue) > 0 {
			fail = &queue[0]
			s.failures[route] = queue[1:]
		}
		s.mu.Unlock()

		if hook != nil {
			hook(r)
		}
		if fail != nil {
			writeError(w, fail.status, fail.message)
			return
		}
		h(w, r)
	}
}

// URL returns the admin API root, e.g. http://127.0.0.1:port/admin/api.
func (s *Server) URL() string {
	return s.srv.URL + "/admin/api"
}

// Client returns a gateway client pointed at the fake.
func (s *Server) Client() *gateway.HTTPClient {
	return gateway.NewHTTPClient(s.URL(), 5*time.Second)
}

// IssueToken mints a valid session token without going through login.
func (s *Server) IssueToken() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()
	return token
}

// Revoke invalidates token, as if an administrator ended the session elsewhere.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	s.tokens = map[string]bool{}
	s.mu.Unlock()
}

// Keys returns a copy of the stored keys in list order.
func (s *Server) Keys() []models.APIKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.APIKey(nil), s.keys...)
}

// SetKeys replaces the stored keys.
func (s *Server) SetKeys(keys ...models.APIKey) {
	s.mu.Lock()
	s.keys = append([]models.APIKey(nil), keys...)
	s.mu.Unlock()
}

// Calls reports how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Requests reports every HTTP request received, including rejected ones.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Fail makes the next request to route answer status with an error payload.
// Repeated calls queue further failures.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message})
	s.mu.Unlock()
}

// Intercept runs fn at the start of every request to route, before the
// response is produced. Pass nil to remove it.
func (s *Server) Intercept(route string, fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.intercepts, route)
		return
	}
	s.intercepts[route] = fn
}

func hashPassword(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}

func generateSecret() string {
	return "sk-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
