package httpapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/service"
)

const maxBodyBytes = 1 << 20

type Options struct {
	AllowedOrigin string
	Logger        zerolog.Logger
	// CSRFSecret is generated when empty. Set it when several instances sit
	// behind one load balancer.
	CSRFSecret []byte
}

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	csrfSecret    []byte
	log           zerolog.Logger
}

func New(svc *service.Service, auth *AuthManager, opts Options) *API {
	csrfSecret := opts.CSRFSecret
	if len(csrfSecret) == 0 {
		csrfSecret = make([]byte, 32)
		if _, err := rand.Read(csrfSecret); err != nil {
			panic(fmt.Sprintf("httpapi: generate csrf secret: %v", err))
		}
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: opts.AllowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		csrfSecret:    csrfSecret,
		log:           opts.Logger.With().Str("component", "httpapi").Logger(),
	}
}

// csrfTokenForHour computes an HMAC-SHA256 token for the given hour bucket
// (expressed as Unix time truncated to the hour). The token is hex-encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	return a.csrfTokenForHour(time.Now().UTC().Truncate(time.Hour).Unix())
}

// validateCSRFToken accepts the current and the previous hour bucket.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	currentBucket := time.Now().UTC().Truncate(time.Hour).Unix()
	current := a.csrfTokenForHour(currentBucket)
	previous := a.csrfTokenForHour(currentBucket - 3600)

	return hmac.Equal([]byte(token), []byte(current)) ||
		hmac.Equal([]byte(token), []byte(previous))
}

var csrfExemptPaths = []string{
	"/api/v1/auth/login",
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	if !isStateChanging(r.Method) {
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		a.writeError(w, r, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

// clientKey identifies the caller for rate limiting. RealIP may already have
// replaced RemoteAddr with a bare address.
func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.String()
	}
	if addrPort, err := netip.ParseAddrPort(host); err == nil {
		return addrPort.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, requestID, a.requestLogger, a.recoverer, a.security)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, http.StatusNotFound, errors.New("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})

	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)
		r.Post("/auth/login", a.handleLogin)
		r.Get("/auth/csrf-token", a.handleCSRFToken)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth())

			r.Post("/auth/logout", a.handleLogout)
			r.Get("/auth/me", a.handleMe)
			r.Post("/auth/password", a.handleChangePassword)
			r.Post("/auth/register", a.handleCreateUser)

			r.Get("/shop-profile", a.handleGetShopProfile)
			r.Put("/shop-profile", a.handleUpdateShopProfile)

			r.Route("/branches", func(r chi.Router) {
				r.Get("/", a.handleListBranches)
				r.Post("/", a.handleCreateBranch)
				r.Get("/{id}", a.handleGetBranch)
				r.Put("/{id}", a.handleUpdateBranch)
				r.Delete("/{id}", a.handleDeleteBranch)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", a.handleListUsers)
				r.Post("/", a.handleCreateUser)
				r.Get("/{id}", a.handleGetUser)
				r.Put("/{id}", a.handleUpdateUser)
				r.Delete("/{id}", a.handleDeleteUser)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", a.handleListCategories)
				r.Post("/", a.handleCreateCategory)
				r.Get("/{id}", a.handleGetCategory)
				r.Put("/{id}", a.handleUpdateCategory)
				r.Delete("/{id}", a.handleDeleteCategory)
			})

			r.Route("/brands", func(r chi.Router) {
				r.Get("/", a.handleListBrands)
				r.Post("/", a.handleCreateBrand)
				r.Get("/{id}", a.handleGetBrand)
				r.Put("/{id}", a.handleUpdateBrand)
				r.Delete("/{id}", a.handleDeleteBrand)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", a.handleListProducts)
				r.Post("/", a.handleCreateProduct)
				r.Get("/search", a.handleSearchProducts)
				r.Get("/low-stock", a.handleLowStockProducts)
				r.Get("/{id}", a.handleGetProduct)
				r.Put("/{id}", a.handleUpdateProduct)
				r.Delete("/{id}", a.handleDeleteProduct)
				r.Patch("/{id}/toggle-status", a.handleToggleProductStatus)
				r.Post("/{id}/stock", a.handleUpdateProductStock)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", a.handleListCustomers)
				r.Post("/", a.handleCreateCustomer)
				r.Get("/{id}", a.handleGetCustomer)
				r.Put("/{id}", a.handleUpdateCustomer)
				r.Delete("/{id}", a.handleDeleteCustomer)
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", a.handleListSuppliers)
				r.Post("/", a.handleCreateSupplier)
				r.Get("/{id}", a.handleGetSupplier)
				r.Put("/{id}", a.handleUpdateSupplier)
				r.Delete("/{id}", a.handleDeleteSupplier)
			})

			r.Route("/expense-categories", func(r chi.Router) {
				r.Get("/", a.handleListExpenseCategories)
				r.Post("/", a.handleCreateExpenseCategory)
				r.Put("/{id}", a.handleUpdateExpenseCategory)
				r.Delete("/{id}", a.handleDeleteExpenseCategory)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", a.handleListExpenses)
				r.Post("/", a.handleCreateExpense)
				r.Get("/{id}", a.handleGetExpense)
				r.Put("/{id}", a.handleUpdateExpense)
				r.Delete("/{id}", a.handleDeleteExpense)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", a.handleListSales)
				r.Post("/", a.handleCreateSale)
				r.Get("/{id}", a.handleGetSale)
				r.Get("/{id}/receipt", a.handleSaleReceipt)
			})

			r.Route("/purchases", func(r chi.Router) {
				r.Get("/", a.handleListPurchases)
				r.Post("/", a.handleCreatePurchase)
				r.Get("/{id}", a.handleGetPurchase)
			})

			r.Route("/stock-adjustments", func(r chi.Router) {
				r.Get("/", a.handleListStockAdjustments)
				r.Post("/", a.handleCreateStockAdjustment)
				r.Get("/{id}", a.handleGetStockAdjustment)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(a.requireAuth(string(domain.RoleAdmin), string(domain.RoleManager)))
			r.Get("/sales", a.handleSalesReport)
			r.Get("/purchases", a.handlePurchaseReport)
			r.Get("/expenses", a.handleExpenseReport)
			r.Get("/stock", a.handleStockReport)
		})
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.ok(w, r, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	}, "")
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		a.writeError(w, r, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if !a.decode(w, r, &req) {
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, resp, "Login successful")
}

// handleLogout is stateless: tokens expire on their own and the client drops them.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.ok(w, r, nil, "Logged out")
}

// handleCSRFToken returns a stateless token valid for the current hour bucket.
// Clients send it in the X-CSRF-Token header on every mutating request.
func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	a.ok(w, r, map[string]string{"csrf_token": a.generateCSRFToken()}, "")
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, _ := service.ActorFromContext(r.Context())
	user, err := a.service.GetUser(r.Context(), actor.UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, user, "")
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordChangeRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.service.ChangePassword(r.Context(), req); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Password changed")
}
