// Package http provides the HTMX web UI and operational endpoints.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"cambio/internal/backend"
	"cambio/internal/cache"
	"cambio/internal/core"
	"cambio/internal/geo"
	"cambio/internal/log"
	"cambio/internal/middleware/ratelimit"
	"cambio/internal/middleware/security"
	"cambio/internal/middleware/trace"
	"cambio/internal/report"
	appweb "cambio/web"
)

// appMetrics tracks application-level counters exposed on /metrics.
type appMetrics struct {
	totalEntries int64
	cacheHits    int64
	cacheMisses  int64
	uptime       time.Time
}

type Server struct {
	http.Server
	templates  *template.Template
	backend    backend.Backend
	places     *geo.Client
	display    string
	logger     *log.Logger
	structured *log.StructuredLogger

	securityDetector *security.Detector
	securityHeaders  *security.HeadersMiddleware
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware

	// Dashboard views are cached per month and display currency; budget
	// views per display currency. Mutations invalidate by key prefix.
	overviewCache *cache.LRUCache[core.MonthOverview]
	budgetCache   *cache.LRUCache[core.BudgetOverview]
	cacheManager  *cache.Manager

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run http.Server. The places client is optional; without it
// the place search partial returns an empty result.
func NewServer(addr string, b backend.Backend, places *geo.Client, display string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		backend:          b,
		places:           places,
		display:          core.NormalizeCurrencyCode(display),
		logger:           logger.WithComponent(log.ComponentHTTP),
		securityDetector: security.NewDetector(),
		securityHeaders:  security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		overviewCache:    cache.NewLRUCache[core.MonthOverview](100, 5*time.Minute),
		budgetCache:      cache.NewLRUCache[core.BudgetOverview](50, 5*time.Minute),
		cacheManager:     cache.NewManager(),
		appMetrics:       appMetrics{uptime: time.Now()},
	}
	s.structured = log.NewStructuredLogger(s.logger)
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP)

	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.Register(s.budgetCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	// Mutating routes get per-client rate limiting; read-only partials
	// stay unlimited so the dashboard can poll freely.
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, nil)

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.Handle("/entries", limit(http.HandlerFunc(s.handleCreateEntry)))
	mux.Handle("/entries/delete", limit(http.HandlerFunc(s.handleDeleteEntry)))
	mux.Handle("/rates", limit(http.HandlerFunc(s.handleCreateRate)))
	mux.Handle("/rates/delete", limit(http.HandlerFunc(s.handleDeleteRate)))
	mux.Handle("/budgets", limit(http.HandlerFunc(s.handleCreateBudget)))
	mux.Handle("/budgets/deactivate", limit(http.HandlerFunc(s.handleDeactivateBudget)))

	// UI partials
	mux.HandleFunc("/ui/month-overview", s.handleMonthOverview)
	mux.HandleFunc("/ui/month-entries", s.handleMonthEntries)
	mux.HandleFunc("/ui/budget-overview", s.handleBudgetOverview)
	mux.HandleFunc("/ui/rates", s.handleRatesTable)
	mux.HandleFunc("/ui/categories", s.handleCategoryOptions)
	mux.HandleFunc("/ui/currencies", s.handleCurrencyOptions)
	mux.HandleFunc("/ui/places", s.handlePlaceSearch)

	// Outermost first: tracing wraps everything so even blocked
	// requests get a request ID and a completion log line.
	var handler http.Handler = mux
	handler = s.withDetection(handler)
	handler = s.securityHeaders.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// withDetection rejects requests matching known attack patterns before
// they reach a handler.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.securityDetector.SuspicionReason(r); reason != "" {
			s.logger.WarnContext(r.Context(), "Suspicious request blocked",
				"reason", reason,
				"request_id", trace.GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
				"user_agent", r.Header.Get("User-Agent"))
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func overviewKey(year, month int, display string) string {
	return fmt.Sprintf("dashboard:%04d-%02d:%s", year, month, display)
}

func budgetKey(display string) string {
	return "budgets:" + display
}

// invalidateMonth drops every cached view of one month, whatever display
// currency it was rendered in.
func (s *Server) invalidateMonth(year, month int) {
	s.overviewCache.InvalidatePrefix(fmt.Sprintf("dashboard:%04d-%02d", year, month))
}

func (s *Server) invalidateBudgets() {
	s.budgetCache.InvalidatePrefix("budgets:")
}

// invalidateAll drops every cached view. Rate mutations change the
// conversion result of any month and any budget line.
func (s *Server) invalidateAll() {
	s.overviewCache.InvalidatePrefix("dashboard:")
	s.budgetCache.InvalidatePrefix("budgets:")
}

// getMonthOverview returns the aggregated month view, served from cache
// when possible.
func (s *Server) getMonthOverview(ctx context.Context, year, month int, display string) (core.MonthOverview, error) {
	key := overviewKey(year, month, display)
	if ov, found := s.overviewCache.Get(key); found {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		s.logger.DebugContext(ctx, "Overview cache hit", "year", year, "month", month, "display", display)
		return ov, nil
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	// Small timeout so a slow backend cannot hang the partial.
	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	entries, err := s.backend.ListEntries(cctx, year, month)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("list month entries (year=%d, month=%d): %w", year, month, err)
	}
	rates, err := s.backend.ListRates(cctx)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("list rates: %w", err)
	}

	ov := report.BuildMonthOverview(year, month, display, entries, rates)
	if ov.Unconverted > 0 {
		s.logger.WarnContext(ctx, "Entries without a conversion path excluded from totals",
			"year", year, "month", month,
			log.FieldDisplay, display,
			"unconverted", ov.Unconverted)
	}

	s.overviewCache.Set(key, ov)
	s.logger.DebugContext(ctx, "Overview cached",
		"year", year, "month", month, "display", display,
		"entries", len(entries), "categories", len(ov.ByCategory))
	return ov, nil
}

// getBudgetOverview returns the normalized budget view, served from
// cache when possible.
func (s *Server) getBudgetOverview(ctx context.Context, display string) (core.BudgetOverview, error) {
	key := budgetKey(display)
	if ov, found := s.budgetCache.Get(key); found {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		s.logger.DebugContext(ctx, "Budget cache hit", "display", display)
		return ov, nil
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	budgets, err := s.backend.ListActiveBudgets(cctx)
	if err != nil {
		return core.BudgetOverview{}, fmt.Errorf("list active budgets: %w", err)
	}
	rates, err := s.backend.ListRates(cctx)
	if err != nil {
		return core.BudgetOverview{}, fmt.Errorf("list rates: %w", err)
	}

	ov := report.BuildBudgetOverview(display, budgets, rates)
	s.budgetCache.Set(key, ov)
	s.logger.DebugContext(ctx, "Budgets cached", "display", display, "lines", len(ov.Lines))
	return ov, nil
}
