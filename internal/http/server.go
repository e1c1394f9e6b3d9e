// Package http exposes the tracker over a JSON API: record CRUD for the
// three kinds, filtered listings, dashboard summaries and entry prefill.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kharcha/internal/cache"
	applog "kharcha/internal/log"
	"kharcha/internal/services"
)

// Options tune the summary cache; zero values fall back to defaults.
type Options struct {
	CacheTTL             time.Duration
	CacheCleanupInterval time.Duration
}

type Server struct {
	http.Server
	tracker *services.Tracker

	// summaryCache memoizes dashboard summaries per query string. Any
	// expense mutation clears it wholesale; summaries are cheap to rebuild
	// and correctness beats hit rate here.
	summaryCache *cache.LRU[summaryResponse]
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, tracker *services.Tracker, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheCleanupInterval <= 0 {
		opts.CacheCleanupInterval = time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		tracker:      tracker,
		summaryCache: cache.NewLRU[summaryResponse](100, opts.CacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(opts.CacheCleanupInterval)

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/summary", s.handleExpenseSummary)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /api/budgets/summary", s.handleBudgetSummary)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/incomes", s.handleListIncomes)
	mux.HandleFunc("GET /api/incomes/summary", s.handleIncomeSummary)
	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("PUT /api/incomes/{id}", s.handleUpdateIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/prefill", s.handlePrefill)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.RequestLogger(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the cache sweeper and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) invalidateSummaries() {
	s.summaryCache.Clear()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
