package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"devstudio/internal/game"
	"devstudio/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PriceHistorian serves persisted price samples. It is optional.
type PriceHistorian interface {
	PriceHistory(ctx context.Context, stockID string, limit int) ([]store.PriceSample, error)
}

type Server struct {
	log     *slog.Logger
	mem     *store.Memory
	history PriceHistorian
	mux     *chi.Mux
}

func New(logger *slog.Logger, mem *store.Memory, history PriceHistorian) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:     logger,
		mem:     mem,
		history: history,
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		// The stream is long-lived and must not sit behind the request timeout.
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/state", s.handleState)
			r.Post("/speed", s.handleSpeed)

			r.Get("/candidates", s.handleCandidates)
			r.Get("/employees", s.handleEmployees)
			r.Post("/employees", s.handleHire)
			r.Delete("/employees/{id}", s.handleFire)
			r.Post("/employees/{id}/assign", s.handleAssign)

			r.Get("/projects", s.handleProjects)
			r.Post("/projects", s.handleCreateProject)
			r.Post("/projects/{id}/start", s.handleStartProject)

			r.Post("/platforms", s.handleUnlockPlatform)

			r.Get("/stocks", s.handleStocks)
			r.Get("/stocks/{id}", s.handleStockDetail)
			r.Post("/orders", s.handleOrder)
			r.Get("/portfolio", s.handlePortfolio)
			r.Post("/alerts", s.handleAddAlert)
			r.Put("/watchlist/{id}", s.handleWatch)
			r.Delete("/watchlist/{id}", s.handleUnwatch)

			r.Get("/notifications", s.handleNotifications)
		})
	})
}

type stateView struct {
	game.State
	NetWorth       float64 `json:"net_worth"`
	PortfolioValue float64 `json:"portfolio_value"`
	HireCost       float64 `json:"hire_cost"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.mem.Snapshot()
	writeJSON(w, http.StatusOK, stateView{
		State:          st,
		NetWorth:       st.NetWorth(),
		PortfolioValue: st.PortfolioValue(),
		HireCost:       s.mem.HireCost(),
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Speed int `json:"speed"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := s.mem.SetSpeed(in.Speed); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"speed": in.Speed})
}

func (s *Server) handleCandidates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": s.mem.Candidates(),
		"hire_cost":  s.mem.HireCost(),
	})
}

func (s *Server) handleEmployees(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"employees": s.mem.Snapshot().Employees})
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CandidateID string `json:"candidate_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	emp, err := s.mem.Hire(strings.TrimSpace(in.CandidateID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	if err := s.mem.Fire(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProjectID string `json:"project_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := s.mem.AssignEmployee(chi.URLParam(r, "id"), strings.TrimSpace(in.ProjectID)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"projects": s.mem.Snapshot().Projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in store.ProjectInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	p, err := s.mem.CreateProject(in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	if err := s.mem.StartProject(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleUnlockPlatform(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Platform string `json:"platform"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	cost, err := s.mem.UnlockPlatform(strings.TrimSpace(in.Platform))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"platform": in.Platform, "cost": cost})
}

func (s *Server) handleStocks(w http.ResponseWriter, _ *http.Request) {
	st := s.mem.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"stocks":        st.Stocks,
		"market_events": st.MarketEvents,
	})
}

func (s *Server) handleStockDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))
	st := s.mem.Snapshot()
	i := st.StockIndex(id)
	if i < 0 {
		writeDomainError(w, game.ErrStockNotFound)
		return
	}
	out := map[string]any{"stock": st.Stocks[i]}
	if s.history != nil {
		limit := 200
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}
		samples, err := s.history.PriceHistory(r.Context(), id, limit)
		if err != nil {
			s.log.Warn("price history lookup failed", "stock", id, "err", err)
		} else {
			out["history"] = samples
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		StockID  string `json:"stock_id"`
		Side     string `json:"side"`
		Quantity int64  `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	id := strings.ToUpper(strings.TrimSpace(in.StockID))
	var (
		res store.TradeResult
		err error
	)
	switch strings.ToLower(strings.TrimSpace(in.Side)) {
	case "buy":
		res, err = s.mem.BuyStock(id, in.Quantity)
	case "sell":
		res, err = s.mem.SellStock(id, in.Quantity)
	default:
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	st := s.mem.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"portfolio": st.Portfolio,
		"value":     st.PortfolioValue(),
	})
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var in struct {
		StockID   string              `json:"stock_id"`
		Target    float64             `json:"target"`
		Direction game.AlertDirection `json:"direction"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	a, err := s.mem.AddPriceAlert(strings.ToUpper(strings.TrimSpace(in.StockID)), in.Target, in.Direction)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	if err := s.mem.Watch(strings.ToUpper(chi.URLParam(r, "id"))); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnwatch(w http.ResponseWriter, r *http.Request) {
	if err := s.mem.Unwatch(strings.ToUpper(chi.URLParam(r, "id"))); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"notifications": s.mem.Snapshot().Notifications})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrInsufficientShares):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, game.ErrEmployeeNotFound), errors.Is(err, game.ErrProjectNotFound),
		errors.Is(err, game.ErrStockNotFound), errors.Is(err, game.ErrCandidateNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrPlatformUnlocked), errors.Is(err, game.ErrProjectCompleted),
		errors.Is(err, game.ErrPlatformLocked), errors.Is(err, game.ErrProjectNotActive):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInvalidSpeed), errors.Is(err, game.ErrInvalidQuantity),
		errors.Is(err, game.ErrInvalidAlert), errors.Is(err, game.ErrInvalidName),
		errors.Is(err, game.ErrInvalidSize), errors.Is(err, game.ErrUnknownPlatform):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
