package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"magnate/internal/config"
	"magnate/internal/econ"
	"magnate/internal/savefile"
	"magnate/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the single-session economy over HTTP. All game state lives
// in the Session; the store, when configured, only loads the catalog and
// persists snapshots.
type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	session *econ.Session
	store   *store.Store
	mux     *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, session *econ.Session, st *store.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		session: session,
		store:   st,
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
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/catalog", s.handleCatalog)

		r.Post("/businesses", s.handleBuyBusiness)
		r.Post("/businesses/{id}/upgrades", s.handleUpgrade)
		r.Get("/businesses/{id}/upgrades/{track}/cost", s.handleUpgradeCost)
		r.Post("/businesses/{id}/projects/start", s.handleStartProject)
		r.Post("/businesses/{id}/projects/cancel", s.handleCancelProject)
		r.Post("/businesses/{id}/darkside", s.handleDarkSide)

		r.Post("/save", s.handleSave)
		r.Post("/load", s.handleLoad)
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.State(time.Now()))
}

type catalogTemplate struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	Icon          string             `json:"icon"`
	IncomePerHour float64            `json:"income_per_hour"`
	Price         float64            `json:"price"`
	UpgradeCost   float64            `json:"upgrade_cost"`
	BaseRisk      int32              `json:"base_risk"`
	BaseWorkers   int32              `json:"base_workers"`
	CanGoDark     bool               `json:"can_go_dark"`
	Projects      []econ.ProjectSpec `json:"projects,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	templates := s.session.Catalog().Templates()
	out := make([]catalogTemplate, 0, len(templates))
	for _, t := range templates {
		out = append(out, catalogTemplate{
			ID:            t.ID,
			Name:          t.Name,
			Icon:          t.Icon,
			IncomePerHour: econ.MicrosToCoins(t.BaseIncomeMicros),
			Price:         econ.MicrosToCoins(t.PriceMicros),
			UpgradeCost:   econ.MicrosToCoins(t.BaseUpgradeCostMicros),
			BaseRisk:      t.BaseRisk,
			BaseWorkers:   t.BaseWorkers,
			CanGoDark:     t.CanGoDark,
			Projects:      t.Projects,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": out})
}

func (s *Server) handleBuyBusiness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID int64 `json:"template_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.session.BuyBusiness(req.TemplateID, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Track string `json:"track"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	track, ok := econ.ParseTrack(strings.ToLower(strings.TrimSpace(req.Track)))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown upgrade track")
		return
	}
	view, err := s.session.Upgrade(templateID, track, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpgradeCost(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathID(w, r)
	if !ok {
		return
	}
	track, ok := econ.ParseTrack(chi.URLParam(r, "track"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown upgrade track")
		return
	}
	cost, err := s.session.UpgradeCost(templateID, track)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"track":       track.String(),
		"cost_micros": cost,
		"cost":        econ.MicrosToCoins(cost),
	})
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.session.StartProject(templateID, req.Name, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancelProject(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := s.session.CancelProject(templateID, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDarkSide(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := s.session.ToggleDarkSide(templateID, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	snap := s.session.Snapshot(now)
	if s.store != nil {
		if err := s.store.SaveSnapshot(r.Context(), s.cfg.SaveSlot, snap); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	} else if err := savefile.Save("", snap); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("session saved", "slot", s.cfg.SaveSlot, "saved_at", now)
	writeJSON(w, http.StatusOK, map[string]any{"saved_at": now})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var snap econ.Snapshot
	var found bool
	var err error
	if s.store != nil {
		snap, found, err = s.store.LoadSnapshot(r.Context(), s.cfg.SaveSlot)
	} else {
		snap, found, err = savefile.Load("")
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no saved session")
		return
	}
	if err := s.session.Restore(snap); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("session loaded", "slot", s.cfg.SaveSlot, "saved_at", snap.SavedAt)
	writeJSON(w, http.StatusOK, s.session.State(time.Now()))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid business id")
		return 0, false
	}
	return id, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, econ.ErrUnknownBusiness), errors.Is(err, econ.ErrUnknownTemplate):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, econ.ErrAlreadyOwned), errors.Is(err, econ.ErrAlreadyRunning), errors.Is(err, econ.ErrAlreadyDark):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, econ.ErrInsufficientFunds), errors.Is(err, econ.ErrMaxLevel),
		errors.Is(err, econ.ErrUnknownTrack), errors.Is(err, econ.ErrUnknownProject),
		errors.Is(err, econ.ErrNoActiveProject), errors.Is(err, econ.ErrNotEligible):
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
