package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/lenscan/internal/application/scanner"
	appshell "github.com/bryanwahyu/lenscan/internal/application/shell"
	"github.com/bryanwahyu/lenscan/internal/domain/analysis"
	"github.com/bryanwahyu/lenscan/internal/domain/scan"
	"github.com/bryanwahyu/lenscan/internal/infra/render"
	"github.com/bryanwahyu/lenscan/internal/middleware"
)

const defaultListLimit = 20

// errBadRequest marks handler errors caused by the caller.
type errBadRequest struct{ err error }

func (e errBadRequest) Error() string { return e.err.Error() }

type Router struct {
	ctrl    *scanner.Controller
	sh      *appshell.Shell
	history *scanner.History
	canvas  *render.MemCanvas
}

func NewRouter(ctrl *scanner.Controller, sh *appshell.Shell, history *scanner.History, canvas *render.MemCanvas) http.Handler {
	r := &Router{ctrl: ctrl, sh: sh, history: history, canvas: canvas}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/scanner/state", r.wrap(r.handleState))
		rt.Post("/scanner/mode", r.wrap(r.handleSetMode))
		rt.Post("/scanner/torch", r.wrap(r.handleTorch))
		rt.Get("/scans/latest", r.wrap(r.handleLatest))
		rt.Get("/scans/active", r.wrap(r.handleActive))
		rt.Get("/overlay", r.wrap(r.handleOverlay))
		rt.Post("/view", r.wrap(r.handleSetView))
		rt.Post("/drawer/open", r.wrap(r.handleOpenDrawer))
		rt.Post("/drawer/close", r.wrap(r.handleCloseDrawer))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, appshell.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			var bad errBadRequest
			if errors.As(err, &bad) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// GET /v1/scanner/state
func (r *Router) handleState(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, r.stateBody())
}

func (r *Router) stateBody() map[string]any {
	return map[string]any{
		"view":      r.sh.View(),
		"mode":      r.ctrl.Mode(),
		"accepting": r.ctrl.Accepting(),
		"torch_on":  r.ctrl.TorchOn(),
		"history":   r.history.Len(),
	}
}

// POST /v1/scanner/mode
// Body: {"mode": "auto|area|line"}
func (r *Router) handleSetMode(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errBadRequest{err}
	}
	if err := middleware.ValidateMode(body.Mode); err != nil {
		return errBadRequest{err}
	}

	// full adapter restart; capture errors here are fatal to the scan view
	if err := r.ctrl.SetMode(scan.Mode(body.Mode)); err != nil {
		return err
	}
	middleware.IncrementModeChanges()
	return writeJSON(w, r.stateBody())
}

// POST /v1/scanner/torch
// Body: {"on": true}
func (r *Router) handleTorch(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		On bool `json:"on"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errBadRequest{err}
	}

	r.ctrl.SetTorch(req.Context(), body.On)
	return writeJSON(w, map[string]any{"torch_on": r.ctrl.TorchOn()})
}

// GET /v1/scans/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit := defaultListLimit
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errBadRequest{fmt.Errorf("invalid limit: %q", v)}
		}
		if err := middleware.ValidateLimit(n); err != nil {
			return errBadRequest{err}
		}
		limit = n
	}

	list := r.history.List()
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return writeJSON(w, list)
}

// GET /v1/scans/active
func (r *Router) handleActive(w http.ResponseWriter, req *http.Request) error {
	active := r.sh.Active()
	if active == nil {
		return writeJSON(w, map[string]any{"active": nil})
	}
	return writeJSON(w, map[string]any{
		"active":   active,
		"analysis": presentAnalysis(active.Analysis),
	})
}

// presentAnalysis caps the source list for display; storage keeps them all.
func presentAnalysis(a *analysis.Analysis) map[string]any {
	if a == nil {
		return nil
	}
	return map[string]any{
		"safety":          a.Safety,
		"category":        a.Category,
		"summary":         a.Summary,
		"product_name":    a.ProductName,
		"product_details": a.ProductDetails,
		"sources":         a.DisplaySources(),
	}
}

// GET /v1/overlay
func (r *Router) handleOverlay(w http.ResponseWriter, req *http.Request) error {
	width, height, commands := r.canvas.Snapshot()
	return writeJSON(w, map[string]any{
		"width":    width,
		"height":   height,
		"commands": commands,
	})
}

// POST /v1/view
// Body: {"view": "scan|history"}
func (r *Router) handleSetView(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errBadRequest{err}
	}
	if err := middleware.ValidateView(body.View); err != nil {
		return errBadRequest{err}
	}
	if err := r.sh.SetView(appshell.View(body.View)); err != nil {
		return errBadRequest{err}
	}
	return writeJSON(w, r.stateBody())
}

// POST /v1/drawer/open
// Body: {"timestamp": "<RFC3339Nano of a history entry>"}
func (r *Router) handleOpenDrawer(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errBadRequest{err}
	}
	ts, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	if err != nil {
		return errBadRequest{fmt.Errorf("invalid timestamp: %w", err)}
	}

	if err := r.sh.OpenFromHistory(ts); err != nil {
		return err
	}
	if entry := r.sh.Active(); entry != nil && entry.Analysis != nil {
		middleware.IncrementEnrichmentsCached()
	}
	return writeJSON(w, r.stateBody())
}

// POST /v1/drawer/close
func (r *Router) handleCloseDrawer(w http.ResponseWriter, req *http.Request) error {
	r.sh.CloseDrawer()
	return writeJSON(w, r.stateBody())
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}
