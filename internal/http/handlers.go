package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"outlay/internal/core"
	"outlay/internal/export"
	applog "outlay/internal/log"
)

// expensePayload is the validated-field payload collaborators submit for
// create and update. Field-level validation happens here, in front of the
// store.
type expensePayload struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func (p expensePayload) draft() (core.Draft, error) {
	amount, err := core.ParseMoney(p.Amount)
	if err != nil {
		return core.Draft{}, err
	}
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Draft{}, err
	}
	return core.Draft{
		Amount:      amount,
		Category:    core.Category(p.Category),
		Description: strings.TrimSpace(p.Description),
		Date:        date,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().Summary)
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().Filtered)
}

func (h *Handler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft, err := payload.draft()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := h.store.Create(r.Context(), draft)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload expensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft, err := payload.draft()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := draft.Validate(h.clock()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var existing *core.Expense
	for _, e := range h.store.Snapshot().Expenses {
		if e.ID == id {
			existing = &e
			break
		}
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	updated := core.Expense{
		ID:          existing.ID,
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
		Date:        draft.Date,
		CreatedAt:   existing.CreatedAt,
	}
	if err := h.store.Update(r.Context(), updated); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, e := range h.store.Snapshot().Expenses {
		if e.ID == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeError(w, http.StatusNotFound, "expense not found")
}

func (h *Handler) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var patch core.FilterPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter payload")
		return
	}
	if patch.Category != nil {
		c := *patch.Category
		if c != "" && c != core.CategoryAll && !c.Valid() {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown category %q", c))
			return
		}
	}
	h.store.SetFilters(r.Context(), patch)
	writeJSON(w, http.StatusOK, h.store.Snapshot().Filters)
}

func (h *Handler) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	h.store.ClearFilters(r.Context())
	writeJSON(w, http.StatusOK, h.store.Snapshot().Filters)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	h.store.Reload(r.Context())
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// handleExport streams the current filtered view as a CSV download, rows in
// the order the store holds them.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	name := export.Filename(h.clock())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.Write(w, snap.Filtered); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
	}
}

func (h *Handler) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	key := fmt.Sprintf("categories:%d", snap.Version)
	h.serveChart(w, r, key, func() ([]byte, error) {
		return h.charts.CategoryBreakdown(snap.Summary)
	})
}

func (h *Handler) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	key := fmt.Sprintf("daily:%d", snap.Version)
	h.serveChart(w, r, key, func() ([]byte, error) {
		return h.charts.DailySpending(snap.Expenses, h.clock(), 30)
	})
}

func (h *Handler) serveChart(w http.ResponseWriter, r *http.Request, key string, render func() ([]byte, error)) {
	img, ok := h.chartCache.Get(key)
	if !ok {
		var err error
		img, err = render()
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Chart rendering failed",
				applog.FieldOperation, applog.OpRender,
				applog.FieldError, err)
			writeError(w, http.StatusInternalServerError, "chart rendering failed")
			return
		}
		if img != nil {
			h.chartCache.Set(key, img)
		}
	}
	if img == nil {
		writeError(w, http.StatusNotFound, "no data to chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.store.Snapshot().Loading {
		writeError(w, http.StatusServiceUnavailable, "store still loading")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
