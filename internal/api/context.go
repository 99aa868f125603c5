package api

import (
	"context"
	"net/http"
	"time"

	"github.com/journallm/journallm/internal/api/respond"
	"github.com/journallm/journallm/internal/api/validate"
	"github.com/journallm/journallm/internal/model"
)

// WindowSource builds context windows by explicit range or trailing days.
type WindowSource interface {
	Window(ctx context.Context, start, end time.Time) (*model.ContextWindow, error)
	Recent(ctx context.Context, days int) (*model.ContextWindow, error)
}

type ContextHandler struct {
	windows WindowSource
}

func NewContextHandler(ws WindowSource) *ContextHandler {
	return &ContextHandler{windows: ws}
}

type contextResponse struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Entries   []model.JournalEntry `json:"entries"`
	Metrics   model.MetricAverages `json:"metrics"`
	Text      string               `json:"text"`
}

const maxContextDays = 3660

// HandleGetContext handles GET /api/context?start_date=&end_date= or ?days=N
func (h *ContextHandler) HandleGetContext(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		window *model.ContextWindow
		err    error
	)
	if q.Get("days") != "" {
		days, verr := validate.IntInRange("days", q.Get("days"), 0, 1, maxContextDays)
		if verr != nil {
			respond.WriteBadRequest(w, verr.Error())
			return
		}
		window, err = h.windows.Recent(r.Context(), days)
	} else {
		start, end, verr := validate.DateRange("start_date", q.Get("start_date"), "end_date", q.Get("end_date"))
		if verr != nil {
			respond.WriteBadRequest(w, verr.Error())
			return
		}
		window, err = h.windows.Window(r.Context(), start, end)
	}
	if err != nil {
		respond.WriteDomainError(w, err, "Failed to build context window")
		return
	}

	entries := window.Entries
	if entries == nil {
		entries = []model.JournalEntry{}
	}
	respond.WriteJSON(w, http.StatusOK, contextResponse{
		StartDate: window.Start.Format(model.DateLayout),
		EndDate:   window.End.Format(model.DateLayout),
		Entries:   entries,
		Metrics:   window.Averages,
		Text:      window.Text,
	})
}
