package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/journallm/journallm/internal/api/respond"
	"github.com/journallm/journallm/internal/api/validate"
	"github.com/journallm/journallm/internal/model"
	"github.com/journallm/journallm/internal/whoop"
)

// nextTokenHeader carries the continuation token of a collection page.
const nextTokenHeader = "X-Next-Token"

const notAuthenticatedMsg = "Not authenticated with WHOOP. Please login at /api/whoop/login"

// WhoopDataHandler proxies vendor data for the authenticated session.
type WhoopDataHandler struct {
	tokens  *whoop.TokenStore
	baseURL string
}

func NewWhoopDataHandler(tokens *whoop.TokenStore, apiBaseURL string) *WhoopDataHandler {
	return &WhoopDataHandler{tokens: tokens, baseURL: apiBaseURL}
}

func (h *WhoopDataHandler) client(w http.ResponseWriter) (*whoop.Client, bool) {
	sess, ok := h.tokens.Session()
	if !ok {
		respond.WriteUnauthorized(w, notAuthenticatedMsg)
		return nil, false
	}
	return whoop.NewClient(h.baseURL, sess.AccessToken), true
}

// HandleProfile handles GET /api/whoop/data/profile
func (h *WhoopDataHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w)
	if !ok {
		return
	}
	profile, err := c.Profile(r.Context())
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	body, err := c.BodyMeasurement(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("body measurement unavailable")
		body = nil
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"body":    body,
	})
}

// HandleCollection handles GET /api/whoop/data/{kind} for cycles, sleep,
// recovery and workouts. The body is the bare record list.
func (h *WhoopDataHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := validate.OptionalDate("start_date", q.Get("start_date"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	end, err := validate.OptionalDate("end_date", q.Get("end_date"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	limit, err := validate.IntInRange("limit", q.Get("limit"), whoop.DefaultLimit, 1, whoop.MaxLimit)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	c, ok := h.client(w)
	if !ok {
		return
	}
	query := whoop.Query{Start: start, End: end, Limit: limit, NextToken: q.Get("next_token")}

	var (
		records any
		next    string
	)
	switch kind := mux.Vars(r)["kind"]; kind {
	case "cycles":
		records, next, err = c.Cycles(r.Context(), query)
	case "sleep":
		records, next, err = c.Sleep(r.Context(), query)
	case "recovery":
		records, next, err = c.Recovery(r.Context(), query)
	case "workouts":
		records, next, err = c.Workouts(r.Context(), query)
	default:
		respond.WriteError(w, http.StatusNotFound, "unknown collection "+kind)
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if next != "" {
		w.Header().Set(nextTokenHeader, next)
	}
	respond.WriteJSON(w, http.StatusOK, records)
}

type whoopSummary struct {
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Cycles    []whoop.Cycle    `json:"cycles"`
	Sleep     []whoop.Sleep    `json:"sleep"`
	Recovery  []whoop.Recovery `json:"recovery"`
	Workouts  []whoop.Workout  `json:"workouts"`
}

// HandleSummary handles GET /api/whoop/data/summary?start_date=&end_date=
func (h *WhoopDataHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := validate.DateRange("start_date", q.Get("start_date"), "end_date", q.Get("end_date"))
	if errors.Is(err, validate.ErrRangeOrder) {
		respond.WriteBadRequest(w, "start_date must be before or equal to end_date")
		return
	}
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	c, ok := h.client(w)
	if !ok {
		return
	}
	ctx := r.Context()
	out := whoopSummary{StartDate: start.Format(model.DateLayout), EndDate: end.Format(model.DateLayout)}
	if out.Cycles, err = c.AllCycles(ctx, start, end); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if out.Sleep, err = c.AllSleep(ctx, start, end); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if out.Recovery, err = c.AllRecovery(ctx, start, end); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if out.Workouts, err = c.AllWorkouts(ctx, start, end); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
