package attendance

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/transport"
	"github.com/peoplekit/hrcore/internal/workflow"
	"github.com/peoplekit/hrcore/pkg/logger"
)

type ServiceAPI interface {
	SubmitCorrection(ctx context.Context, actor *authz.Actor, dto CreateCorrectionDTO) (*Correction, error)
	GetCorrection(ctx context.Context, actor *authz.Actor, id int64) (*Correction, error)
	ListCorrections(ctx context.Context, actor *authz.Actor, limit, offset int) ([]*Correction, error)
	Transition(ctx context.Context, actor *authz.Actor, id int64, action string, notes *string) (*Correction, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) SubmitCorrection(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCorrectionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.SubmitCorrection(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetCorrection(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid correction ID")
		return
	}

	c, err := h.Service.GetCorrection(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) ListCorrections(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := transport.Pagination(r)

	corrections, err := h.Service.ListCorrections(r.Context(), actor, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, corrections)
}

func (h *Handler) ApproveCorrection(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionApprove)
}

func (h *Handler) RejectCorrection(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, workflow.ActionReject)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string) {
	actor, ok := authz.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid correction ID")
		return
	}

	var dto TransitionDTO
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.Service.Transition(r.Context(), actor, id, action, dto.Notes)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}
