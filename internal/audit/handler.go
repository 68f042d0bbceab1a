package audit

import (
	"net/http"
	"strconv"

	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/transport"
	"github.com/peoplekit/hrcore/pkg/logger"
)

type ServiceAPI interface {
	List(actor *authz.Actor, filter Filter) ([]*Entry, error)
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

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	filter := Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
	}
	if raw := q.Get("actor_id"); raw != "" {
		if actorID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ActorID = actorID
		}
	}
	filter.Limit, filter.Offset = transport.Pagination(r)

	entries, err := h.Service.List(actor, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entries)
}
