// internal/app/features/organizations/auditlog.go
package organizations

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/audit"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/paging"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeAudit lists an organization's audit events newest first. It accepts
// ?category=, ?event_type=, ?since= (RFC 3339) and the paging parameters.
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	id := orgID(r)
	if !authz.FromRequest(r).CanUpdateOrganization(id) {
		apperr.WriteError(w, apperr.ErrForbidden)
		return
	}

	page := paging.Parse(r)
	filter := audit.QueryFilter{
		OrganizationID: id,
		Category:       query.Get(r, "category"),
		EventType:      query.Get(r, "event_type"),
		Limit:          page.Limit,
		Offset:         page.Offset,
	}
	if s := query.Get(r, "since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.ErrLog.JSON(w, r, "audit: bad request", apperr.Invalid("since", "Since must be an RFC 3339 time."))
			return
		}
		filter.StartTime = &t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.JSON(w, r, "audit query failed", err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.JSON(w, r, "audit count failed", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, paging.NewList(events, total, page))
}
