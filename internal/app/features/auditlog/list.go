// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/audit"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/app/system/viewdata"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	pageSize   = 50
	dateLayout = "2006-01-02"
)

// ServeList handles GET /audit: the events of the current organization,
// newest first, filtered by category, event type and date range.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	orgID := authz.FromRequest(r).CurrentOrgID()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit Log", "/dashboard"),
		Categories: allCategories(),
	}
	filter := parseFilter(r, orgID, &data)
	data.EventTypes = eventTypesForCategory(data.Category)

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.HTML(w, r, "query audit events failed", err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.HTML(w, r, "count audit events failed", err)
		return
	}

	names := h.resolveNames(ctx, events)
	data.Items = buildItems(events, names, viewerLocation(r))
	data.pager = newPager(data.Page, total, len(data.Items))

	templates.Render(w, r, "audit_list", data)
}

// parseFilter reads the query string into a store filter scoped to orgID
// and echoes the accepted values into data. Unknown categories, event types
// and malformed dates are dropped.
func parseFilter(r *http.Request, orgID string, data *listData) audit.QueryFilter {
	data.Page = 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		data.Page = p
	}

	f := audit.QueryFilter{
		OrganizationID: orgID,
		Limit:          pageSize,
		Offset:         int64((data.Page - 1) * pageSize),
	}

	if c := strings.TrimSpace(query.Get(r, "category")); knownCategory(c) {
		f.Category = c
		data.Category = c
	}
	if t := strings.TrimSpace(query.Get(r, "event_type")); t != "" && knownEventType(data.Category, t) {
		f.EventType = t
		data.EventType = t
	}
	if s := strings.TrimSpace(query.Get(r, "start_date")); s != "" {
		if t, err := time.Parse(dateLayout, s); err == nil {
			f.StartTime = &t
			data.StartDate = s
		}
	}
	if s := strings.TrimSpace(query.Get(r, "end_date")); s != "" {
		if t, err := time.Parse(dateLayout, s); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			f.EndTime = &end
			data.EndDate = s
		}
	}
	return f
}

// resolveNames looks up display names for every actor and target in events.
// A lookup failure is logged and leaves the raw ids in place.
func (h *Handler) resolveNames(ctx context.Context, events []audit.Event) map[string]string {
	seen := make(map[string]struct{})
	for _, e := range events {
		if e.ActorID != "" {
			seen[e.ActorID] = struct{}{}
		}
		if e.UserID != "" {
			seen[e.UserID] = struct{}{}
		}
	}
	names := make(map[string]string, len(seen))
	if len(seen) == 0 {
		return names
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	profiles, err := h.Profiles.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("resolve audit names failed", zap.Error(err))
		return names
	}
	for id, p := range profiles {
		names[id] = p.FullName()
	}
	return names
}

func buildItems(events []audit.Event, names map[string]string, loc *time.Location) []listItem {
	name := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:         e.ID,
			Timestamp:  e.Timestamp.In(loc).Format("Jan 2, 2006 15:04 MST"),
			Category:   e.Category,
			EventType:  e.EventType,
			ActorName:  name(e.ActorID),
			TargetName: name(e.UserID),
			IP:         e.IP,
			Success:    e.Success,
			Reason:     e.FailureReason,
			Details:    e.Details,
		})
	}
	return items
}

// viewerLocation is the signed-in user's time zone, or UTC.
func viewerLocation(r *http.Request) *time.Location {
	tz := models.DefaultTimezone
	if p, ok := auth.GuardFrom(r).Profile(); ok && p.Timezone != "" {
		tz = p.Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

type pager struct {
	Page       int
	TotalPages int
	Total      int64
	Shown      int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

func newPager(page int, total int64, shown int) pager {
	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	p := pager{
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Shown:      shown,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
	if p.PrevPage < 1 {
		p.PrevPage = 1
	}
	if p.NextPage > totalPages {
		p.NextPage = totalPages
	}
	return p
}
