// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/app/system/viewdata"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
)

type memberRow struct {
	MembershipID string
	Name         string
	Email        string
	RoleLabel    string
	RoleBadge    string
	Joined       string
	Pending      bool
}

type listData struct {
	viewdata.BaseVM
	Query string
	Rows  []memberRow
	Total int
	Shown int
}

// ServeList renders the members of the current organization, highest role
// first. ?q= filters by name or email.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	eng := authz.FromRequest(r)
	orgID := eng.CurrentOrgID()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Members.ListForOrg(ctx, orgID)
	if err != nil {
		h.ErrLog.HTML(w, r, "list members failed", err)
		return
	}

	q := strings.TrimSpace(query.Get(r, "q"))
	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "Members", "/dashboard"),
		Query:  q,
		Rows:   buildRows(rows, q),
		Total:  len(rows),
	}
	data.Shown = len(data.Rows)
	templates.Render(w, r, "members_list", data)
}

// buildRows filters rows by q and sorts them by role level, then name.
func buildRows(rows []models.MemberRow, q string) []memberRow {
	needle := text.Fold(q)
	out := make([]memberRow, 0, len(rows))
	levels := make(map[string]int, len(rows))
	for _, mr := range rows {
		row := memberRow{
			MembershipID: mr.ID,
			Name:         mr.UserID,
			RoleLabel:    roles.Label(mr.Role),
			RoleBadge:    roles.BadgeClass(mr.Role),
			Joined:       mr.CreatedAt.Format("Jan 2, 2006"),
			Pending:      mr.AcceptedAt == nil,
		}
		if p := mr.UserProfile; p != nil {
			row.Name = p.FullName()
			row.Email = p.Email
		}
		if needle != "" &&
			!strings.Contains(text.Fold(row.Name), needle) &&
			!strings.Contains(text.Fold(row.Email), needle) {
			continue
		}
		levels[row.MembershipID] = roles.LevelOf(mr.Role)
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := levels[out[i].MembershipID], levels[out[j].MembershipID]
		if li != lj {
			return li > lj
		}
		return text.Fold(out[i].Name) < text.Fold(out[j].Name)
	})
	return out
}
