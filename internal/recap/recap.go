// Package recap turns a war's registration state into the renderable
// summary pushed to clients. Building is a pure function of the state, so
// rebuilding twice without a mutation in between yields the same view.
package recap

import (
	"fmt"

	"github.com/kealys/nw-war-backend/internal/engine"
)

const emptyBucket = "No signups"

// Section is one role's slice of the summary, in taxonomy order.
type Section struct {
	Role  engine.Role `json:"role"`
	Count int         `json:"count"`
	Lines []string    `json:"lines"`
}

// SummaryView is the recap artifact for one war. Total counts unique users,
// not lines, so a user can never inflate it by re-registering.
type SummaryView struct {
	WarID    int       `json:"war_id"`
	Title    string    `json:"title"`
	Total    int       `json:"total"`
	Sections []Section `json:"sections"`
}

// Build renders the full summary for a war.
func Build(id int, title string, s engine.State) SummaryView {
	v := SummaryView{
		WarID:    id,
		Title:    title,
		Total:    engine.UniqueTotal(s),
		Sections: make([]Section, 0, len(s.Taxonomy.Roles)),
	}

	for _, rs := range s.Taxonomy.Roles {
		regs := s.Buckets[rs.Name]
		sec := Section{Role: rs.Name, Count: len(regs)}
		if len(regs) == 0 {
			sec.Lines = []string{emptyBucket}
		} else {
			for _, r := range regs {
				sec.Lines = append(sec.Lines, line(rs, r))
			}
		}
		v.Sections = append(v.Sections, sec)
	}
	return v
}

func line(rs engine.RoleSpec, r engine.Registrant) string {
	if !rs.TracksEquipment {
		return r.Name
	}
	return fmt.Sprintf("%s (%s | %s + %s)", r.Name, r.Weight, r.Weapon1, r.Weapon2)
}

// Columns splits the sections for side-by-side display: even taxonomy
// positions on the left, odd on the right. Pure layout, the renderer is
// free to ignore it.
func (v SummaryView) Columns() (left, right []Section) {
	for i, sec := range v.Sections {
		if i%2 == 0 {
			left = append(left, sec)
		} else {
			right = append(right, sec)
		}
	}
	return left, right
}
