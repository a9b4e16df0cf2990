package engine

// ExportRegistrant is the wire shape for one registrant in the JSON export.
// Field names match what the raid planners' spreadsheet import expects.
type ExportRegistrant struct {
	Name      string `json:"name"`
	DiscordID string `json:"discord_id"`
	Weight    Weight `json:"weight,omitempty"`
	Weapon    Weapon `json:"weapon,omitempty"`
	Weapon2   Weapon `json:"weapon_2,omitempty"`
	Spec      int    `json:"spec,omitempty"`
}

type ExportDoc struct {
	ID            int                         `json:"id"`
	Name          string                      `json:"name"`
	Registrations map[Role][]ExportRegistrant `json:"registrations"`
}

// Export builds the JSON document for a war. Identity-only buckets are
// included or skipped per the taxonomy's export policy; their entries carry
// identity fields only.
func Export(id int, name string, s State) ExportDoc {
	doc := ExportDoc{
		ID:            id,
		Name:          name,
		Registrations: map[Role][]ExportRegistrant{},
	}

	for _, rs := range s.Taxonomy.Roles {
		if !rs.TracksEquipment && !s.Taxonomy.ExportIncludesAbsent {
			continue
		}
		out := []ExportRegistrant{}
		for _, r := range s.Buckets[rs.Name] {
			er := ExportRegistrant{Name: r.Name, DiscordID: r.UserID}
			if rs.TracksEquipment {
				er.Weight = r.Weight
				er.Weapon = r.Weapon1
				er.Weapon2 = r.Weapon2
				er.Spec = r.Ordinal
			}
			out = append(out, er)
		}
		doc.Registrations[rs.Name] = out
	}
	return doc
}
