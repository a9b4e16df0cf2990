package engine

// removeEverywhere drops every entry for userID from every bucket. This is
// the single place enforcing one-registration-per-user: both confirm and
// absence marking go through it before inserting.
func removeEverywhere(s State, userID string) {
	for role, regs := range s.Buckets {
		kept := regs[:0]
		for _, r := range regs {
			if r.UserID != userID {
				kept = append(kept, r)
			}
		}
		s.Buckets[role] = kept
	}
}

// RegisteredIDs returns the union of user ids across buckets. When the
// taxonomy says absent users don't count as registered, identity-only
// buckets are skipped.
func RegisteredIDs(s State) map[string]bool {
	ids := map[string]bool{}
	for _, rs := range s.Taxonomy.Roles {
		if !rs.TracksEquipment && !s.Taxonomy.AbsentCountsRegistered {
			continue
		}
		for _, r := range s.Buckets[rs.Name] {
			ids[r.UserID] = true
		}
	}
	return ids
}

// Unregistered is the set difference candidates minus registered ids,
// order unspecified.
func Unregistered(s State, candidates []string) []string {
	registered := RegisteredIDs(s)
	missing := []string{}
	seen := map[string]bool{}
	for _, id := range candidates {
		if registered[id] || seen[id] {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	return missing
}

// UniqueTotal counts distinct registered users across all buckets, absent
// included. By the single-membership invariant this equals the sum of
// bucket sizes, but counting the union keeps the recap honest either way.
func UniqueTotal(s State) int {
	ids := map[string]bool{}
	for _, regs := range s.Buckets {
		for _, r := range regs {
			ids[r.UserID] = true
		}
	}
	return len(ids)
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
