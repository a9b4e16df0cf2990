package engine

import "errors"

var ErrEventNotFound = errors.New("war not found")
var ErrIncompleteSelection = errors.New("incomplete selection")
var ErrDuplicateWeapon = errors.New("duplicate weapon selection")
var ErrUnauthorized = errors.New("unauthorized")
var ErrUnknownRole = errors.New("unknown role")
var ErrUnknownWeight = errors.New("unknown weight")
var ErrUnknownWeapon = errors.New("unknown weapon")
var ErrNoAbsentBucket = errors.New("taxonomy has no absent bucket")
var ErrUnsupportedCommand = errors.New("unsupported command")

// Registrant is one confirmed entry inside a role bucket. Name is a snapshot
// taken at confirmation time. Identity-only entries (Absent) leave the
// equipment fields zero.
type Registrant struct {
	UserID  string
	Name    string
	Weight  Weight
	Weapon1 Weapon
	Weapon2 Weapon
	Ordinal int
}

// Selection is a user's in-progress, uncommitted choice sequence. An empty
// field means "not chosen yet".
type Selection struct {
	Role    Role
	Weight  Weight
	Weapon1 Weapon
	Weapon2 Weapon
}

// State is everything one war owns: the confirmed buckets, the in-flight
// sessions, and the per-user ordinal counters. It is only ever touched from
// the owning war actor, one command at a time.
type State struct {
	Taxonomy Taxonomy
	Buckets  map[Role][]Registrant
	Sessions map[string]Selection
	Ordinals map[string]int
}

func NewState(t Taxonomy) State {
	s := State{
		Taxonomy: t,
		Buckets:  make(map[Role][]Registrant, len(t.Roles)),
		Sessions: map[string]Selection{},
		Ordinals: map[string]int{},
	}
	for _, rs := range t.Roles {
		s.Buckets[rs.Name] = []Registrant{}
	}
	return s
}

type CommandType string

const (
	CmdChooseRole   CommandType = "ChooseRole"
	CmdChooseWeight CommandType = "ChooseWeight"
	CmdChooseWeapon CommandType = "ChooseWeapon"
	CmdConfirm      CommandType = "Confirm"
	CmdMarkAbsent   CommandType = "MarkAbsent"
	CmdReset        CommandType = "Reset"
)

type Command struct {
	Type   CommandType
	UserID string
	Name   string
	Role   Role
	Weight Weight
	Weapon Weapon
	Slot   int // weapon slot, 1 or 2; 0 = first empty slot

	// Authorized is asserted by the transport layer after checking the
	// caller against the privileged allowlist. Only Reset looks at it.
	Authorized bool
}

type EventType string

const (
	EvtRegistrationConfirmed EventType = "RegistrationConfirmed"
	EvtMarkedAbsent          EventType = "MarkedAbsent"
	EvtRegistrationsReset    EventType = "RegistrationsReset"
)

// Event records a committed change to the registration buckets. Session-only
// steps (role/weight/weapon picks) emit no events, so the caller can rebuild
// the recap exactly when confirmed data moved.
type Event struct {
	Type   EventType
	UserID string
	Role   Role
}

// Apply runs one command against the state. On error the state is returned
// unchanged and no events are emitted; a user never half-registers.
func Apply(s State, cmd Command) ([]Event, State, error) {
	newState := s

	switch cmd.Type {
	case CmdChooseRole:
		spec, ok := s.Taxonomy.Find(cmd.Role)
		if !ok {
			return nil, s, ErrUnknownRole
		}

		// Absent short-circuits the whole chain: it is terminal and
		// commits immediately, same as MarkAbsent.
		if !spec.TracksEquipment {
			return markAbsent(newState, cmd.UserID, cmd.Name, spec.Name)
		}

		// Re-entrant: picking a role again wipes the partial choices but
		// never touches confirmed buckets.
		newState.Sessions[cmd.UserID] = Selection{Role: cmd.Role}
		return nil, newState, nil

	case CmdChooseWeight:
		if !validWeight(cmd.Weight) {
			return nil, s, ErrUnknownWeight
		}
		sel, ok := s.Sessions[cmd.UserID]
		if !ok || sel.Role == "" {
			return nil, s, ErrIncompleteSelection
		}
		sel.Weight = cmd.Weight
		newState.Sessions[cmd.UserID] = sel
		return nil, newState, nil

	case CmdChooseWeapon:
		if !validWeapon(cmd.Weapon) {
			return nil, s, ErrUnknownWeapon
		}
		sel, ok := s.Sessions[cmd.UserID]
		if !ok || sel.Role == "" {
			return nil, s, ErrIncompleteSelection
		}

		slot := cmd.Slot
		if slot == 0 {
			if sel.Weapon1 == "" {
				slot = 1
			} else {
				slot = 2
			}
		}

		// The one hard validation rule: both slots must differ. Reject,
		// don't dedupe, and leave the session untouched.
		switch slot {
		case 1:
			if sel.Weapon2 != "" && sel.Weapon2 == cmd.Weapon {
				return nil, s, ErrDuplicateWeapon
			}
			sel.Weapon1 = cmd.Weapon
		case 2:
			if sel.Weapon1 != "" && sel.Weapon1 == cmd.Weapon {
				return nil, s, ErrDuplicateWeapon
			}
			sel.Weapon2 = cmd.Weapon
		default:
			return nil, s, ErrUnsupportedCommand
		}
		newState.Sessions[cmd.UserID] = sel
		return nil, newState, nil

	case CmdConfirm:
		sel, ok := s.Sessions[cmd.UserID]
		if !ok {
			return nil, s, ErrIncompleteSelection
		}
		// Strict contract: all four choices before anything commits.
		if sel.Role == "" || sel.Weight == "" || sel.Weapon1 == "" || sel.Weapon2 == "" {
			return nil, s, ErrIncompleteSelection
		}

		reg := Registrant{
			UserID:  cmd.UserID,
			Name:    cmd.Name,
			Weight:  sel.Weight,
			Weapon1: sel.Weapon1,
			Weapon2: sel.Weapon2,
		}
		if s.Taxonomy.UseOrdinals {
			newState.Ordinals[cmd.UserID]++
			reg.Ordinal = newState.Ordinals[cmd.UserID]
		}

		removeEverywhere(newState, cmd.UserID)
		newState.Buckets[sel.Role] = append(newState.Buckets[sel.Role], reg)
		delete(newState.Sessions, cmd.UserID)

		events := []Event{
			{Type: EvtRegistrationConfirmed, UserID: cmd.UserID, Role: sel.Role},
		}
		return events, newState, nil

	case CmdMarkAbsent:
		absent, ok := s.Taxonomy.AbsentRole()
		if !ok {
			return nil, s, ErrNoAbsentBucket
		}
		return markAbsent(newState, cmd.UserID, cmd.Name, absent)

	case CmdReset:
		if !cmd.Authorized {
			return nil, s, ErrUnauthorized
		}
		for role := range newState.Buckets {
			newState.Buckets[role] = []Registrant{}
		}
		clear(newState.Sessions)
		events := []Event{{Type: EvtRegistrationsReset}}
		return events, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// markAbsent replaces the user's registration (if any) with an identity-only
// entry in the absent bucket and drops any in-flight session.
func markAbsent(s State, userID, name string, absent Role) ([]Event, State, error) {
	removeEverywhere(s, userID)
	s.Buckets[absent] = append(s.Buckets[absent], Registrant{UserID: userID, Name: name})
	delete(s.Sessions, userID)

	events := []Event{{Type: EvtMarkedAbsent, UserID: userID, Role: absent}}
	return events, s, nil
}
