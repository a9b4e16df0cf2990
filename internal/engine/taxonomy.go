package engine

type Role string

type Weight string

type Weapon string

const (
	WeightLight  Weight = "light"
	WeightMedium Weight = "medium"
	WeightHeavy  Weight = "heavy"
)

var Weights = []Weight{WeightLight, WeightMedium, WeightHeavy}

// Weapon catalog. Codes are the in-game shorthand the guild already uses.
var Weapons = []Weapon{
	"SnS", "FnS", "WH", "GA", "Spear", "Hatchet",
	"Bow", "Musket", "FS", "LS", "IG", "VG", "Rapier", "BB", "GS",
}

// RoleSpec describes one bucket of the taxonomy. Identity-only roles
// (TracksEquipment false) hold name-only entries, e.g. Absent.
type RoleSpec struct {
	Name            Role
	TracksEquipment bool
}

// Taxonomy is the per-war role configuration. The bucket list is fixed at
// war creation and never changes afterwards.
type Taxonomy struct {
	Roles []RoleSpec

	// UseOrdinals assigns each user an increasing "spec" number per
	// confirmed registration, so repeat signups by the same user can be
	// told apart in the export.
	UseOrdinals bool

	// AbsentCountsRegistered controls whether users in an identity-only
	// bucket are excluded from the Unregistered diff. When false, absent
	// users still show up in reminder sweeps.
	AbsentCountsRegistered bool

	// ExportIncludesAbsent controls whether identity-only buckets appear
	// in the JSON export.
	ExportIncludesAbsent bool
}

// DefaultTaxonomy is the six-role lineup plus an Absent bucket, with spec
// ordinals enabled.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Roles: []RoleSpec{
			{Name: "Tank", TracksEquipment: true},
			{Name: "Healer", TracksEquipment: true},
			{Name: "Debuffer", TracksEquipment: true},
			{Name: "Bruiser", TracksEquipment: true},
			{Name: "Assassins", TracksEquipment: true},
			{Name: "DPS", TracksEquipment: true},
			{Name: "Absent", TracksEquipment: false},
		},
		UseOrdinals:            true,
		AbsentCountsRegistered: true,
		ExportIncludesAbsent:   true,
	}
}

// ClassicTaxonomy is the older five-role lineup. No ordinals, absent users
// still count as unregistered for reminders, and the export skips them.
func ClassicTaxonomy() Taxonomy {
	return Taxonomy{
		Roles: []RoleSpec{
			{Name: "Tank", TracksEquipment: true},
			{Name: "Healer", TracksEquipment: true},
			{Name: "Debuffer", TracksEquipment: true},
			{Name: "Assa", TracksEquipment: true},
			{Name: "DPS", TracksEquipment: true},
			{Name: "Absent", TracksEquipment: false},
		},
	}
}

// Find returns the spec for a role, or ok=false if the taxonomy doesn't
// have that bucket.
func (t Taxonomy) Find(role Role) (RoleSpec, bool) {
	for _, rs := range t.Roles {
		if rs.Name == role {
			return rs, true
		}
	}
	return RoleSpec{}, false
}

// AbsentRole returns the identity-only bucket, if the taxonomy has one.
func (t Taxonomy) AbsentRole() (Role, bool) {
	for _, rs := range t.Roles {
		if !rs.TracksEquipment {
			return rs.Name, true
		}
	}
	return "", false
}

func validWeight(w Weight) bool {
	for _, v := range Weights {
		if v == w {
			return true
		}
	}
	return false
}

func validWeapon(w Weapon) bool {
	for _, v := range Weapons {
		if v == w {
			return true
		}
	}
	return false
}
