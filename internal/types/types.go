package types

import "github.com/kealys/nw-war-backend/internal/recap"

// ClientMessage is one inbound selection step over the websocket.
// Type: "ChooseRole" | "ChooseWeight" | "ChooseWeapon" | "Confirm" |
// "MarkAbsent" | "Reset".
type ClientMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	Weight string `json:"weight,omitempty"`
	Weapon string `json:"weapon,omitempty"`
	Slot   int    `json:"slot,omitempty"` // weapon slot, 1 or 2
}

// ServerMessage is either a recap snapshot or a typed error for the sender.
type ServerMessage struct {
	Type    string             `json:"type"` // "RecapSnapshot" | "Error"
	Version int                `json:"version,omitempty"`
	Recap   *recap.SummaryView `json:"recap,omitempty"`
	Code    string             `json:"code,omitempty"`
	Error   string             `json:"error,omitempty"`
}
