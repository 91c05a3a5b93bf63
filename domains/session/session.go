package session

import (
	"context"
	"errors"
	"time"
)

// ErrConflict signals that a concurrent writer updated the session between
// the caller's load and its Upsert.
var ErrConflict = errors.New("session update conflict")

// Pickup is one loading location in a multi-pickup move (1..3).
type Pickup struct {
	Addr  string `json:"addr"`
	Floor string `json:"floor"`
}

// GeoPoint is a GPS pin shared by the user during an address step.
type GeoPoint struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name,omitempty"`
	Address string  `json:"address,omitempty"`
}

// ItemCount is one recognized catalog item with its quantity.
type ItemCount struct {
	Key string `json:"key"`
	Qty int    `json:"qty"`
}

// Estimate is the computed price range with its breakdown.
type Estimate struct {
	Min       int            `json:"min"`
	Max       int            `json:"max"`
	Currency  string         `json:"currency"`
	Breakdown map[string]any `json:"breakdown,omitempty"`
}

// RouteInfo is the result of text-based route classification.
type RouteInfo struct {
	Band         string `json:"band"`
	FromLocality string `json:"from_locality,omitempty"`
	ToLocality   string `json:"to_locality,omitempty"`
	FromRegion   string `json:"from_region,omitempty"`
	ToRegion     string `json:"to_region,omitempty"`
}

// LeadData is the structured payload collected across the conversation.
// Loose provider/landing hints live in Ext; everything pricing or dispatch
// reads is a typed field.
type LeadData struct {
	CargoDescription string      `json:"cargo_description,omitempty"`
	CargoRaw         string      `json:"cargo_raw,omitempty"`
	CargoItems       []ItemCount `json:"cargo_items,omitempty"`

	VolumeCategory  string `json:"volume_category,omitempty"` // small|medium|large|xl
	VolumeFromRooms bool   `json:"volume_from_rooms,omitempty"`
	VolumeFromItems bool   `json:"volume_from_items,omitempty"`

	PickupCount int      `json:"pickup_count,omitempty"`
	Pickups     []Pickup `json:"pickups,omitempty"`
	PendingAddr string   `json:"pending_addr,omitempty"` // address awaiting its floor

	AddrFrom  string `json:"addr_from,omitempty"`
	AddrTo    string `json:"addr_to,omitempty"`
	FloorFrom string `json:"floor_from,omitempty"`
	FloorTo   string `json:"floor_to,omitempty"`

	MoveDate      string `json:"move_date,omitempty"` // ISO YYYY-MM-DD
	MoveDateLabel string `json:"move_date_label,omitempty"`
	TimeSlot      string `json:"time_slot,omitempty"`
	ExactTime     string `json:"exact_time,omitempty"`
	TimeWindow    string `json:"time_window,omitempty"`

	HasPhotos  bool `json:"has_photos,omitempty"`
	PhotoCount int  `json:"photo_count,omitempty"`

	Extras      []string `json:"extras,omitempty"`
	DetailsFree string   `json:"details_free,omitempty"`

	GeoPoints map[string]GeoPoint `json:"geo_points,omitempty"`

	Estimate                *Estimate `json:"estimate,omitempty"`
	EstimateSuppressed      bool      `json:"estimate_suppressed,omitempty"`
	EstimateDisplayDisabled bool      `json:"estimate_display_disabled,omitempty"`

	Route *RouteInfo `json:"route,omitempty"`

	SessionLanguage string `json:"session_language,omitempty"`

	Ext map[string]string `json:"ext,omitempty"`
}

// SetExt stores a loose extension value, allocating the map on first use.
func (d *LeadData) SetExt(key, value string) {
	if d.Ext == nil {
		d.Ext = map[string]string{}
	}
	d.Ext[key] = value
}

// GetExt returns a loose extension value or "".
func (d *LeadData) GetExt(key string) string {
	if d.Ext == nil {
		return ""
	}
	return d.Ext[key]
}

// State is the per-chat conversation state.
type State struct {
	TenantID  string
	ChatID    string
	LeadID    string
	BotType   string
	Step      string
	Language  string
	Data      LeadData
	UpdatedAt time.Time
}

// IStore persists conversation sessions keyed by (tenant_id, chat_id).
// Upsert carries the updated_at value observed at load time; a mismatch
// means a concurrent writer won and the store returns ErrConflict.
type IStore interface {
	Get(ctx context.Context, tenantID, chatID string) (*State, error)
	Upsert(ctx context.Context, st *State, observedAt time.Time) error
	Delete(ctx context.Context, tenantID, chatID string) error
	CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error)
}
