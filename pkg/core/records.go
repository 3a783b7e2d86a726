// Package core holds the storage-facing records of a campaign armory. They
// are plain data: the engine converts to and from them, and storage
// backends persist them without knowing engine rules.
package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PartRecord is the persisted form of a part or missing part in a mount
// slot, or of a spare when Mount is -1.
type PartRecord struct {
	ID      uuid.UUID `json:"id"`
	Kind    string    `json:"kind"`
	TypeID  string    `json:"type"`
	Mount   int       `json:"mount"`
	Missing bool      `json:"missing,omitempty"`
	// Hits is the damage count for equipment and the signed shots-needed
	// deficit for ammunition bins.
	Hits      int     `json:"hits"`
	Salvaging bool    `json:"salvaging,omitempty"`
	OmniPod   bool    `json:"omniPod,omitempty"`
	Quantity  int     `json:"quantity,omitempty"`
	Tonnage   float64 `json:"tonnage,omitempty"`

	EngineRating int `json:"engineRating,omitempty"`
	Trooper      int `json:"trooper,omitempty"`

	BinKind  string  `json:"binKind,omitempty"`
	OneShot  bool    `json:"oneShot,omitempty"`
	Bay      int     `json:"bay,omitempty"`
	Size     float64 `json:"size,omitempty"`
	Weapon   string  `json:"weapon,omitempty"`
	Capacity int     `json:"fullShots,omitempty"`
	Partner  *int    `json:"partner,omitempty"`
}

// UnmarshalJSON accepts the historical "capacity" key for Size.
func (r *PartRecord) UnmarshalJSON(data []byte) error {
	type plain PartRecord
	aux := struct {
		*plain
		LegacyCapacity *float64 `json:"capacity"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.Size == 0 && aux.LegacyCapacity != nil {
		r.Size = *aux.LegacyCapacity
	}
	return nil
}

// StockRecord is a quantity of ammunition in the pool.
type StockRecord struct {
	Munition string `json:"munition"`
	Weapon   string `json:"weapon,omitempty"`
	Shots    int    `json:"shots"`
}

// LocationRecord is a unit body location.
type LocationRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Destroyed bool   `json:"destroyed,omitempty"`
	Breached  bool   `json:"breached,omitempty"`
}

// MountRecord is the simulation state of one mount.
type MountRecord struct {
	Index     int     `json:"index"`
	TypeID    string  `json:"type"`
	Location  int     `json:"location"`
	Shots     int     `json:"shots,omitempty"`
	Capacity  int     `json:"capacity,omitempty"`
	Hits      int     `json:"hits,omitempty"`
	Destroyed bool    `json:"destroyed,omitempty"`
	Missing   bool    `json:"missing,omitempty"`
	OmniPod   bool    `json:"omniPod,omitempty"`
	Linked    int     `json:"linked"`
	Bay       int     `json:"bay"`
	Size      float64 `json:"size,omitempty"`
	Trooper   int     `json:"trooper"`
}

// UnitRecord is a unit with its simulation state and its part slots.
type UnitRecord struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Kind         string           `json:"kind"`
	Tonnage      float64          `json:"tonnage"`
	EngineRating int              `json:"engineRating,omitempty"`
	SquadSize    int              `json:"squadSize,omitempty"`
	Troopers     int              `json:"troopers,omitempty"`
	Locations    []LocationRecord `json:"locations"`
	Mounts       []MountRecord    `json:"mounts"`
	Parts        []PartRecord     `json:"parts"`
}

// TaskRecord is a queued repair task.
type TaskRecord struct {
	Unit    uuid.UUID `json:"unit"`
	Mount   int       `json:"mount"`
	Salvage bool      `json:"salvage,omitempty"`
}

// Campaign is everything a storage backend saves.
type Campaign struct {
	Name   string        `json:"name"`
	Day    time.Time     `json:"day"`
	Units  []UnitRecord  `json:"units"`
	Stock  []StockRecord `json:"stock"`
	Spares []PartRecord  `json:"spares"`
	Tasks  []TaskRecord  `json:"tasks,omitempty"`
}
