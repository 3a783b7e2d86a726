package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Campaign{},
	&Unit{},
	&Part{},
	&Stock{},
	&Task{},
}

////////////////////////
// CAMPAIGN MODELS
////////////////////////

// Campaign is one saved campaign. Child rows are replaced wholesale on save.
type Campaign struct {
	gorm.Model
	Name string    `json:"name" gorm:"size:127;uniqueIndex"`
	Day  time.Time `json:"day"`
}

func (*Campaign) TableName() string {
	return "campaigns"
}

// Unit is a unit in service. Locations and mounts are simulation state and
// are kept as JSON documents.
type Unit struct {
	ID           uint           `json:"-" gorm:"primarykey;autoIncrement"`
	CampaignID   uint           `json:"campaignId" gorm:"index:idx_unit_campaign_id"`
	Campaign     Campaign       `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:CampaignID;"`
	UnitID       string         `json:"unitId" gorm:"size:36;index:idx_unit_unit_id"`
	Name         string         `json:"name" gorm:"size:127"`
	Kind         string         `json:"kind" gorm:"size:32"`
	Tonnage      float64        `json:"tonnage"`
	EngineRating int            `json:"engineRating"`
	SquadSize    int            `json:"squadSize"`
	Troopers     int            `json:"troopers"`
	Locations    datatypes.JSON `json:"locations"`
	Mounts       datatypes.JSON `json:"mounts"`
}

func (*Unit) TableName() string {
	return "units"
}

// Part is a mounted part, a placeholder (Missing) or a spare (empty UnitID).
// Fields that only some variants carry live in Extra.
type Part struct {
	ID         uint           `json:"-" gorm:"primarykey;autoIncrement"`
	CampaignID uint           `json:"campaignId" gorm:"index:idx_part_campaign_id"`
	Campaign   Campaign       `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:CampaignID;"`
	UnitID     string         `json:"unitId" gorm:"size:36;index:idx_part_unit_id"`
	PartID     string         `json:"partId" gorm:"size:36"`
	Kind       string         `json:"kind" gorm:"size:32"`
	TypeID     string         `json:"typeId" gorm:"size:64"`
	Mount      int            `json:"mount"`
	Missing    bool           `json:"missing"`
	Hits       int            `json:"hits"`
	Salvaging  bool           `json:"salvaging"`
	OmniPod    bool           `json:"omniPod"`
	Quantity   int            `json:"quantity"`
	Tonnage    float64        `json:"tonnage"`
	Extra      datatypes.JSON `json:"extra"`
}

func (*Part) TableName() string {
	return "parts"
}

// PartExtra is the JSON document stored in Part.Extra.
type PartExtra struct {
	EngineRating int     `json:"engineRating,omitempty"`
	Trooper      int     `json:"trooper,omitempty"`
	BinKind      string  `json:"binKind,omitempty"`
	OneShot      bool    `json:"oneShot,omitempty"`
	Bay          int     `json:"bay,omitempty"`
	Size         float64 `json:"size,omitempty"`
	Weapon       string  `json:"weapon,omitempty"`
	Capacity     int     `json:"fullShots,omitempty"`
	Partner      *int    `json:"partner,omitempty"`
}

// Stock is a quantity of ammunition in the campaign pool.
type Stock struct {
	ID         uint     `json:"-" gorm:"primarykey;autoIncrement"`
	CampaignID uint     `json:"campaignId" gorm:"index:idx_stock_campaign_id"`
	Campaign   Campaign `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:CampaignID;"`
	Munition   string   `json:"munition" gorm:"size:64"`
	Weapon     string   `json:"weapon" gorm:"size:64"`
	Shots      int      `json:"shots"`
}

func (*Stock) TableName() string {
	return "stocks"
}

// Task is a queued repair task. Position keeps the queue order.
type Task struct {
	ID         uint     `json:"-" gorm:"primarykey;autoIncrement"`
	CampaignID uint     `json:"campaignId" gorm:"index:idx_task_campaign_id"`
	Campaign   Campaign `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:CampaignID;"`
	Position   int      `json:"position"`
	UnitID     string   `json:"unitId" gorm:"size:36"`
	Mount      int      `json:"mount"`
	Salvage    bool     `json:"salvage"`
}

func (*Task) TableName() string {
	return "tasks"
}
