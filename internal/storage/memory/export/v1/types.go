// Package v1 contains the v1 export format for campaign files.
package v1

import (
	"time"

	"github.com/OCAP2/armory/pkg/core"
)

// Version is written to every v1 export.
const Version = "1"

// Export is the root JSON structure for v1 format
type Export struct {
	ExportVersion string        `json:"exportVersion"`
	ExportedAt    time.Time     `json:"exportedAt"`
	Summary       Summary       `json:"summary"`
	Campaign      core.Campaign `json:"campaign"`
}

// Summary holds totals for readers that do not want to walk the campaign.
type Summary struct {
	Units        int `json:"units"`
	Parts        int `json:"parts"`
	MissingParts int `json:"missingParts"`
	AmmoBins     int `json:"ammoBins"`
	PooledRounds int `json:"pooledRounds"`
	Spares       int `json:"spares"`
	Tasks        int `json:"tasks"`
}
