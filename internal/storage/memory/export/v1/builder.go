package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OCAP2/armory/pkg/core"
)

// ErrUnsupportedVersion is returned for exports written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported export version")

// Build wraps a campaign in a v1 export
func Build(c *core.Campaign, at time.Time) Export {
	export := Export{
		ExportVersion: Version,
		ExportedAt:    at.UTC(),
		Campaign:      *c,
	}

	s := &export.Summary
	s.Units = len(c.Units)
	for _, u := range c.Units {
		for _, p := range u.Parts {
			if p.Missing {
				s.MissingParts++
				continue
			}
			s.Parts++
			if p.BinKind != "" {
				s.AmmoBins++
			}
		}
	}
	for _, st := range c.Stock {
		s.PooledRounds += st.Shots
	}
	for _, p := range c.Spares {
		s.Spares += max(p.Quantity, 1)
	}
	s.Tasks = len(c.Tasks)
	return export
}

// Decode reads a campaign from export JSON. Documents without an
// exportVersion predate the envelope and hold the campaign at the root.
func Decode(data []byte) (*core.Campaign, error) {
	var head struct {
		ExportVersion string          `json:"exportVersion"`
		Campaign      json.RawMessage `json:"campaign"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var c core.Campaign
	switch {
	case head.ExportVersion == "":
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	case majorVersion(head.ExportVersion) == Version:
		if len(head.Campaign) == 0 {
			return nil, errors.New("export has no campaign")
		}
		if err := json.Unmarshal(head.Campaign, &c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, head.ExportVersion)
	}
	return &c, nil
}

func majorVersion(v string) string {
	major, _, _ := strings.Cut(v, ".")
	return major
}
