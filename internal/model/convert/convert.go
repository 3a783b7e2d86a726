// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/OCAP2/armory/internal/model"
	"github.com/OCAP2/armory/pkg/core"
)

// Rows is a campaign flattened into table rows. CampaignID is left zero on
// the children; the store sets it once the campaign row has an ID.
type Rows struct {
	Campaign model.Campaign
	Units    []model.Unit
	Parts    []model.Part
	Stock    []model.Stock
	Tasks    []model.Task
}

// SetCampaignID points every child row at the campaign row.
func (r *Rows) SetCampaignID(id uint) {
	r.Campaign.ID = id
	for i := range r.Units {
		r.Units[i].CampaignID = id
	}
	for i := range r.Parts {
		r.Parts[i].CampaignID = id
	}
	for i := range r.Stock {
		r.Stock[i].CampaignID = id
	}
	for i := range r.Tasks {
		r.Tasks[i].CampaignID = id
	}
}

// toJSON marshals v for a datatypes.JSON column.
func toJSON(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// CoreToRows flattens a campaign.
func CoreToRows(c core.Campaign) (Rows, error) {
	rows := Rows{Campaign: model.Campaign{Name: c.Name, Day: c.Day}}

	for _, u := range c.Units {
		row, err := CoreToUnit(u)
		if err != nil {
			return Rows{}, fmt.Errorf("unit %s: %w", u.Name, err)
		}
		rows.Units = append(rows.Units, row)
		for _, p := range u.Parts {
			pr, err := CoreToPart(p, u.ID.String())
			if err != nil {
				return Rows{}, fmt.Errorf("unit %s mount %d: %w", u.Name, p.Mount, err)
			}
			rows.Parts = append(rows.Parts, pr)
		}
	}
	for _, p := range c.Spares {
		pr, err := CoreToPart(p, "")
		if err != nil {
			return Rows{}, fmt.Errorf("spare %s: %w", p.TypeID, err)
		}
		rows.Parts = append(rows.Parts, pr)
	}
	for _, s := range c.Stock {
		rows.Stock = append(rows.Stock, model.Stock{Munition: s.Munition, Weapon: s.Weapon, Shots: s.Shots})
	}
	for i, t := range c.Tasks {
		rows.Tasks = append(rows.Tasks, model.Task{Position: i, UnitID: t.Unit.String(), Mount: t.Mount, Salvage: t.Salvage})
	}
	return rows, nil
}

// CoreToUnit converts a core.UnitRecord to a GORM model.Unit. Parts are not
// included.
func CoreToUnit(u core.UnitRecord) (model.Unit, error) {
	locations, err := toJSON(u.Locations)
	if err != nil {
		return model.Unit{}, err
	}
	mounts, err := toJSON(u.Mounts)
	if err != nil {
		return model.Unit{}, err
	}
	return model.Unit{
		UnitID:       u.ID.String(),
		Name:         u.Name,
		Kind:         u.Kind,
		Tonnage:      u.Tonnage,
		EngineRating: u.EngineRating,
		SquadSize:    u.SquadSize,
		Troopers:     u.Troopers,
		Locations:    locations,
		Mounts:       mounts,
	}, nil
}

// CoreToPart converts a core.PartRecord to a GORM model.Part. unitID is
// empty for spares.
func CoreToPart(p core.PartRecord, unitID string) (model.Part, error) {
	extra, err := toJSON(model.PartExtra{
		EngineRating: p.EngineRating,
		Trooper:      p.Trooper,
		BinKind:      p.BinKind,
		OneShot:      p.OneShot,
		Bay:          p.Bay,
		Size:         p.Size,
		Weapon:       p.Weapon,
		Capacity:     p.Capacity,
		Partner:      p.Partner,
	})
	if err != nil {
		return model.Part{}, err
	}
	return model.Part{
		UnitID:    unitID,
		PartID:    p.ID.String(),
		Kind:      p.Kind,
		TypeID:    p.TypeID,
		Mount:     p.Mount,
		Missing:   p.Missing,
		Hits:      p.Hits,
		Salvaging: p.Salvaging,
		OmniPod:   p.OmniPod,
		Quantity:  p.Quantity,
		Tonnage:   p.Tonnage,
		Extra:     extra,
	}, nil
}

// PartToCore converts a GORM model.Part back to a core.PartRecord.
func PartToCore(p model.Part) (core.PartRecord, error) {
	id, err := uuid.Parse(p.PartID)
	if err != nil {
		return core.PartRecord{}, fmt.Errorf("part id %q: %w", p.PartID, err)
	}
	var extra model.PartExtra
	if len(p.Extra) > 0 {
		if err := json.Unmarshal(p.Extra, &extra); err != nil {
			return core.PartRecord{}, fmt.Errorf("part %s extra: %w", p.PartID, err)
		}
	}
	return core.PartRecord{
		ID:           id,
		Kind:         p.Kind,
		TypeID:       p.TypeID,
		Mount:        p.Mount,
		Missing:      p.Missing,
		Hits:         p.Hits,
		Salvaging:    p.Salvaging,
		OmniPod:      p.OmniPod,
		Quantity:     p.Quantity,
		Tonnage:      p.Tonnage,
		EngineRating: extra.EngineRating,
		Trooper:      extra.Trooper,
		BinKind:      extra.BinKind,
		OneShot:      extra.OneShot,
		Bay:          extra.Bay,
		Size:         extra.Size,
		Weapon:       extra.Weapon,
		Capacity:     extra.Capacity,
		Partner:      extra.Partner,
	}, nil
}

// UnitToCore converts a GORM model.Unit back to a core.UnitRecord without
// parts.
func UnitToCore(u model.Unit) (core.UnitRecord, error) {
	id, err := uuid.Parse(u.UnitID)
	if err != nil {
		return core.UnitRecord{}, fmt.Errorf("unit id %q: %w", u.UnitID, err)
	}
	rec := core.UnitRecord{
		ID:           id,
		Name:         u.Name,
		Kind:         u.Kind,
		Tonnage:      u.Tonnage,
		EngineRating: u.EngineRating,
		SquadSize:    u.SquadSize,
		Troopers:     u.Troopers,
	}
	if len(u.Locations) > 0 {
		if err := json.Unmarshal(u.Locations, &rec.Locations); err != nil {
			return core.UnitRecord{}, fmt.Errorf("unit %s locations: %w", u.Name, err)
		}
	}
	if len(u.Mounts) > 0 {
		if err := json.Unmarshal(u.Mounts, &rec.Mounts); err != nil {
			return core.UnitRecord{}, fmt.Errorf("unit %s mounts: %w", u.Name, err)
		}
	}
	return rec, nil
}

// RowsToCore rebuilds a campaign. Parts are attached to their unit by
// UnitID; parts with no unit are spares. Tasks come back in queue order.
func RowsToCore(r Rows) (core.Campaign, error) {
	c := core.Campaign{Name: r.Campaign.Name, Day: r.Campaign.Day}

	byUnit := make(map[string]int, len(r.Units))
	for _, row := range r.Units {
		u, err := UnitToCore(row)
		if err != nil {
			return core.Campaign{}, err
		}
		byUnit[row.UnitID] = len(c.Units)
		c.Units = append(c.Units, u)
	}
	for _, row := range r.Parts {
		p, err := PartToCore(row)
		if err != nil {
			return core.Campaign{}, err
		}
		if row.UnitID == "" {
			c.Spares = append(c.Spares, p)
			continue
		}
		i, ok := byUnit[row.UnitID]
		if !ok {
			return core.Campaign{}, fmt.Errorf("part %s refers to unknown unit %s", row.PartID, row.UnitID)
		}
		c.Units[i].Parts = append(c.Units[i].Parts, p)
	}
	for _, row := range r.Stock {
		c.Stock = append(c.Stock, core.StockRecord{Munition: row.Munition, Weapon: row.Weapon, Shots: row.Shots})
	}

	tasks := append([]model.Task(nil), r.Tasks...)
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })
	for _, row := range tasks {
		id, err := uuid.Parse(row.UnitID)
		if err != nil {
			return core.Campaign{}, fmt.Errorf("task unit id %q: %w", row.UnitID, err)
		}
		c.Tasks = append(c.Tasks, core.TaskRecord{Unit: id, Mount: row.Mount, Salvage: row.Salvage})
	}
	return c, nil
}
