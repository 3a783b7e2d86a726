package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/armory/internal/model"
	"github.com/OCAP2/armory/pkg/core"
)

func sampleCampaign() core.Campaign {
	unitID := uuid.New()
	partner := 2
	return core.Campaign{
		Name: "Kell Hounds",
		Day:  time.Date(3025, 3, 1, 0, 0, 0, 0, time.UTC),
		Units: []core.UnitRecord{{
			ID:        unitID,
			Name:      "Foot Platoon",
			Kind:      "infantry",
			Tonnage:   3,
			SquadSize: 7,
			Troopers:  7,
			Locations: []core.LocationRecord{{ID: 0, Name: "Platoon"}},
			Mounts: []core.MountRecord{
				{Index: 0, TypeID: "inf-auto-rifle", Linked: 1, Bay: -1, Trooper: -1},
				{Index: 1, TypeID: "inf-ammo-auto-rifle", Shots: 20, Linked: 2, Bay: -1, Size: 3, Trooper: -1},
			},
			Parts: []core.PartRecord{
				{ID: uuid.New(), Kind: "ammo_bin", TypeID: "inf-ammo-auto-rifle", Mount: 1, Hits: 10,
					Quantity: 1, BinKind: "infantry", Bay: -1, Size: 3, Weapon: "inf-auto-rifle", Partner: &partner},
				{ID: uuid.New(), Kind: "equipment", TypeID: "inf-auto-rifle", Mount: 0, Missing: true, Trooper: -1},
			},
		}},
		Stock: []core.StockRecord{
			{Munition: "inf-ammo-auto-rifle", Weapon: "inf-auto-rifle", Shots: 50},
			{Munition: "is-ammo-lrm-20", Shots: 18},
		},
		Spares: []core.PartRecord{
			{ID: uuid.New(), Kind: "heatsink", TypeID: "heat-sink", Mount: -1, Quantity: 3, Tonnage: 1},
		},
		Tasks: []core.TaskRecord{
			{Unit: unitID, Mount: 1},
			{Unit: unitID, Mount: 0, Salvage: true},
		},
	}
}

func TestCoreToRows(t *testing.T) {
	c := sampleCampaign()

	rows, err := CoreToRows(c)
	require.NoError(t, err)

	assert.Equal(t, "Kell Hounds", rows.Campaign.Name)
	require.Len(t, rows.Units, 1)
	assert.Equal(t, c.Units[0].ID.String(), rows.Units[0].UnitID)
	require.Len(t, rows.Parts, 3)
	assert.Equal(t, c.Units[0].ID.String(), rows.Parts[0].UnitID)
	assert.Empty(t, rows.Parts[2].UnitID, "spares have no unit")
	assert.Len(t, rows.Stock, 2)
	require.Len(t, rows.Tasks, 2)
	assert.Equal(t, 1, rows.Tasks[1].Position)

	var extra model.PartExtra
	require.NoError(t, json.Unmarshal(rows.Parts[0].Extra, &extra))
	assert.Equal(t, "infantry", extra.BinKind)
	assert.Equal(t, 3.0, extra.Size)
	require.NotNil(t, extra.Partner)
	assert.Equal(t, 2, *extra.Partner)
}

func TestRoundTrip(t *testing.T) {
	c := sampleCampaign()

	rows, err := CoreToRows(c)
	require.NoError(t, err)
	rows.SetCampaignID(7)
	assert.Equal(t, uint(7), rows.Parts[1].CampaignID)
	assert.Equal(t, uint(7), rows.Tasks[0].CampaignID)

	// storage may hand rows back in any order
	rows.Tasks[0], rows.Tasks[1] = rows.Tasks[1], rows.Tasks[0]

	back, err := RowsToCore(rows)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestRowsToCore_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows Rows
	}{
		{"bad unit id", Rows{Units: []model.Unit{{UnitID: "nope"}}}},
		{"bad part id", Rows{Parts: []model.Part{{PartID: "nope"}}}},
		{"orphan part", Rows{Parts: []model.Part{{PartID: uuid.NewString(), UnitID: uuid.NewString()}}}},
		{"bad extra", Rows{Parts: []model.Part{{PartID: uuid.NewString(), Extra: []byte("{")}}}},
		{"bad task unit", Rows{Tasks: []model.Task{{UnitID: "x"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RowsToCore(tt.rows)
			assert.Error(t, err)
		})
	}
}
