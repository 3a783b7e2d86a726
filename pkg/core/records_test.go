package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartRecord_LegacyCapacity(t *testing.T) {
	var rec PartRecord
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"ammo_bin","type":"cap-ammo-barracuda","mount":4,"hits":-1,"binKind":"bay","capacity":3}`), &rec))

	assert.Equal(t, 3.0, rec.Size)
	assert.Equal(t, -1, rec.Hits)
	assert.Equal(t, 4, rec.Mount)
}

func TestPartRecord_SizeWins(t *testing.T) {
	var rec PartRecord
	require.NoError(t, json.Unmarshal([]byte(`{"type":"inf-ammo-srm","size":2,"capacity":5,"fullShots":4}`), &rec))

	assert.Equal(t, 2.0, rec.Size)
	assert.Equal(t, 4, rec.Capacity)
}

func TestPartRecord_MarshalUsesSize(t *testing.T) {
	partner := 2
	data, err := json.Marshal(PartRecord{TypeID: "inf-ammo-srm", Mount: 1, Size: 3, Partner: &partner})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"size":3`)
	assert.Contains(t, string(data), `"partner":2`)
	assert.NotContains(t, string(data), `"capacity"`)
}
