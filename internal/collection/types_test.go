package collection

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/pack-sim/internal/catalog"
)

func TestDecodeState_Corrupt(t *testing.T) {
	for _, in := range []string{"{not json", "", "[1,2]"} {
		_, err := DecodeState([]byte(in))
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, ErrStateCorrupt), "input %q", in)
	}
}

func TestDecodeState_Null(t *testing.T) {
	s, err := DecodeState([]byte("null"))
	require.NoError(t, err)
	assert.Equal(t, EmptyState(), s)
}

func TestEncodeDecode(t *testing.T) {
	in := State{
		Inventory: map[string]int{"swsh1-1": 3},
		History: []HistoryEntry{{
			ID:         1709294400000,
			Timestamp:  "2024-03-01T12:00:00.000Z",
			SetName:    "Espada y Escudo",
			Cards:      []catalog.Card{{ID: "swsh1-1", Name: "Celebi V", Rarity: "Rara Holo V"}},
			TotalValue: "4.10",
		}},
	}
	b, err := EncodeState(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"totalValue":"4.10"`)
	assert.Contains(t, string(b), `"setName":"Espada y Escudo"`)

	out, err := DecodeState(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeState_NilFields(t *testing.T) {
	b, err := EncodeState(State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"inventory":{},"history":[]}`, string(b))
}

func TestClone(t *testing.T) {
	s := State{Inventory: map[string]int{"a": 1}, History: []HistoryEntry{{ID: 1}}}
	c := s.Clone()
	c.Inventory["a"] = 7
	c.History[0].ID = 9
	assert.Equal(t, 1, s.Inventory["a"])
	assert.Equal(t, int64(1), s.History[0].ID)
}
