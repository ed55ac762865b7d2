package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRectNormalizesCorners(t *testing.T) {
	r := NewRect(P(3, 0), P(1, 2))
	assert.Equal(t, Rect{RowMin: 1, ColMin: 0, RowMax: 3, ColMax: 2}, r)
}

func TestRectContainsIsInclusive(t *testing.T) {
	r := NewRect(P(1, 1), P(2, 3))
	tests := []struct {
		name string
		pos  Pos
		want bool
	}{
		{"top-left corner", P(1, 1), true},
		{"bottom-right corner", P(2, 3), true},
		{"inside", P(2, 2), true},
		{"above", P(0, 2), false},
		{"right of", P(1, 4), false},
		{"left of", P(2, 0), false},
		{"below", P(3, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.pos))
		})
	}
}

func TestPosOrderingIsRowMajor(t *testing.T) {
	ps := []Pos{P(1, 0), P(0, 2), P(0, 1), P(1, -1)}
	SortPositions(ps)
	assert.Equal(t, []Pos{P(0, 1), P(0, 2), P(1, -1), P(1, 0)}, ps)
	assert.True(t, P(0, 5).Less(P(1, 0)))
	assert.Equal(t, 0, P(2, 2).Compare(P(2, 2)))
}

func TestInBoard(t *testing.T) {
	assert.True(t, P(3, 3).InBoard(4, 4))
	assert.False(t, P(4, 0).InBoard(4, 4))
	assert.False(t, P(0, -1).InBoard(4, 4))
}

func TestTilesRowMajor(t *testing.T) {
	assert.Equal(t, []Pos{P(0, 0), P(0, 1), P(1, 0), P(1, 1)}, Tiles(2, 2))
	assert.Nil(t, Tiles(0, 3))
}

func TestPosYAMLRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(P(4, 7))
	require.NoError(t, err)
	assert.Equal(t, "[4, 7]\n", string(out))

	var p Pos
	require.NoError(t, yaml.Unmarshal(out, &p))
	assert.Equal(t, P(4, 7), p)

	require.Error(t, yaml.Unmarshal([]byte("[1, 2, 3]"), &p))
}
