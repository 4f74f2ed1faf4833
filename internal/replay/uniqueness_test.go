package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/slot-replay/internal/game/slot"
)

func TestCheckFirstBoardUniqueness(t *testing.T) {
	other := terminalBoard()
	other[0][0] = 8

	scripts := map[int]*Script{
		9: goodScript(9),
		3: goodScript(3),
		5: {Index: 5, Boards: []slot.Board{terminalBoard()}},
		7: {Index: 7, Boards: []slot.Board{other}},
		4: {Index: 4, Boards: []slot.Board{terminalBoard(), firstBoard()}},
		6: {Index: 6},
	}

	report := CheckFirstBoardUniqueness(scripts)
	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 3, report.Unique)
	assert.False(t, report.AllUnique())

	require.Len(t, report.Duplicates, 2)
	assert.Equal(t, []int{3, 9}, report.Duplicates[0].Indices)
	assert.Equal(t, firstBoard(), report.Duplicates[0].Board)
	assert.Equal(t, []int{4, 5}, report.Duplicates[1].Indices)
}

func TestCheckFirstBoardUniqueness_AllUnique(t *testing.T) {
	report := CheckFirstBoardUniqueness(map[int]*Script{1: goodScript(1)})
	assert.True(t, report.AllUnique())
	assert.Equal(t, 1, report.Unique)

	report = CheckFirstBoardUniqueness(nil)
	assert.True(t, report.AllUnique())
	assert.Equal(t, 0, report.Total)
}
