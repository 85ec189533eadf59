package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsNormalized(t *testing.T) {
	def := Default()
	assert.Equal(t, def, Normalize(def))
	assert.True(t, IsPermutation(def.PatternOrder))
}

func TestNormalizeOrder(t *testing.T) {
	tests := []struct {
		name  string
		order []PatternID
		want  [NumPatterns]PatternID
	}{
		{"empty", nil, [NumPatterns]PatternID{1, 2, 3, 4, 5, 6}},
		{"reordered", []PatternID{6, 5, 4, 3, 2, 1}, [NumPatterns]PatternID{6, 5, 4, 3, 2, 1}},
		{"duplicates", []PatternID{3, 3, 1, 3}, [NumPatterns]PatternID{3, 1, 2, 4, 5, 6}},
		{"invalid ids", []PatternID{0, 9, -1, 2}, [NumPatterns]PatternID{2, 1, 3, 4, 5, 6}},
		{"too long", []PatternID{2, 1, 3, 4, 5, 6, 2, 1}, [NumPatterns]PatternID{2, 1, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeOrder(tt.order)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsPermutation(got))
		})
	}
}

func TestNormalizeClamps(t *testing.T) {
	c := Default()
	c.MaxRounds = 50
	c.CurrentRound = 12
	c.BoxSeconds = 1
	c.GuidedBreathingMinutes = -3
	c.Custom.ExhaleSeconds = 99
	c.CurrentPattern = 42
	c.Button.LongPressMs = 10
	c.Button.VeryLongPressMs = 10

	n := Normalize(c)
	assert.Equal(t, MaxRoundsLimit, n.MaxRounds)
	assert.Equal(t, MaxRoundsLimit, n.CurrentRound)
	assert.Equal(t, MinBoxSeconds, n.BoxSeconds)
	assert.Equal(t, 0, n.GuidedBreathingMinutes)
	assert.Equal(t, MaxCustomSeconds, n.Custom.ExhaleSeconds)
	assert.Equal(t, WimHof, n.CurrentPattern)
	assert.Greater(t, n.Button.LongPressMs, n.Button.DebounceMs)
	assert.Greater(t, n.Button.VeryLongPressMs, n.Button.LongPressMs)
}

func TestNormalizeCurrentRoundFollowsMaxRounds(t *testing.T) {
	c := Default()
	c.MaxRounds = 3
	c.CurrentRound = 5
	assert.Equal(t, 3, Normalize(c).CurrentRound)
}

func TestNormalizeKeepsOnePatternIncluded(t *testing.T) {
	c := Default()
	c.CurrentPattern = Resonant
	c.Include = [NumPatterns]bool{}

	n := Normalize(c)
	assert.True(t, n.Included(Resonant))
	for _, p := range []PatternID{WimHof, Box, FourSevenEight, Custom, Dynamic} {
		assert.False(t, n.Included(p), p.Name())
	}
}

func TestNextPattern(t *testing.T) {
	c := Default()
	assert.Equal(t, Box, c.NextPattern())

	c.CurrentPattern = Dynamic
	assert.Equal(t, WimHof, c.NextPattern(), "wraps")

	c.CurrentPattern = WimHof
	c.SetIncluded(Box, false)
	c.SetIncluded(FourSevenEight, false)
	assert.Equal(t, Resonant, c.NextPattern(), "skips excluded")

	c.PatternOrder = [NumPatterns]PatternID{Dynamic, WimHof, Custom, Box, FourSevenEight, Resonant}
	assert.Equal(t, Custom, c.NextPattern(), "follows custom order")

	c.Include = [NumPatterns]bool{true}
	assert.Equal(t, WimHof, c.NextPattern(), "stays when alone")
}

func TestAdjustableValue(t *testing.T) {
	c := Default()
	c.CurrentRound = 3
	c.BoxSeconds = 6

	assert.Equal(t, 3, c.AdjustableValue())
	c.CurrentPattern = Box
	assert.Equal(t, 6, c.AdjustableValue())
	c.CurrentPattern = Resonant
	assert.Equal(t, 0, c.AdjustableValue())
}

func TestPatternNames(t *testing.T) {
	assert.Equal(t, "Wim Hof", WimHof.Name())
	assert.Equal(t, "4-7-8", FourSevenEight.Name())
	assert.Equal(t, "Pattern 9", PatternID(9).Name())
	assert.False(t, PatternID(0).Valid())
}
