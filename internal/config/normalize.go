package config

// Normalize clamps every field into its documented range and repairs the
// pattern tables, so the session core can trust the values it is given.
func Normalize(c Config) Config {
	c.Version = CurrentVersion

	c.MaxRounds = clamp(c.MaxRounds, MinRounds, MaxRoundsLimit)
	c.CurrentRound = clamp(c.CurrentRound, MinRounds, c.MaxRounds)
	c.DeepBreathingSeconds = clamp(c.DeepBreathingSeconds, 5, 300)
	c.RecoverySeconds = clamp(c.RecoverySeconds, 5, 120)

	c.SilentPhaseMaxMinutes = clamp(c.SilentPhaseMaxMinutes, 1, 120)
	c.SilentReminderIntervalMinutes = clamp(c.SilentReminderIntervalMinutes, 1, 60)

	c.BoxSeconds = clamp(c.BoxSeconds, MinBoxSeconds, MaxBoxSeconds)
	c.GuidedBreathingMinutes = clamp(c.GuidedBreathingMinutes, 0, MaxGuidedMinutes)
	c.Custom.InhaleSeconds = clamp(c.Custom.InhaleSeconds, 0, MaxCustomSeconds)
	c.Custom.HoldInSeconds = clamp(c.Custom.HoldInSeconds, 0, MaxCustomSeconds)
	c.Custom.ExhaleSeconds = clamp(c.Custom.ExhaleSeconds, 0, MaxCustomSeconds)
	c.Custom.HoldOutSeconds = clamp(c.Custom.HoldOutSeconds, 0, MaxCustomSeconds)

	c.IdleTimeoutMinutes = clamp(c.IdleTimeoutMinutes, 1, 120)
	c.AbortSaveThresholdSeconds = clamp(c.AbortSaveThresholdSeconds, 0, 3600)
	c.RoundSelectDelayMs = clamp(c.RoundSelectDelayMs, 200, 5000)

	c.Button.DebounceMs = clamp(c.Button.DebounceMs, 10, 200)
	c.Button.LongPressMs = clamp(c.Button.LongPressMs, c.Button.DebounceMs+250, 10000)
	c.Button.VeryLongPressMs = clamp(c.Button.VeryLongPressMs, c.Button.LongPressMs+500, 20000)

	c.PatternOrder = NormalizeOrder(c.PatternOrder[:])
	if !c.CurrentPattern.Valid() {
		c.CurrentPattern = WimHof
	}

	included := false
	for _, on := range c.Include {
		included = included || on
	}
	if !included {
		c.SetIncluded(c.CurrentPattern, true)
	}
	return c
}

// NormalizeOrder dedupes order, drops invalid ids and appends the missing
// ids in ascending order, so the result is always a permutation of 1..6.
func NormalizeOrder(order []PatternID) [NumPatterns]PatternID {
	var out [NumPatterns]PatternID
	var seen [NumPatterns + 1]bool
	n := 0
	for _, p := range order {
		if !p.Valid() || seen[p] || n == NumPatterns {
			continue
		}
		seen[p] = true
		out[n] = p
		n++
	}
	for _, p := range AllPatterns() {
		if !seen[p] {
			out[n] = p
			n++
		}
	}
	return out
}

// IsPermutation reports whether order holds each pattern id exactly once.
func IsPermutation(order [NumPatterns]PatternID) bool {
	var seen [NumPatterns + 1]bool
	for _, p := range order {
		if !p.Valid() || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
