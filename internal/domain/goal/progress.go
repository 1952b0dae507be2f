package goal

// Progress returns the completion percentage of current against target.
// Without a positive target the prior value is kept. The result is capped
// at 100 but not floored, so a negative current yields negative progress.
func Progress(current float64, target *float64, prior float64) float64 {
	if target == nil || *target <= 0 {
		return prior
	}
	p := current / *target * 100
	if p > 100 {
		return 100
	}
	return p
}
