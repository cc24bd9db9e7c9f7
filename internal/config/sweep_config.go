package config

type Sweep struct{}

var _ SweepConfig = Sweep{}

// GetSweepSchedule is a robfig/cron spec for expired session and token removal.
func (Sweep) GetSweepSchedule() string {
	return GetEnv("SWEEP_SCHEDULE", "@every 1h")
}
