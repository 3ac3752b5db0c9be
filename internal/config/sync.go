package config

import "time"

// SyncConfig controls batch behavior: the fixed inter-row delay and the
// optional interval scheduler.
type SyncConfig struct {
	RowDelay        time.Duration
	ScheduleEnabled bool
	Interval        time.Duration
	RunOnStart      bool
	ReportDir       string
	AdminToken      string
}

func loadSync() SyncConfig {
	return SyncConfig{
		RowDelay:        durationEnvOrDefault(envRowDelay, defaultRowDelay),
		ScheduleEnabled: boolEnvOrDefault(envSyncSchedule, false),
		Interval:        durationEnvOrDefault(envSyncInterval, defaultSyncInterval),
		RunOnStart:      boolEnvOrDefault(envSyncOnStart, false),
		ReportDir:       envOrDefault(envReportDir, defaultReportDir),
		AdminToken:      envOrDefault(envAdminToken, ""),
	}
}
