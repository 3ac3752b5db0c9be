package config

import "time"

const (
	envPort         = "PORT"
	envAdminToken   = "ADMIN_TOKEN"
	envSyncOnStart  = "SYNC_ON_START"
	envSyncInterval = "SYNC_INTERVAL"
	envSyncSchedule = "SYNC_SCHEDULE_ENABLED"
	envRowDelay     = "SYNC_ROW_DELAY"
	envReportDir    = "REPORT_DIR"
	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort        = "4000"
	defaultMetricsPort = "9090"
	// Conservative default spacing between roster rows; the DUPR API has no
	// published quota, so the original cadence (200ms) is kept.
	defaultRowDelay = 200 * time.Millisecond
	// Scheduled full-batch cadence when the scheduler is enabled.
	defaultSyncInterval = 6 * time.Hour
	defaultReportDir    = "data/reports"
)
