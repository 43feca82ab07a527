package initializer

import (
	"github.com/alpacahq/gopaca/env"
)

// Initialize corpsim's required environment variables to their
// default values.
func Initialize() {
	// Engine
	env.RegisterDefault("CORPSIM_MODE", "DEV")
	env.RegisterDefault("ENGINE_SECRET", "hQ2nrXPl0w8cKJYvSd3AbTfGu5ZmEox1")
	env.RegisterDefault("ADMIN_SECRET", "vU7tRcW4yLq9NdKs2HbJp6XeAmZg0iOf")
	env.RegisterDefault("CORPSIM_PORT", "5996")
	env.RegisterDefault("LOG_LEVEL", "INFO")
	env.RegisterDefault("STANDBY_MODE", "FALSE")
	env.RegisterDefault("STATSD_ADDR", "127.0.0.1:8125")

	// Tick tuning
	env.RegisterDefault("ACTION_POINTS_PER_TICK", "12")
	env.RegisterDefault("CEO_ACTION_BONUS", "6")
	env.RegisterDefault("ACTION_POINTS_CAP", "96")

	// Postgres
	env.RegisterDefault("PGDATABASE", "corpsim")
	env.RegisterDefault("PGHOST", "127.0.0.1")
	env.RegisterDefault("PGUSER", "postgres")
	env.RegisterDefault("PGPASSWORD", "corpsim")

	// Slack (empty webhooks disable delivery)
	env.RegisterDefault("SLACK_ERRORS_WEBHOOK", "")
	env.RegisterDefault("SLACK_ERRORS_WEBHOOK_STG", "")
	env.RegisterDefault("SLACK_TICKS_WEBHOOK", "")
	env.RegisterDefault("SLACK_TICKS_WEBHOOK_STG", "")
}
