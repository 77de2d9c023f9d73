// internal/app/bootstrap/hooks.go

// Package bootstrap assembles saasgate: it loads and checks the config,
// connects MongoDB, ensures the collection validators and indexes, starts the
// background workers and mounts the browser pages and the JSON API on one
// chi router.
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks is what cmd/saasgate hands to app.Run. WAFFLE calls the stages in
// field order; Shutdown runs once the server has drained.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "saasgate",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
