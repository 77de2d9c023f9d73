// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/saasgate/internal/app/resources"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/app/system/timezones"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the database is ready and
// before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	timeouts.Log(logger)

	if err := timezones.Load(); err != nil {
		return fmt.Errorf("load time zones: %w", err)
	}
	resources.LoadSharedTemplates()
	return nil
}
