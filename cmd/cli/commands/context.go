package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/kenger42-gif/uretim-planlayici/internal/config"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/services"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/session"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg    *config.Config
	State  *session.SchedulerState
	Reader services.TableReader
	Logger *zap.Logger
	Ctx    context.Context
}
