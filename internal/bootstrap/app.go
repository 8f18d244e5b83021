package bootstrap

import (
	"labelfind/internal/browser"
	"labelfind/internal/config"
	"labelfind/internal/console"
	"labelfind/internal/ports"
	"labelfind/internal/usecase"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			fx.Annotate(browser.NewManager, fx.As(new(ports.BrowserManager))),
			newFinder,

			usecase.NewUsecase,

			console.NewInterface,
		),

		fx.Invoke(
			func(*sdktrace.TracerProvider) {},
			runConsole,
		),

		fx.StartTimeout(2*time.Minute),
	)
}
