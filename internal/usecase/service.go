package usecase

import (
	"labelfind/internal/config"
	"labelfind/internal/fuzzy"
	"labelfind/internal/ports"
	"labelfind/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Resolver adapters.ResolverService
	Browser  adapters.BrowserService
}

type Params struct {
	fx.In

	Logger  *zap.Logger
	Config  *config.Config
	Browser ports.BrowserManager
	Finder  *fuzzy.Finder
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Resolver: factory.CreateResolverService(),
		Browser:  factory.CreateBrowserService(),
	}
}
