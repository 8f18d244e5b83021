package bootstrap

import (
	"labelfind/internal/config"
	"labelfind/internal/fuzzy"
	"labelfind/pkg/logg"

	"go.uber.org/zap"
)

func newFinder(config *config.Config, logger *zap.Logger) *fuzzy.Finder {
	opts := []fuzzy.Option{
		fuzzy.WithDebug(config.FinderConfig.Debug),
	}

	if config.FinderConfig.DisableCommonAncestor {
		opts = append(opts, fuzzy.WithoutStrategy(fuzzy.StrategyCommonAncestor))
	}

	return fuzzy.New(logger.With(zap.String(logg.Layer, "Finder")), opts...)
}
