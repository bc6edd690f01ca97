package areas

import (
	"fmt"

	"github.com/beachesmls/marketreport/pkg/utils"
	"go.uber.org/zap"
)

// ProviderFromEnv builds the provider named by AREA_PROVIDER: "dynamic"
// (the default) looks areas up in store, "static" reads AREA_PROFILES_FILE
// or the embedded table, and "chained" tries static first.
func ProviderFromEnv(store Lookuper, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := utils.Env("AREA_PROVIDER", "dynamic")
	logger.Info("Area provider selected", zap.String("mode", mode))

	switch mode {
	case "dynamic":
		return NewDynamicProvider(store, logger), nil
	case "static", "chained":
		static, err := LoadStaticProvider(utils.Env("AREA_PROFILES_FILE", ""))
		if err != nil {
			return nil, err
		}
		if mode == "static" {
			return static, nil
		}
		return NewChainedProvider(static, NewDynamicProvider(store, logger)), nil
	default:
		return nil, fmt.Errorf("unknown AREA_PROVIDER %q", mode)
	}
}
