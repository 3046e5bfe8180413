package domain

import "context"

// MarketDataProvider supplies candle history for a symbol. The caller
// decides the depth via the lookback calculator.
type MarketDataProvider interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
}

// ExchangeMetadata supplies per-symbol trading filters and the latest
// traded price.
type ExchangeMetadata interface {
	GetConstraints(ctx context.Context, symbol string) (*MarketConstraints, error)
	GetLastPrice(ctx context.Context, symbol string) (float64, error)
}

// AccountStateProvider supplies the live position/account snapshot for
// one symbol and direction.
type AccountStateProvider interface {
	GetSnapshot(ctx context.Context, symbol string, direction PositionDirection) (*EvaluationContext, error)
}

// SettingsRepository persists settings documents by logic name.
type SettingsRepository interface {
	SaveSettings(ctx context.Context, settings *AutoTradingSettings) error
	LoadSettings(ctx context.Context, logicName string) (*AutoTradingSettings, error)
	ListSettings(ctx context.Context) ([]string, error)
}

// ConstraintsRepository caches per-symbol market constraints so repeated
// evaluation cycles do not depend on live exchange metadata.
type ConstraintsRepository interface {
	SaveConstraints(ctx context.Context, c *MarketConstraints) error
	GetConstraints(ctx context.Context, symbol string) (*MarketConstraints, error)
}
