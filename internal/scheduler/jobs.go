package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
)

// Refresher is the part of service.MarketDataService the refresh job needs.
type Refresher interface {
	Refresh(ctx context.Context, base string, currencies ...string) (service.RefreshResult, error)
}

// MarketRefreshJob pulls prices, dividends and exchange rates for every
// traded symbol.
type MarketRefreshJob struct {
	Market     Refresher
	Base       string
	Currencies []string
	Log        zerolog.Logger
}

func (j *MarketRefreshJob) Name() string {
	return "market-refresh"
}

func (j *MarketRefreshJob) Run(ctx context.Context) error {
	result, err := j.Market.Refresh(ctx, j.Base, j.Currencies...)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		j.Log.Warn().Str("job", j.Name()).Msg(msg)
	}
	return nil
}
