package csreg

import (
	"github.com/praxisgames/corpsim/service/board"
	"github.com/praxisgames/corpsim/service/finance"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/praxisgames/corpsim/service/market"
	"github.com/praxisgames/corpsim/service/notification"
	"github.com/praxisgames/corpsim/service/pricing"
	"github.com/praxisgames/corpsim/service/registry"
	"github.com/praxisgames/corpsim/service/shares"
	"github.com/praxisgames/corpsim/service/valuation"
)

var Services registry.Registry

type csRegistry struct{}

func (r *csRegistry) Ledger() ledger.LedgerService {
	return ledger.Service()
}

func (r *csRegistry) Notification() notification.NotificationService {
	return notification.Service()
}

func (r *csRegistry) Pricing() pricing.PricingService {
	return pricing.Service()
}

func (r *csRegistry) Valuation() valuation.ValuationService {
	return valuation.Service()
}

func (r *csRegistry) Market() market.MarketService {
	return market.Service()
}

func (r *csRegistry) Board() board.BoardService {
	return board.Service(r.Ledger(), r.Notification())
}

func (r *csRegistry) Shares() shares.ShareService {
	return shares.Service(r.Valuation(), r.Ledger(), r.Board())
}

func (r *csRegistry) Finance() finance.FinanceService {
	return finance.Service(
		r.Pricing(),
		r.Valuation(),
		r.Ledger(),
		r.Board(),
		r.Notification(),
	)
}

func init() {
	Services = &csRegistry{}
}
