package registry

import (
	"github.com/praxisgames/corpsim/service/board"
	"github.com/praxisgames/corpsim/service/finance"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/praxisgames/corpsim/service/market"
	"github.com/praxisgames/corpsim/service/notification"
	"github.com/praxisgames/corpsim/service/pricing"
	"github.com/praxisgames/corpsim/service/shares"
	"github.com/praxisgames/corpsim/service/valuation"
)

type Registry interface {
	Board() board.BoardService
	Finance() finance.FinanceService
	Ledger() ledger.LedgerService
	Market() market.MarketService
	Notification() notification.NotificationService
	Pricing() pricing.PricingService
	Shares() shares.ShareService
	Valuation() valuation.ValuationService
}
