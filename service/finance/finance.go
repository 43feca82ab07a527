// Package finance performs the per-corporation hourly settlement:
// revenue/cost from operated business units at current market prices,
// CEO salary payment, and dividend distribution. Every settlement step
// applies its balance mutations and ledger entries in one database
// transaction.
package finance

import (
	"fmt"

	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/service/board"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/praxisgames/corpsim/service/notification"
	"github.com/praxisgames/corpsim/service/pricing"
	"github.com/praxisgames/corpsim/service/valuation"
	"github.com/shopspring/decimal"
)

var (
	hundred     = decimal.New(100, 0)
	salaryHours = decimal.New(models.SalaryPeriodHours, 0)
)

// TickResult summarizes one corporation's hourly settlement.
type TickResult struct {
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Net        decimal.Decimal `json:"net"`
	Capital    decimal.Decimal `json:"capital"`
	SharePrice decimal.Decimal `json:"share_price"`
}

type FinanceService interface {
	// Settle applies one hour of profit/loss to the corporation,
	// clamps capital at zero, writes the ledger entry, recomputes the
	// share price and appends it to price history.
	Settle(corp *models.Corporation) (*TickResult, error)

	// SettleSalary pays one hour of CEO salary. Insufficient capital
	// resets the configured salary to zero, with no partial payment.
	SettleSalary(corp *models.Corporation) error

	// SettleDividends distributes the hourly dividend pool pro rata
	// across shareholders.
	SettleDividends(corp *models.Corporation) error

	WithTx(tx *gorm.DB) FinanceService
}

type financeService struct {
	tx           *gorm.DB
	pricing      pricing.PricingService
	valuation    valuation.ValuationService
	ledger       ledger.LedgerService
	board        board.BoardService
	notification notification.NotificationService
}

func Service(
	pricing pricing.PricingService,
	valuation valuation.ValuationService,
	ledger ledger.LedgerService,
	board board.BoardService,
	notification notification.NotificationService,
) FinanceService {
	return &financeService{
		pricing:      pricing,
		valuation:    valuation,
		ledger:       ledger,
		board:        board,
		notification: notification,
	}
}

func (s *financeService) WithTx(tx *gorm.DB) FinanceService {
	s.tx = tx
	return s
}

func (s *financeService) Settle(corp *models.Corporation) (*TickResult, error) {
	entries, err := s.marketEntries(corp)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		// a corporation with no operations books nothing; writing a
		// zero-amount ledger row would break the one-entry-per-mutation
		// pairing
		return &TickResult{
			Capital:    corp.Capital,
			SharePrice: corp.SharePrice,
		}, nil
	}

	prices, err := s.pricing.WithTx(s.tx).Current()
	if err != nil {
		return nil, err
	}

	revenue, cost := HourlyBook(entries, prices)
	net := revenue.Sub(cost)

	capital := corp.Capital.Add(net)
	if capital.IsNegative() {
		// losses never drive capital below zero
		capital = decimal.Zero
	}

	if err := s.tx.Model(corp).Update("capital", capital).Error; err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}
	corp.Capital = capital

	entryType := enum.CorpRevenue
	description := fmt.Sprintf("hourly operating profit for %v", corp.Name)
	if net.IsNegative() {
		entryType = enum.CorpLoss
		description = fmt.Sprintf("hourly operating loss for %v", corp.Name)
	}

	_, err = s.ledger.WithTx(s.tx).Write(ledger.Entry{
		Type:          entryType,
		Amount:        net.Abs(),
		CorporationID: &corp.ID,
		Description:   description,
	})
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	price, err := s.valuation.WithTx(s.tx).Price(corp, valuation.DefaultFloor)
	if err != nil {
		return nil, err
	}

	if err := s.tx.Model(corp).Update("share_price", price).Error; err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}
	corp.SharePrice = price

	history := &models.SharePriceHistory{
		CorporationID: corp.ID,
		Price:         price,
		Capital:       capital,
	}

	if err := s.tx.Create(history).Error; err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	return &TickResult{
		Revenue:    revenue,
		Cost:       cost,
		Net:        net,
		Capital:    capital,
		SharePrice: price,
	}, nil
}

func (s *financeService) marketEntries(corp *models.Corporation) ([]models.MarketEntry, error) {
	entries := []models.MarketEntry{}

	q := s.tx.Where("corporation_id = ?", corp.ID).Find(&entries)
	if q.Error != nil && !q.RecordNotFound() {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return entries, nil
}

// HourlyBook sums hourly revenue and cost across market entries at the
// given prices. Pure; shared by settlement and the dividend projection.
func HourlyBook(entries []models.MarketEntry, prices *pricing.PriceSet) (revenue, cost decimal.Decimal) {
	for i := range entries {
		r, c := entryBook(&entries[i], prices)
		revenue = revenue.Add(r)
		cost = cost.Add(c)
	}
	return revenue, cost
}

func entryBook(entry *models.MarketEntry, prices *pricing.PriceSet) (revenue, cost decimal.Decimal) {
	econ, ok := pricing.SectorTable[entry.Sector]
	if !ok {
		return decimal.Zero, decimal.Zero
	}

	retail := decimal.New(int64(entry.RetailUnits), 0)
	production := decimal.New(int64(entry.ProductionUnits), 0)
	service := decimal.New(int64(entry.ServiceUnits), 0)
	extraction := decimal.New(int64(entry.ExtractionUnits), 0)
	total := decimal.New(int64(entry.TotalUnits()), 0)

	// extraction sells commodities at market
	for _, out := range econ.Extracts {
		revenue = revenue.Add(
			extraction.Mul(out.Rate).Mul(prices.Commodity(out.Commodity)))
	}

	// production sells its product and pays for inputs
	if econ.Output != nil {
		revenue = revenue.Add(
			production.Mul(econ.Output.Rate).Mul(prices.Product(econ.Output.Product)))
	}
	if econ.InputCommodity != nil {
		cost = cost.Add(
			production.Mul(econ.InputCommodity.Rate).Mul(prices.Commodity(econ.InputCommodity.Commodity)))
	}
	if econ.InputProduct != nil {
		cost = cost.Add(
			production.Mul(econ.InputProduct.Rate).Mul(prices.Product(econ.InputProduct.Product)))
	}

	// retail and service earn base revenue and pay for stock
	revenue = revenue.Add(retail.Mul(econ.RetailBaseRevenue))
	revenue = revenue.Add(service.Mul(econ.ServiceBaseRevenue))

	for _, in := range econ.RetailConsumes {
		cost = cost.Add(retail.Mul(in.Rate).Mul(prices.Product(in.Product)))
	}
	for _, in := range econ.ServiceConsumes {
		cost = cost.Add(service.Mul(in.Rate).Mul(prices.Product(in.Product)))
	}

	// flat electricity draw for heavy units
	cost = cost.Add(
		production.Add(extraction).
			Mul(pricing.ElectricityDraw).
			Mul(prices.Product(enum.Electricity)))

	// labor and overhead for every unit
	cost = cost.Add(total.Mul(econ.LaborCost))
	cost = cost.Add(total.Mul(econ.OverheadCost))

	return revenue, cost
}
