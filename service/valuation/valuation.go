// Package valuation computes a corporation's share price by blending a
// fundamentals-derived value with a trade-activity-weighted value.
package valuation

import (
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/praxisgames/corpsim/models"
	"github.com/shopspring/decimal"
)

const (
	// TradeWindow is the trailing window of share transactions that
	// contribute to the trade-weighted leg.
	TradeWindow = 24 * time.Hour
)

var (
	// fundamental value = capital / total shares * multiplier
	FundamentalMultiplier = decimal.New(12, -1)

	// blend weights; must sum to 1
	fundamentalWeight = decimal.New(7, -1)
	tradeWeight       = decimal.New(3, -1)

	// DefaultFloor is the minimum price used unless a call site
	// imposes a higher one.
	DefaultFloor = decimal.New(1, -2)

	// buy at 1% above, sell at 1% below the computed price
	askSpread = decimal.New(101, -2)
	bidSpread = decimal.New(99, -2)

	one = decimal.New(1, 0)
)

type ValuationService interface {
	// Price returns the current blended share price, floored and
	// rounded to cents.
	Price(corp *models.Corporation, floor decimal.Decimal) (decimal.Decimal, error)
	BuyPrice(corp *models.Corporation) (decimal.Decimal, error)
	SellPrice(corp *models.Corporation) (decimal.Decimal, error)
	WithTx(tx *gorm.DB) ValuationService
}

type valuationService struct {
	tx *gorm.DB
}

func Service() ValuationService {
	return &valuationService{}
}

func (s *valuationService) WithTx(tx *gorm.DB) ValuationService {
	s.tx = tx
	return s
}

func (s *valuationService) Price(corp *models.Corporation, floor decimal.Decimal) (decimal.Decimal, error) {
	now := clock.Now()

	trades := []models.ShareTransaction{}

	q := s.tx.
		Where("corporation_id = ?", corp.ID).
		Where("created_at > ?", now.Add(-TradeWindow)).
		Find(&trades)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return decimal.Zero, errors.Wrap(q.Error, "failed to query recent trades")
	}

	return Blend(corp, trades, now, floor), nil
}

func (s *valuationService) BuyPrice(corp *models.Corporation) (decimal.Decimal, error) {
	price, err := s.Price(corp, DefaultFloor)
	if err != nil {
		return decimal.Zero, err
	}
	return price.Mul(askSpread).Round(2), nil
}

func (s *valuationService) SellPrice(corp *models.Corporation) (decimal.Decimal, error) {
	price, err := s.Price(corp, DefaultFloor)
	if err != nil {
		return decimal.Zero, err
	}
	return price.Mul(bidSpread).Round(2), nil
}

// Blend combines fundamental and trade-weighted value. Pure; the
// service wraps it with the trade query.
func Blend(corp *models.Corporation, trades []models.ShareTransaction, now time.Time, floor decimal.Decimal) decimal.Decimal {
	fundamental := Fundamental(corp)

	tradeWeighted, hasTrades := tradeWeightedPrice(trades, now)

	var price decimal.Decimal
	if hasTrades {
		price = fundamental.Mul(fundamentalWeight).
			Add(tradeWeighted.Mul(tradeWeight))
	} else {
		// no recent activity; fundamentals alone set the price
		price = fundamental
	}

	price = price.Round(2)

	if price.LessThan(floor) {
		return floor
	}

	return price
}

// Fundamental is the share price implied purely by book value.
func Fundamental(corp *models.Corporation) decimal.Decimal {
	if corp.TotalShares == 0 {
		return decimal.Zero
	}

	shares := decimal.New(int64(corp.TotalShares), 0)

	return corp.Capital.Div(shares).Mul(FundamentalMultiplier)
}

// tradeWeightedPrice averages recent per-share prices weighted by
// volume and recency (weight decays linearly to zero at the window
// edge). Reports false when no weight accumulates.
func tradeWeightedPrice(trades []models.ShareTransaction, now time.Time) (decimal.Decimal, bool) {
	window := decimal.New(int64(TradeWindow), 0)

	weightedSum := decimal.Zero
	totalWeight := decimal.Zero

	for i := range trades {
		age := decimal.New(int64(now.Sub(trades[i].CreatedAt)), 0)
		if age.IsNegative() {
			age = decimal.Zero
		}

		recency := one.Sub(age.Div(window))
		if !recency.IsPositive() {
			continue
		}

		weight := decimal.New(int64(trades[i].Shares), 0).Mul(recency)

		weightedSum = weightedSum.Add(trades[i].PricePerShare.Mul(weight))
		totalWeight = totalWeight.Add(weight)
	}

	if !totalWeight.IsPositive() {
		return decimal.Zero, false
	}

	return weightedSum.Div(totalWeight), true
}
