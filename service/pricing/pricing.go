// Package pricing converts aggregate business unit counts into one
// price per commodity and one price per product, using supply/demand
// curves around configured reference values. Results are cached
// process-wide for a short window; the cache drops immediately when an
// economy refresh event arrives.
package pricing

import (
	"sync"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/log"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/utils/csevents"
	"github.com/shopspring/decimal"
)

// CacheTTL bounds how stale a cached price set may get.
const CacheTTL = 60 * time.Second

type PriceSet struct {
	Commodities map[enum.Commodity]decimal.Decimal `json:"commodities"`
	Products    map[enum.Product]decimal.Decimal   `json:"products"`
	ComputedAt  time.Time                          `json:"computed_at"`
}

func (ps *PriceSet) Commodity(c enum.Commodity) decimal.Decimal {
	return ps.Commodities[c]
}

func (ps *PriceSet) Product(p enum.Product) decimal.Decimal {
	return ps.Products[p]
}

// UnitCounts aggregates unit totals for one sector across every
// corporation in the economy.
type UnitCounts struct {
	Retail     uint
	Production uint
	Service    uint
	Extraction uint
}

type PricingService interface {
	// Current returns the cached price set, recomputing when the
	// cache is older than CacheTTL.
	Current() (*PriceSet, error)
	// Recalculate bypasses the cache and refreshes it.
	Recalculate() (*PriceSet, error)
	WithTx(tx *gorm.DB) PricingService
}

type pricingService struct {
	tx *gorm.DB
}

func Service() PricingService {
	return &pricingService{}
}

func (s *pricingService) WithTx(tx *gorm.DB) PricingService {
	s.tx = tx
	return s
}

var cache = struct {
	sync.Mutex
	set *PriceSet
}{}

// Invalidate drops the cached price set for this process.
func Invalidate() {
	cache.Lock()
	cache.set = nil
	cache.Unlock()
}

func init() {
	csevents.RegisterFunc(func(event *csevents.Event) {
		if event.Name == csevents.EventEconomyRefreshed {
			log.Debug("triggered price cache refresh")
			Invalidate()
		}
	})
}

func (s *pricingService) Current() (*PriceSet, error) {
	cache.Lock()
	if cache.set != nil && clock.Now().Sub(cache.set.ComputedAt) < CacheTTL {
		set := cache.set
		cache.Unlock()
		return set, nil
	}
	cache.Unlock()

	return s.Recalculate()
}

func (s *pricingService) Recalculate() (*PriceSet, error) {
	counts, err := s.aggregateUnits()
	if err != nil {
		return nil, err
	}

	set := Compute(counts, clock.Now())

	cache.Lock()
	cache.set = set
	cache.Unlock()

	return set, nil
}

type sectorAggregate struct {
	Sector     enum.Sector
	Retail     uint
	Production uint
	Service    uint
	Extraction uint
}

func (s *pricingService) aggregateUnits() (map[enum.Sector]UnitCounts, error) {
	rows := []sectorAggregate{}

	err := s.tx.
		Table("market_entries").
		Select(`sector,
			SUM(retail_units) AS retail,
			SUM(production_units) AS production,
			SUM(service_units) AS service,
			SUM(extraction_units) AS extraction`).
		Group("sector").
		Scan(&rows).Error

	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(err, "failed to aggregate market units")
	}

	counts := map[enum.Sector]UnitCounts{}
	for _, row := range rows {
		counts[row.Sector] = UnitCounts{
			Retail:     row.Retail,
			Production: row.Production,
			Service:    row.Service,
			Extraction: row.Extraction,
		}
	}

	return counts, nil
}

// Compute derives the full price set from aggregate unit counts. Pure;
// exercised directly by tests and by Recalculate.
func Compute(counts map[enum.Sector]UnitCounts, at time.Time) *PriceSet {
	set := &PriceSet{
		Commodities: map[enum.Commodity]decimal.Decimal{},
		Products:    map[enum.Product]decimal.Decimal{},
		ComputedAt:  at,
	}

	commoditySupply := map[enum.Commodity]decimal.Decimal{}
	commodityDemand := map[enum.Commodity]decimal.Decimal{}
	productSupply := map[enum.Product]decimal.Decimal{}
	productDemand := map[enum.Product]decimal.Decimal{}

	for sector, econ := range SectorTable {
		c := counts[sector]

		extraction := decimal.New(int64(c.Extraction), 0)
		production := decimal.New(int64(c.Production), 0)
		retail := decimal.New(int64(c.Retail), 0)
		service := decimal.New(int64(c.Service), 0)

		for _, out := range econ.Extracts {
			commoditySupply[out.Commodity] = commoditySupply[out.Commodity].
				Add(extraction.Mul(out.Rate))
		}

		if econ.InputCommodity != nil {
			commodityDemand[econ.InputCommodity.Commodity] = commodityDemand[econ.InputCommodity.Commodity].
				Add(production.Mul(econ.InputCommodity.Rate))
		}

		if econ.InputProduct != nil {
			productDemand[econ.InputProduct.Product] = productDemand[econ.InputProduct.Product].
				Add(production.Mul(econ.InputProduct.Rate))
		}

		if econ.Output != nil {
			productSupply[econ.Output.Product] = productSupply[econ.Output.Product].
				Add(production.Mul(econ.Output.Rate))
		}

		for _, in := range econ.RetailConsumes {
			productDemand[in.Product] = productDemand[in.Product].
				Add(retail.Mul(in.Rate))
		}

		for _, in := range econ.ServiceConsumes {
			productDemand[in.Product] = productDemand[in.Product].
				Add(service.Mul(in.Rate))
		}

		// flat electricity draw from heavy units in every sector
		productDemand[enum.Electricity] = productDemand[enum.Electricity].
			Add(production.Add(extraction).Mul(ElectricityDraw))
	}

	for _, commodity := range enum.Commodities {
		curve := CommodityCurves[commodity]
		set.Commodities[commodity] = curvePrice(
			curve, commoditySupply[commodity], commodityDemand[commodity])
	}

	for _, product := range enum.Products {
		curve := ProductCurves[product]
		set.Products[product] = curvePrice(
			curve, productSupply[product], productDemand[product])
	}

	return set
}

var one = decimal.New(1, 0)

// curvePrice applies the supply/demand curve:
//
//	price = reference * (1 + elasticity * (demand - supply) / max(supply, 1))
//
// floored at the curve's floor and rounded to cents. Scarcity prices
// above reference, glut prices below it.
func curvePrice(curve CurveParams, supply, demand decimal.Decimal) decimal.Decimal {
	base := supply
	if base.LessThan(one) {
		base = one
	}

	pressure := demand.Sub(supply).Div(base).Mul(curve.Elasticity)
	price := curve.Reference.Mul(one.Add(pressure)).Round(2)

	if price.LessThan(curve.Floor) {
		return curve.Floor
	}

	return price
}
