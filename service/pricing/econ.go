package pricing

import (
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/shopspring/decimal"
)

// CommodityRate couples a commodity with an hourly per-unit rate
// (output for extraction, draw for production).
type CommodityRate struct {
	Commodity enum.Commodity
	Rate      decimal.Decimal
}

// ProductRate couples a product with an hourly per-unit rate.
type ProductRate struct {
	Product enum.Product
	Rate    decimal.Decimal
}

// SectorEconomics drives both pricing aggregation and the hourly
// settlement math for every unit a corporation operates in a sector.
type SectorEconomics struct {
	// extraction units: commodities produced per unit per hour
	Extracts []CommodityRate
	// production units: raw commodity drawn per unit per hour
	InputCommodity *CommodityRate
	// production units: intermediate product drawn per unit per hour
	InputProduct *ProductRate
	// production units: product produced per unit per hour
	Output *ProductRate
	// retail units: products drawn per unit per hour
	RetailConsumes []ProductRate
	// service units: products drawn per unit per hour
	ServiceConsumes []ProductRate

	RetailBaseRevenue  decimal.Decimal
	ServiceBaseRevenue decimal.Decimal
	LaborCost          decimal.Decimal // hourly, per unit of any kind
	OverheadCost       decimal.Decimal // hourly, per unit of any kind
}

func d(v int64) decimal.Decimal {
	return decimal.New(v, 0)
}

// ElectricityDraw is the flat hourly electricity demand per production
// or extraction unit, regardless of sector.
var ElectricityDraw = d(2)

var SectorTable = map[enum.Sector]SectorEconomics{
	enum.Agriculture: {
		Extracts:           []CommodityRate{{enum.Grain, d(6)}},
		InputCommodity:     &CommodityRate{enum.Grain, d(4)},
		Output:             &ProductRate{enum.Food, d(3)},
		RetailConsumes:     []ProductRate{{enum.Food, d(2)}},
		ServiceConsumes:    []ProductRate{{enum.Food, d(1)}},
		RetailBaseRevenue:  d(35),
		ServiceBaseRevenue: d(25),
		LaborCost:          d(4),
		OverheadCost:       d(1),
	},
	enum.Energy: {
		Extracts:           []CommodityRate{{enum.Crude, d(5)}, {enum.Coal, d(4)}},
		InputCommodity:     &CommodityRate{enum.Crude, d(3)},
		Output:             &ProductRate{enum.Fuel, d(2)},
		RetailConsumes:     []ProductRate{{enum.Fuel, d(2)}},
		ServiceConsumes:    []ProductRate{{enum.Fuel, d(1)}},
		RetailBaseRevenue:  d(45),
		ServiceBaseRevenue: d(30),
		LaborCost:          d(6),
		OverheadCost:       d(2),
	},
	enum.Mining: {
		Extracts:           []CommodityRate{{enum.Ore, d(5)}},
		RetailConsumes:     []ProductRate{{enum.ConsumerGoods, d(1)}},
		ServiceConsumes:    []ProductRate{{enum.Steel, d(1)}},
		RetailBaseRevenue:  d(30),
		ServiceBaseRevenue: d(25),
		LaborCost:          d(7),
		OverheadCost:       d(2),
	},
	enum.Manufacturing: {
		InputCommodity:     &CommodityRate{enum.Ore, d(4)},
		Output:             &ProductRate{enum.Steel, d(2)},
		RetailConsumes:     []ProductRate{{enum.ConsumerGoods, d(2)}},
		ServiceConsumes:    []ProductRate{{enum.Steel, d(1)}},
		RetailBaseRevenue:  d(40),
		ServiceBaseRevenue: d(30),
		LaborCost:          d(6),
		OverheadCost:       d(2),
	},
	enum.Technology: {
		InputProduct:       &ProductRate{enum.Steel, d(2)},
		Output:             &ProductRate{enum.ConsumerGoods, d(3)},
		RetailConsumes:     []ProductRate{{enum.ConsumerGoods, d(2)}},
		ServiceConsumes:    []ProductRate{{enum.ConsumerGoods, d(1)}},
		RetailBaseRevenue:  d(55),
		ServiceBaseRevenue: d(45),
		LaborCost:          d(8),
		OverheadCost:       d(3),
	},
	enum.Retail: {
		RetailConsumes:     []ProductRate{{enum.ConsumerGoods, d(3)}, {enum.Food, d(2)}},
		ServiceConsumes:    []ProductRate{{enum.ConsumerGoods, d(1)}},
		RetailBaseRevenue:  d(60),
		ServiceBaseRevenue: d(35),
		LaborCost:          d(5),
		OverheadCost:       d(2),
	},
	enum.Services: {
		RetailConsumes:     []ProductRate{{enum.Food, d(1)}},
		ServiceConsumes:    []ProductRate{{enum.ConsumerGoods, d(1)}},
		RetailBaseRevenue:  d(35),
		ServiceBaseRevenue: d(50),
		LaborCost:          d(5),
		OverheadCost:       d(1),
	},
	enum.Utilities: {
		InputCommodity:     &CommodityRate{enum.Coal, d(5)},
		Output:             &ProductRate{enum.Electricity, d(8)},
		RetailConsumes:     []ProductRate{{enum.ConsumerGoods, d(1)}},
		ServiceConsumes:    []ProductRate{{enum.ConsumerGoods, d(1)}},
		RetailBaseRevenue:  d(30),
		ServiceBaseRevenue: d(30),
		LaborCost:          d(6),
		OverheadCost:       d(2),
	},
}

// CurveParams shape one supply/demand price curve.
type CurveParams struct {
	Reference  decimal.Decimal
	Floor      decimal.Decimal
	Elasticity decimal.Decimal
}

var CommodityCurves = map[enum.Commodity]CurveParams{
	enum.Grain: {Reference: d(10), Floor: d(2), Elasticity: half},
	enum.Crude: {Reference: d(40), Floor: d(8), Elasticity: half},
	enum.Ore:   {Reference: d(25), Floor: d(5), Elasticity: half},
	enum.Coal:  {Reference: d(15), Floor: d(3), Elasticity: half},
}

var ProductCurves = map[enum.Product]CurveParams{
	enum.Food:          {Reference: d(20), Floor: d(4), Elasticity: half},
	enum.Fuel:          {Reference: d(70), Floor: d(15), Elasticity: half},
	enum.Steel:         {Reference: d(60), Floor: d(12), Elasticity: half},
	enum.Electricity:   {Reference: d(30), Floor: d(6), Elasticity: half},
	enum.ConsumerGoods: {Reference: d(90), Floor: d(18), Elasticity: half},
}

var half = decimal.New(5, -1)
