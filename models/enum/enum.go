package enum

type Sector string

const (
	Agriculture   Sector = "AGRICULTURE"
	Energy        Sector = "ENERGY"
	Mining        Sector = "MINING"
	Manufacturing Sector = "MANUFACTURING"
	Technology    Sector = "TECHNOLOGY"
	Retail        Sector = "RETAIL"
	Services      Sector = "SERVICES"
	Utilities     Sector = "UTILITIES"
)

var Sectors = []Sector{
	Agriculture,
	Energy,
	Mining,
	Manufacturing,
	Technology,
	Retail,
	Services,
	Utilities,
}

func (s Sector) Valid() bool {
	for _, sector := range Sectors {
		if s == sector {
			return true
		}
	}
	return false
}

type State string

const (
	Arcadia   State = "ARCADIA"
	Belmont   State = "BELMONT"
	Calderon  State = "CALDERON"
	Dorado    State = "DORADO"
	Esperanza State = "ESPERANZA"
	Farhaven  State = "FARHAVEN"
	Grandview State = "GRANDVIEW"
	Hartland  State = "HARTLAND"
)

var States = []State{
	Arcadia,
	Belmont,
	Calderon,
	Dorado,
	Esperanza,
	Farhaven,
	Grandview,
	Hartland,
}

func (s State) Valid() bool {
	for _, state := range States {
		if s == state {
			return true
		}
	}
	return false
}

type UnitKind string

const (
	RetailUnit     UnitKind = "RETAIL"
	ProductionUnit UnitKind = "PRODUCTION"
	ServiceUnit    UnitKind = "SERVICE"
	ExtractionUnit UnitKind = "EXTRACTION"
)

type Commodity string

const (
	Grain Commodity = "GRAIN"
	Crude Commodity = "CRUDE"
	Ore   Commodity = "ORE"
	Coal  Commodity = "COAL"
)

var Commodities = []Commodity{Grain, Crude, Ore, Coal}

type Product string

const (
	Food          Product = "FOOD"
	Fuel          Product = "FUEL"
	Steel         Product = "STEEL"
	Electricity   Product = "ELECTRICITY"
	ConsumerGoods Product = "CONSUMER_GOODS"
)

var Products = []Product{Food, Fuel, Steel, Electricity, ConsumerGoods}

type ProposalType string

const (
	// nominate a shareholder as elected CEO
	CEONomination ProposalType = "CEO_NOMINATION"
	// move the corporation to a different sector
	SectorChange ProposalType = "SECTOR_CHANGE"
	// relocate headquarters to a different state
	HQChange ProposalType = "HQ_CHANGE"
	// grow or shrink the board (3-7 seats)
	BoardSizeChange ProposalType = "BOARD_SIZE_CHANGE"
	// appoint a shareholder to a board seat
	MemberAppointment ProposalType = "MEMBER_APPOINTMENT"
	// change the CEO's per-96-hour salary
	SalaryChange ProposalType = "SALARY_CHANGE"
	// change the recurring dividend percentage
	DividendRateChange ProposalType = "DIVIDEND_RATE_CHANGE"
	// pay a one-off dividend out of capital
	SpecialDividend ProposalType = "SPECIAL_DIVIDEND"
	// 2-for-1 split of all shares
	StockSplit ProposalType = "STOCK_SPLIT"
)

var ProposalTypes = []ProposalType{
	CEONomination,
	SectorChange,
	HQChange,
	BoardSizeChange,
	MemberAppointment,
	SalaryChange,
	DividendRateChange,
	SpecialDividend,
	StockSplit,
}

func (t ProposalType) Valid() bool {
	for _, pt := range ProposalTypes {
		if t == pt {
			return true
		}
	}
	return false
}

type ProposalStatus string

const (
	ProposalActive ProposalStatus = "ACTIVE"
	ProposalPassed ProposalStatus = "PASSED"
	ProposalFailed ProposalStatus = "FAILED"
)

type VoteValue string

const (
	Aye VoteValue = "AYE"
	Nay VoteValue = "NAY"
)

type TransactionType string

const (
	CorpRevenue        TransactionType = "CORP_REVENUE"
	CorpLoss           TransactionType = "CORP_LOSS"
	CEOSalary          TransactionType = "CEO_SALARY"
	DividendPayment    TransactionType = "DIVIDEND"
	SpecialDividendPay TransactionType = "SPECIAL_DIVIDEND"
	ShareTrade         TransactionType = "SHARE_TRADE"
	ShareIssue         TransactionType = "SHARE_ISSUE"
	CorpFounding       TransactionType = "CORP_FOUNDING"
)
