package models

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/shopspring/decimal"
)

const (
	// board seats allowed by the charter
	MinBoardSize = 3
	MaxBoardSize = 7

	DefaultBoardSize = 3

	// CEO salary is configured per 96-hour pay period
	SalaryPeriodHours = 96

	// hours that must elapse between special dividend payouts
	SpecialDividendCooldownHours = 96
)

type Corporation struct {
	ID        string    `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Name      string      `json:"name" gorm:"unique_index" sql:"type:text"`
	FounderID string      `json:"founder_id" sql:"type:uuid references users(id);"`
	Sector    enum.Sector `json:"sector" sql:"type:text"`
	HQState   enum.State  `json:"hq_state" sql:"type:text"`

	// capital is clamped at zero after every settlement tick
	Capital      decimal.Decimal `json:"capital" gorm:"type:decimal;not null"`
	TotalShares  uint            `json:"total_shares" gorm:"not null"`
	PublicShares uint            `json:"public_shares" gorm:"not null"`
	SharePrice   decimal.Decimal `json:"share_price" gorm:"type:decimal;not null"`

	BoardSize uint    `json:"board_size" gorm:"not null;default:3"`
	CEOID     *string `json:"ceo_id" sql:"type:uuid references users(id);"`

	CEOSalary       decimal.Decimal `json:"ceo_salary" gorm:"type:decimal;not null"`
	DividendPercent decimal.Decimal `json:"dividend_percent" gorm:"type:decimal;not null"`

	LastSpecialDividendAt *time.Time      `json:"last_special_dividend_at"`
	LastSpecialDividend   decimal.Decimal `json:"last_special_dividend" gorm:"type:decimal;not null"`

	MarketEntries []MarketEntry `json:"-" gorm:"foreignkey:CorporationID"`
}

func (c *Corporation) BeforeCreate(scope *gorm.Scope) error {
	if c.ID == "" {
		c.ID = uuid.Must(uuid.NewV4()).String()
	}
	if c.BoardSize == 0 {
		c.BoardSize = DefaultBoardSize
	}
	return scope.SetColumn("id", c.ID)
}

func (c *Corporation) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(c.ID)
	return id
}

// HasElectedCEO reports whether a CEO has been voted in. When false,
// the largest shareholder acts as CEO.
func (c *Corporation) HasElectedCEO() bool {
	return c.CEOID != nil && *c.CEOID != ""
}

type Shareholder struct {
	CorporationID string    `json:"corporation_id" gorm:"primary_key" sql:"type:uuid references corporations(id);"`
	UserID        string    `json:"user_id" gorm:"primary_key" sql:"type:uuid references users(id);"`
	Shares        uint      `json:"shares" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
}

type BoardAppointment struct {
	CorporationID string    `json:"corporation_id" gorm:"primary_key" sql:"type:uuid references corporations(id);"`
	UserID        string    `json:"user_id" gorm:"primary_key" sql:"type:uuid references users(id);"`
	CreatedAt     time.Time `json:"created_at"`
}

type MarketEntry struct {
	ID            string      `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CorporationID string      `json:"corporation_id" gorm:"unique_index:idx_market_corp_state_sector" sql:"type:uuid references corporations(id);"`
	State         enum.State  `json:"state" gorm:"unique_index:idx_market_corp_state_sector" sql:"type:text"`
	Sector        enum.Sector `json:"sector" gorm:"unique_index:idx_market_corp_state_sector" sql:"type:text"`

	RetailUnits     uint `json:"retail_units" gorm:"not null"`
	ProductionUnits uint `json:"production_units" gorm:"not null"`
	ServiceUnits    uint `json:"service_units" gorm:"not null"`
	ExtractionUnits uint `json:"extraction_units" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (m *MarketEntry) BeforeCreate(scope *gorm.Scope) error {
	if m.ID == "" {
		m.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", m.ID)
}

func (m *MarketEntry) TotalUnits() uint {
	return m.RetailUnits + m.ProductionUnits + m.ServiceUnits + m.ExtractionUnits
}
