package models

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/shopspring/decimal"
)

// Transaction is the append-only ledger. Every cash or capital
// mutation anywhere in the engine pairs with exactly one Transaction
// row written in the same database transaction.
type Transaction struct {
	ID            string               `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	Type          enum.TransactionType `json:"type" gorm:"index" sql:"type:text"`
	Amount        decimal.Decimal      `json:"amount" gorm:"type:decimal;not null"`
	FromUserID    *string              `json:"from_user_id" sql:"type:uuid references users(id);"`
	ToUserID      *string              `json:"to_user_id" sql:"type:uuid references users(id);"`
	CorporationID *string              `json:"corporation_id" gorm:"index" sql:"type:uuid references corporations(id);"`
	Description   string               `json:"description" sql:"type:text"`
	Reference     *string              `json:"reference" sql:"type:text"`
	CreatedAt     time.Time            `json:"created_at"`
}

func (t *Transaction) BeforeCreate(scope *gorm.Scope) error {
	if t.ID == "" {
		t.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", t.ID)
}

// ShareTransaction records one share trade or issuance. Append-only;
// feeds the trade-weighted leg of stock valuation.
type ShareTransaction struct {
	ID            string          `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CorporationID string          `json:"corporation_id" gorm:"index" sql:"type:uuid references corporations(id);"`
	BuyerID       *string         `json:"buyer_id" sql:"type:uuid references users(id);"`
	SellerID      *string         `json:"seller_id" sql:"type:uuid references users(id);"`
	Shares        uint            `json:"shares" gorm:"not null"`
	PricePerShare decimal.Decimal `json:"price_per_share" gorm:"type:decimal;not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal;not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
}

func (t *ShareTransaction) BeforeCreate(scope *gorm.Scope) error {
	if t.ID == "" {
		t.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", t.ID)
}

// SharePriceHistory is appended after every settlement tick alongside
// the capital figure that produced the price.
type SharePriceHistory struct {
	ID            string          `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CorporationID string          `json:"corporation_id" gorm:"index" sql:"type:uuid references corporations(id);"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal;not null"`
	Capital       decimal.Decimal `json:"capital" gorm:"type:decimal;not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
}

func (h *SharePriceHistory) BeforeCreate(scope *gorm.Scope) error {
	if h.ID == "" {
		h.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", h.ID)
}
