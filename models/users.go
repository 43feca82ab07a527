package models

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           string          `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
	Name         string          `json:"name" gorm:"unique_index" sql:"type:text"`
	Cash         decimal.Decimal `json:"cash" gorm:"type:decimal;not null"`
	ActionPoints uint            `json:"action_points" gorm:"not null"`
	Admin        bool            `json:"-"`
}

func (u *User) BeforeCreate(scope *gorm.Scope) error {
	if u.ID == "" {
		u.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", u.ID)
}

func (u *User) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(u.ID)
	return id
}
