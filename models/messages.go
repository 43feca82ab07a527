package models

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// SystemSender is the sender name stamped on engine-generated mail.
const SystemSender = "Board Secretary"

// Message is the in-game mail row the engine writes for proposal and
// settlement notifications. Delivery/read mechanics belong to the web
// layer; the engine only appends.
type Message struct {
	ID          string    `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	Sender      string    `json:"sender" sql:"type:text"`
	RecipientID string    `json:"recipient_id" gorm:"index" sql:"type:uuid references users(id);"`
	Subject     string    `json:"subject" sql:"type:text"`
	Body        string    `json:"body" sql:"type:text"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(scope *gorm.Scope) error {
	if m.ID == "" {
		m.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", m.ID)
}
