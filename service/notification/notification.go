package notification

import (
	"github.com/alpacahq/gopaca/log"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/praxisgames/corpsim/models"
)

type NotificationService interface {
	Notify(recipientID, subject, body string) error
	// NotifyBestEffort logs and swallows failures. This is the mode
	// required for proposal and settlement notifications: a failed
	// notification must never roll back the event it describes.
	NotifyBestEffort(recipientID, subject, body string)
	WithTx(tx *gorm.DB) NotificationService
}

type notificationService struct {
	tx *gorm.DB
}

func Service() NotificationService {
	return &notificationService{}
}

func (s *notificationService) WithTx(tx *gorm.DB) NotificationService {
	s.tx = tx
	return s
}

func (s *notificationService) Notify(recipientID, subject, body string) error {
	msg := &models.Message{
		Sender:      models.SystemSender,
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
	}

	if err := s.tx.Create(msg).Error; err != nil {
		return errors.Wrap(err, "failed to write notification")
	}

	return nil
}

func (s *notificationService) NotifyBestEffort(recipientID, subject, body string) {
	if err := s.Notify(recipientID, subject, body); err != nil {
		log.Error(
			"failed to deliver notification",
			"recipient", recipientID,
			"subject", subject,
			"error", err)
	}
}
