package migration

import (
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/models"
	gormigrate "gopkg.in/gormigrate.v1"
)

// Migration contains all of the incremental migrations that the database
// requires to keep its schema and models up to date with current corpsim
// source code.
func Migration(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// initial migration
		{
			ID: "202601121030",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.User{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Corporation{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Shareholder{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.BoardAppointment{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.MarketEntry{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.BoardProposal{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.BoardVote{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.Transaction{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.ShareTransaction{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.SharePriceHistory{}).Error; err != nil {
					return err
				}
				return tx.AutoMigrate(&models.Message{}).Error
			},
		},
		// capital can never go negative; enforce at the schema level too
		{
			ID: "202601191415",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(
					`ALTER TABLE corporations ADD CONSTRAINT chk_corporations_capital CHECK (capital >= 0)`,
				).Error
			},
		},
	})
}
