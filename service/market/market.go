// Package market manages a corporation's operating presence in
// (state, sector) markets. Units only grow by player action; the only
// way counts go down is abandoning the market entirely.
package market

import (
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
)

type MarketService interface {
	Open(corporationID string, state enum.State, sector enum.Sector) (*models.MarketEntry, error)
	AddUnits(corporationID string, state enum.State, sector enum.Sector, kind enum.UnitKind, count uint) (*models.MarketEntry, error)
	Abandon(corporationID string, state enum.State, sector enum.Sector) error
	List(corporationID string) ([]models.MarketEntry, error)
	WithTx(tx *gorm.DB) MarketService
}

type marketService struct {
	tx *gorm.DB
}

func Service() MarketService {
	return &marketService{}
}

func (s *marketService) WithTx(tx *gorm.DB) MarketService {
	s.tx = tx
	return s
}

func (s *marketService) Open(corporationID string, state enum.State, sector enum.Sector) (*models.MarketEntry, error) {
	if !state.Valid() || !sector.Valid() {
		return nil, cserrors.InvalidRequestParam.WithMsg("unknown sector or state")
	}

	entry := &models.MarketEntry{
		CorporationID: corporationID,
		State:         state,
		Sector:        sector,
	}

	q := s.tx.
		Where("corporation_id = ? AND state = ? AND sector = ?", corporationID, state, sector).
		FirstOrCreate(entry)

	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return entry, nil
}

func (s *marketService) AddUnits(corporationID string, state enum.State, sector enum.Sector, kind enum.UnitKind, count uint) (*models.MarketEntry, error) {
	if count == 0 {
		return nil, cserrors.InvalidRequestParam.WithMsg("unit count must be positive")
	}

	entry, err := s.Open(corporationID, state, sector)
	if err != nil {
		return nil, err
	}

	var column string
	switch kind {
	case enum.RetailUnit:
		column = "retail_units"
	case enum.ProductionUnit:
		column = "production_units"
	case enum.ServiceUnit:
		column = "service_units"
	case enum.ExtractionUnit:
		column = "extraction_units"
	default:
		return nil, cserrors.InvalidRequestParam.WithMsg("unknown unit kind")
	}

	err = s.tx.
		Model(entry).
		Update(column, gorm.Expr(column+" + ?", count)).Error
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	q := s.tx.Where("id = ?", entry.ID).First(entry)
	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return entry, nil
}

func (s *marketService) Abandon(corporationID string, state enum.State, sector enum.Sector) error {
	q := s.tx.
		Where("corporation_id = ? AND state = ? AND sector = ?", corporationID, state, sector).
		Delete(&models.MarketEntry{})

	if q.Error != nil {
		return cserrors.InternalServerError.WithError(q.Error)
	}

	if q.RowsAffected == 0 {
		return cserrors.NotFound.WithMsg("market entry not found")
	}

	return nil
}

func (s *marketService) List(corporationID string) ([]models.MarketEntry, error) {
	entries := []models.MarketEntry{}

	q := s.tx.Where("corporation_id = ?", corporationID).Find(&entries)
	if q.Error != nil && !q.RecordNotFound() {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return entries, nil
}
