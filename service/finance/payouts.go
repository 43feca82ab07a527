package finance

import (
	"fmt"

	"github.com/alpacahq/gopaca/log"
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/service/board"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/shopspring/decimal"
)

func (s *financeService) SettleSalary(corp *models.Corporation) error {
	if !corp.CEOSalary.IsPositive() {
		return nil
	}

	// salary is configured per 96-hour period, paid hourly
	hourly := corp.CEOSalary.Div(salaryHours).Round(2)
	if !hourly.IsPositive() {
		return nil
	}

	members, err := s.board.WithTx(s.tx).Members(corp.ID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	ceo := members[0]
	if ceo.Role != board.RoleCEO {
		// the CEO seat is vacant; appointed members draw no salary
		return nil
	}

	if corp.Capital.LessThan(hourly) {
		// no partial payment: the configured salary resets to zero
		// and this settlement is skipped
		if err := s.tx.Model(corp).Update("ceo_salary", decimal.Zero).Error; err != nil {
			return cserrors.InternalServerError.WithError(err)
		}
		corp.CEOSalary = decimal.Zero

		log.Warn(
			"CEO salary reset, capital cannot cover it",
			"corporation", corp.ID,
			"hourly", hourly,
			"capital", corp.Capital)

		s.notification.WithTx(s.tx).NotifyBestEffort(
			ceo.UserID,
			fmt.Sprintf("Salary suspended at %v", corp.Name),
			fmt.Sprintf(
				"%v could not cover your hourly salary of %v. Your salary has been reset to zero.",
				corp.Name, hourly))

		return nil
	}

	err = s.tx.
		Model(corp).
		Update("capital", gorm.Expr("capital - ?", hourly)).Error
	if err != nil {
		return cserrors.InternalServerError.WithError(err)
	}
	corp.Capital = corp.Capital.Sub(hourly)

	err = s.tx.
		Model(&models.User{}).
		Where("id = ?", ceo.UserID).
		Update("cash", gorm.Expr("cash + ?", hourly)).Error
	if err != nil {
		return cserrors.InternalServerError.WithError(err)
	}

	userID := ceo.UserID
	_, err = s.ledger.WithTx(s.tx).Write(ledger.Entry{
		Type:          enum.CEOSalary,
		Amount:        hourly,
		ToUserID:      &userID,
		CorporationID: &corp.ID,
		Description:   fmt.Sprintf("hourly CEO salary at %v", corp.Name),
	})
	if err != nil {
		return cserrors.InternalServerError.WithError(err)
	}

	return nil
}

func (s *financeService) SettleDividends(corp *models.Corporation) error {
	if !corp.DividendPercent.IsPositive() {
		return nil
	}

	prices, err := s.pricing.WithTx(s.tx).Current()
	if err != nil {
		return err
	}

	entries, err := s.marketEntries(corp)
	if err != nil {
		return err
	}

	revenue, cost := HourlyBook(entries, prices)
	hourlyProfit := revenue.Sub(cost)

	// hourly pool = (96h profit projection * pct / 100) / 96
	projection := hourlyProfit.Mul(salaryHours)
	pool := projection.
		Mul(corp.DividendPercent).
		Div(hundred).
		Div(salaryHours).
		Round(2)

	if !pool.IsPositive() {
		return nil
	}

	if corp.Capital.LessThan(pool) {
		log.Warn(
			"dividend skipped, capital cannot cover the pool",
			"corporation", corp.ID,
			"pool", pool,
			"capital", corp.Capital)
		return nil
	}

	holders := []models.Shareholder{}

	q := s.tx.Where("corporation_id = ?", corp.ID).Find(&holders)
	if q.Error != nil && !q.RecordNotFound() {
		return cserrors.InternalServerError.WithError(q.Error)
	}

	if len(holders) == 0 || corp.TotalShares == 0 {
		return nil
	}

	totalShares := decimal.New(int64(corp.TotalShares), 0)

	for i := range holders {
		cut := pool.
			Mul(decimal.New(int64(holders[i].Shares), 0)).
			Div(totalShares).
			Round(2)

		if !cut.IsPositive() {
			continue
		}

		err := s.tx.
			Model(&models.User{}).
			Where("id = ?", holders[i].UserID).
			Update("cash", gorm.Expr("cash + ?", cut)).Error
		if err != nil {
			return cserrors.InternalServerError.WithError(err)
		}

		userID := holders[i].UserID
		_, err = s.ledger.WithTx(s.tx).Write(ledger.Entry{
			Type:          enum.DividendPayment,
			Amount:        cut,
			ToUserID:      &userID,
			CorporationID: &corp.ID,
			Description:   fmt.Sprintf("hourly dividend from %v", corp.Name),
		})
		if err != nil {
			return cserrors.InternalServerError.WithError(err)
		}
	}

	// the pool total leaves capital exactly once
	err = s.tx.
		Model(corp).
		Update("capital", gorm.Expr("capital - ?", pool)).Error
	if err != nil {
		return cserrors.InternalServerError.WithError(err)
	}
	corp.Capital = corp.Capital.Sub(pool)

	return nil
}
