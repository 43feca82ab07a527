package board

import (
	"fmt"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/log"
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/shopspring/decimal"
)

var two = decimal.New(2, 0)

type voteCount struct {
	ayes int
	nays int
}

func (c voteCount) total() int {
	return c.ayes + c.nays
}

func (c voteCount) majorityPassed() bool {
	// strict majority; an exact tie fails
	return c.ayes > c.nays
}

func (s *boardService) countVotes(proposalID string) (voteCount, error) {
	rows := []struct {
		Value enum.VoteValue
		Count int
	}{}

	err := s.tx.
		Table("board_votes").
		Select("value, COUNT(*) AS count").
		Where("proposal_id = ?", proposalID).
		Group("value").
		Scan(&rows).Error

	if err != nil && err != gorm.ErrRecordNotFound {
		return voteCount{}, cserrors.InternalServerError.WithError(err)
	}

	count := voteCount{}
	for _, row := range rows {
		switch row.Value {
		case enum.Aye:
			count.ayes = row.Count
		case enum.Nay:
			count.nays = row.Count
		}
	}

	return count, nil
}

// Supermajority is the vote count that decides a proposal outright:
// more than half the current board.
func Supermajority(boardSize uint) int {
	return int(boardSize)/2 + 1
}

// evaluate applies the resolution triggers after a vote. Board size is
// read from the corporation row as it stands now, not as it stood at
// proposal creation.
func (s *boardService) evaluate(proposal *models.BoardProposal, corp *models.Corporation) error {
	count, err := s.countVotes(proposal.ID)
	if err != nil {
		return err
	}

	super := Supermajority(corp.BoardSize)

	switch {
	case count.ayes >= super:
		return s.resolve(proposal, corp, true)
	case count.nays >= super:
		return s.resolve(proposal, corp, false)
	case count.total() >= int(corp.BoardSize):
		// everyone has voted; simple majority decides, tie fails
		return s.resolve(proposal, corp, count.majorityPassed())
	}

	return nil
}

func (s *boardService) Resolve(proposalID string) (*models.BoardProposal, error) {
	proposal, err := s.lockProposal(proposalID)
	if err != nil {
		return nil, err
	}

	if !proposal.Active() {
		// already resolved by the voting path; nothing to do
		return proposal, nil
	}

	corp := &models.Corporation{}
	if err := s.tx.Where("id = ?", proposal.CorporationID).First(corp).Error; err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	count, err := s.countVotes(proposal.ID)
	if err != nil {
		return nil, err
	}

	if err := s.resolve(proposal, corp, count.majorityPassed()); err != nil {
		return nil, err
	}

	return proposal, nil
}

// resolve transitions the proposal to its terminal state and, on a
// pass, applies the payload mutation in the same database transaction.
// The status write is a check-and-set: whichever of the voting path
// and the expiry path gets here second sees zero affected rows and
// backs off without applying anything.
func (s *boardService) resolve(proposal *models.BoardProposal, corp *models.Corporation, passed bool) error {
	status := enum.ProposalFailed
	if passed {
		status = enum.ProposalPassed
	}

	now := clock.Now()

	res := s.tx.
		Model(&models.BoardProposal{}).
		Where("id = ? AND status = ?", proposal.ID, enum.ProposalActive).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": now,
		})

	if res.Error != nil {
		return cserrors.InternalServerError.WithError(res.Error)
	}

	if res.RowsAffected == 0 {
		// lost the resolution race
		return nil
	}

	proposal.Status = status
	proposal.ResolvedAt = &now

	if passed {
		if err := s.apply(proposal, corp); err != nil {
			return err
		}
	}

	s.notifyResolved(proposal, corp)

	return nil
}

// apply mutates the corporation per the proposal's payload. The switch
// is exhaustive over the payload union.
func (s *boardService) apply(proposal *models.BoardProposal, corp *models.Corporation) error {
	payload, err := models.DecodePayload(proposal.Type, proposal.Payload)
	if err != nil {
		return cserrors.InternalServerError.WithError(err)
	}

	switch p := payload.(type) {
	case models.CEONominationPayload:
		return s.updateCorp(corp, "ceo_id", p.NomineeID)
	case models.SectorChangePayload:
		return s.updateCorp(corp, "sector", p.Sector)
	case models.HQChangePayload:
		return s.updateCorp(corp, "hq_state", p.State)
	case models.BoardSizeChangePayload:
		return s.updateCorp(corp, "board_size", p.Size)
	case models.MemberAppointmentPayload:
		return s.appoint(corp, p.AppointeeID)
	case models.SalaryChangePayload:
		return s.updateCorp(corp, "ceo_salary", p.Salary)
	case models.DividendRateChangePayload:
		return s.updateCorp(corp, "dividend_percent", p.Percent)
	case models.SpecialDividendPayload:
		return s.paySpecialDividend(proposal, corp, p.Amount)
	case models.StockSplitPayload:
		return s.stockSplit(corp)
	default:
		return cserrors.InternalServerError.WithError(
			fmt.Errorf("no application for proposal type %q", proposal.Type))
	}
}

func (s *boardService) updateCorp(corp *models.Corporation, column string, value interface{}) error {
	if err := s.tx.Model(corp).Update(column, value).Error; err != nil {
		return cserrors.InternalServerError.WithError(err)
	}
	return nil
}

func (s *boardService) appoint(corp *models.Corporation, userID string) error {
	appointment := &models.BoardAppointment{
		CorporationID: corp.ID,
		UserID:        userID,
	}

	q := s.tx.
		Where("corporation_id = ? AND user_id = ?", corp.ID, userID).
		FirstOrCreate(appointment)

	if q.Error != nil {
		return cserrors.InternalServerError.WithError(q.Error)
	}

	return nil
}

// stockSplit doubles total shares, public shares and every
// shareholder's position, and halves the share price. All-or-nothing:
// it runs inside the resolution's transaction.
func (s *boardService) stockSplit(corp *models.Corporation) error {
	err := s.tx.
		Model(&models.Shareholder{}).
		Where("corporation_id = ?", corp.ID).
		Update("shares", gorm.Expr("shares * 2")).Error

	if err != nil {
		return cserrors.InternalServerError.WithError(err)
	}

	halved := corp.SharePrice.Div(two).Round(2)

	err = s.tx.
		Model(corp).
		Updates(map[string]interface{}{
			"total_shares":  gorm.Expr("total_shares * 2"),
			"public_shares": gorm.Expr("public_shares * 2"),
			"share_price":   halved,
		}).Error

	if err != nil {
		return cserrors.InternalServerError.WithError(err)
	}

	corp.TotalShares *= 2
	corp.PublicShares *= 2
	corp.SharePrice = halved

	return nil
}

func (s *boardService) ForceStockSplit(corporationID string) error {
	corp := &models.Corporation{}

	q := s.tx.Where("id = ?", corporationID).First(corp)
	if q.RecordNotFound() {
		return cserrors.NotFound.WithMsg("corporation not found")
	}
	if q.Error != nil {
		return cserrors.InternalServerError.WithError(q.Error)
	}

	return s.stockSplit(corp)
}

// paySpecialDividend distributes the passed amount pro rata across
// shareholders, debiting capital once. Insufficient capital at
// resolution time skips the payout; the proposal still passes, and the
// cooldown is not stamped so the board may try again.
func (s *boardService) paySpecialDividend(proposal *models.BoardProposal, corp *models.Corporation, amount decimal.Decimal) error {
	if corp.Capital.LessThan(amount) {
		log.Warn(
			"special dividend skipped, capital no longer covers it",
			"corporation", corp.ID,
			"amount", amount,
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
		cut := amount.
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
		_, err = s.ledgerWithTx().Write(ledger.Entry{
			Type:          enum.SpecialDividendPay,
			Amount:        cut,
			ToUserID:      &userID,
			CorporationID: &corp.ID,
			Description:   fmt.Sprintf("special dividend from %v", corp.Name),
			Reference:     &proposal.ID,
		})

		if err != nil {
			return cserrors.InternalServerError.WithError(err)
		}
	}

	now := clock.Now()

	err := s.tx.
		Model(corp).
		Updates(map[string]interface{}{
			"capital":                  gorm.Expr("capital - ?", amount),
			"last_special_dividend_at": now,
			"last_special_dividend":    amount,
		}).Error

	if err != nil {
		return cserrors.InternalServerError.WithError(err)
	}

	corp.Capital = corp.Capital.Sub(amount)
	corp.LastSpecialDividendAt = &now
	corp.LastSpecialDividend = amount

	return nil
}

func (s *boardService) ledgerWithTx() ledger.LedgerService {
	return s.ledger.WithTx(s.tx)
}

func (s *boardService) notifyResolved(proposal *models.BoardProposal, corp *models.Corporation) {
	members, err := s.members(corp)
	if err != nil {
		// notification is best effort; the resolution stands
		return
	}

	verdict := "failed"
	if proposal.Status == enum.ProposalPassed {
		verdict = "passed"
	}

	subject := fmt.Sprintf("Board proposal %v at %v", verdict, corp.Name)
	body := fmt.Sprintf("The %v proposal at %v has %v.", proposal.Type, corp.Name, verdict)

	for _, m := range members {
		if m.UserID == proposal.ProposerID {
			continue
		}
		s.notification.WithTx(s.tx).NotifyBestEffort(m.UserID, subject, body)
	}
}
