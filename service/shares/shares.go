// Package shares implements the money-moving share operations:
// founding a corporation, buying and selling against the public float,
// and issuing new shares. Each operation is a single atomic unit of
// share, cash, capital and ledger writes.
package shares

import (
	"fmt"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/service/board"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/praxisgames/corpsim/service/valuation"
	"github.com/shopspring/decimal"
)

type ShareService interface {
	// Found creates a corporation funded from the founder's cash. The
	// founder holds every initial share; nothing floats publicly
	// until an issuance.
	Found(founderID, name string, sector enum.Sector, state enum.State, capital decimal.Decimal, shares uint) (*models.Corporation, error)

	// Buy purchases from the public float at 1% above the computed
	// price; proceeds go to corporate capital.
	Buy(corporationID, buyerID string, shares uint) (*models.ShareTransaction, error)

	// Sell returns shares to the public float at 1% below the
	// computed price, paid out of corporate capital.
	Sell(corporationID, sellerID string, shares uint) (*models.ShareTransaction, error)

	// Issue places newly created shares with a buyer at the computed
	// price exactly (no spread). Requires a board member to act.
	Issue(corporationID, actorID, buyerID string, shares uint) (*models.ShareTransaction, error)

	WithTx(tx *gorm.DB) ShareService
}

type shareService struct {
	tx        *gorm.DB
	valuation valuation.ValuationService
	ledger    ledger.LedgerService
	board     board.BoardService
}

func Service(valuation valuation.ValuationService, ledger ledger.LedgerService, board board.BoardService) ShareService {
	return &shareService{
		valuation: valuation,
		ledger:    ledger,
		board:     board,
	}
}

func (s *shareService) WithTx(tx *gorm.DB) ShareService {
	s.tx = tx
	return s
}

func (s *shareService) Found(founderID, name string, sector enum.Sector, state enum.State, capital decimal.Decimal, shares uint) (*models.Corporation, error) {
	if !capital.IsPositive() || shares == 0 {
		return nil, cserrors.InvalidRequestParam.WithMsg(
			"founding requires positive capital and at least one share")
	}
	if !sector.Valid() || !state.Valid() {
		return nil, cserrors.InvalidRequestParam.WithMsg("unknown sector or state")
	}

	founder, err := s.lockUser(founderID)
	if err != nil {
		return nil, err
	}

	if founder.Cash.LessThan(capital) {
		return nil, cserrors.InsufficientFunds
	}

	err = s.tx.
		Model(founder).
		Update("cash", gorm.Expr("cash - ?", capital)).Error
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	corp := &models.Corporation{
		Name:         name,
		FounderID:    founderID,
		Sector:       sector,
		HQState:      state,
		Capital:      capital,
		TotalShares:  shares,
		PublicShares: 0,
	}
	corp.SharePrice = valuation.Blend(corp, nil, clock.Now(), valuation.DefaultFloor)

	if err := s.tx.Create(corp).Error; err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, cserrors.Conflict.WithMsg("corporation name is already taken")
		}
		return nil, cserrors.InternalServerError.WithError(err)
	}

	holder := &models.Shareholder{
		CorporationID: corp.ID,
		UserID:        founderID,
		Shares:        shares,
	}

	if err := s.tx.Create(holder).Error; err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	_, err = s.ledger.WithTx(s.tx).Write(ledger.Entry{
		Type:          enum.CorpFounding,
		Amount:        capital,
		FromUserID:    &founderID,
		CorporationID: &corp.ID,
		Description:   fmt.Sprintf("founding capital for %v", name),
	})
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	return corp, nil
}

func (s *shareService) Buy(corporationID, buyerID string, shares uint) (*models.ShareTransaction, error) {
	if shares == 0 {
		return nil, cserrors.InvalidRequestParam.WithMsg("share count must be positive")
	}

	corp, err := s.lockCorp(corporationID)
	if err != nil {
		return nil, err
	}

	if corp.PublicShares < shares {
		return nil, cserrors.Conflict.WithMsg("not enough public shares available")
	}

	price, err := s.valuation.WithTx(s.tx).BuyPrice(corp)
	if err != nil {
		return nil, err
	}
	total := price.Mul(decimal.New(int64(shares), 0)).Round(2)

	buyer, err := s.lockUser(buyerID)
	if err != nil {
		return nil, err
	}

	if buyer.Cash.LessThan(total) {
		return nil, cserrors.InsufficientFunds
	}

	err = s.tx.
		Model(buyer).
		Update("cash", gorm.Expr("cash - ?", total)).Error
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	err = s.tx.
		Model(corp).
		Updates(map[string]interface{}{
			"capital":       gorm.Expr("capital + ?", total),
			"public_shares": gorm.Expr("public_shares - ?", shares),
		}).Error
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	if err := s.addHolding(corporationID, buyerID, shares); err != nil {
		return nil, err
	}

	return s.record(corp, &buyerID, nil, shares, price, total, enum.ShareTrade,
		fmt.Sprintf("bought %d shares of %v", shares, corp.Name), &buyerID, nil)
}

func (s *shareService) Sell(corporationID, sellerID string, shares uint) (*models.ShareTransaction, error) {
	if shares == 0 {
		return nil, cserrors.InvalidRequestParam.WithMsg("share count must be positive")
	}

	corp, err := s.lockCorp(corporationID)
	if err != nil {
		return nil, err
	}

	holder := &models.Shareholder{}

	q := s.tx.
		Set("gorm:query_option", db.ForUpdate).
		Where("corporation_id = ? AND user_id = ?", corporationID, sellerID).
		First(holder)

	if q.RecordNotFound() {
		return nil, cserrors.NotShareholder
	}
	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	if holder.Shares < shares {
		return nil, cserrors.Conflict.WithMsg("not enough shares held")
	}

	price, err := s.valuation.WithTx(s.tx).SellPrice(corp)
	if err != nil {
		return nil, err
	}
	total := price.Mul(decimal.New(int64(shares), 0)).Round(2)

	if corp.Capital.LessThan(total) {
		return nil, cserrors.InsufficientCapital
	}

	err = s.tx.
		Model(corp).
		Updates(map[string]interface{}{
			"capital":       gorm.Expr("capital - ?", total),
			"public_shares": gorm.Expr("public_shares + ?", shares),
		}).Error
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	if holder.Shares == shares {
		if err := s.tx.Delete(holder).Error; err != nil {
			return nil, cserrors.InternalServerError.WithError(err)
		}
	} else {
		err = s.tx.
			Model(holder).
			Update("shares", gorm.Expr("shares - ?", shares)).Error
		if err != nil {
			return nil, cserrors.InternalServerError.WithError(err)
		}
	}

	err = s.tx.
		Model(&models.User{}).
		Where("id = ?", sellerID).
		Update("cash", gorm.Expr("cash + ?", total)).Error
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	return s.record(corp, nil, &sellerID, shares, price, total, enum.ShareTrade,
		fmt.Sprintf("sold %d shares of %v", shares, corp.Name), nil, &sellerID)
}

func (s *shareService) Issue(corporationID, actorID, buyerID string, shares uint) (*models.ShareTransaction, error) {
	if shares == 0 {
		return nil, cserrors.InvalidRequestParam.WithMsg("share count must be positive")
	}

	isMember, err := s.board.WithTx(s.tx).IsMember(corporationID, actorID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, cserrors.NotBoardMember
	}

	corp, err := s.lockCorp(corporationID)
	if err != nil {
		return nil, err
	}

	// issuance prices at the computed value exactly, no spread
	price, err := s.valuation.WithTx(s.tx).Price(corp, valuation.DefaultFloor)
	if err != nil {
		return nil, err
	}
	total := price.Mul(decimal.New(int64(shares), 0)).Round(2)

	buyer, err := s.lockUser(buyerID)
	if err != nil {
		return nil, err
	}

	if buyer.Cash.LessThan(total) {
		return nil, cserrors.InsufficientFunds
	}

	err = s.tx.
		Model(buyer).
		Update("cash", gorm.Expr("cash - ?", total)).Error
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	err = s.tx.
		Model(corp).
		Updates(map[string]interface{}{
			"capital":      gorm.Expr("capital + ?", total),
			"total_shares": gorm.Expr("total_shares + ?", shares),
		}).Error
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	if err := s.addHolding(corporationID, buyerID, shares); err != nil {
		return nil, err
	}

	return s.record(corp, &buyerID, nil, shares, price, total, enum.ShareIssue,
		fmt.Sprintf("issued %d new shares of %v", shares, corp.Name), &buyerID, nil)
}

func (s *shareService) addHolding(corporationID, userID string, shares uint) error {
	res := s.tx.
		Model(&models.Shareholder{}).
		Where("corporation_id = ? AND user_id = ?", corporationID, userID).
		Update("shares", gorm.Expr("shares + ?", shares))

	if res.Error != nil {
		return cserrors.InternalServerError.WithError(res.Error)
	}

	if res.RowsAffected == 0 {
		holder := &models.Shareholder{
			CorporationID: corporationID,
			UserID:        userID,
			Shares:        shares,
		}
		if err := s.tx.Create(holder).Error; err != nil {
			return cserrors.InternalServerError.WithError(err)
		}
	}

	return nil
}

func (s *shareService) record(
	corp *models.Corporation,
	buyerID, sellerID *string,
	shares uint,
	price, total decimal.Decimal,
	entryType enum.TransactionType,
	description string,
	from, to *string,
) (*models.ShareTransaction, error) {
	trade := &models.ShareTransaction{
		CorporationID: corp.ID,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		Shares:        shares,
		PricePerShare: price,
		Total:         total,
	}

	if err := s.tx.Create(trade).Error; err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	_, err := s.ledger.WithTx(s.tx).Write(ledger.Entry{
		Type:          entryType,
		Amount:        total,
		FromUserID:    from,
		ToUserID:      to,
		CorporationID: &corp.ID,
		Description:   description,
		Reference:     &trade.ID,
	})
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	return trade, nil
}

func (s *shareService) lockCorp(corporationID string) (*models.Corporation, error) {
	corp := &models.Corporation{}

	q := s.tx.
		Set("gorm:query_option", db.ForUpdate).
		Where("id = ?", corporationID).
		First(corp)

	if q.RecordNotFound() {
		return nil, cserrors.NotFound.WithMsg("corporation not found")
	}
	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return corp, nil
}

func (s *shareService) lockUser(userID string) (*models.User, error) {
	user := &models.User{}

	q := s.tx.
		Set("gorm:query_option", db.ForUpdate).
		Where("id = ?", userID).
		First(user)

	if q.RecordNotFound() {
		return nil, cserrors.NotFound.WithMsg("user not found")
	}
	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return user, nil
}
