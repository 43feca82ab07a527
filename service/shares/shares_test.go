package shares

import (
	"testing"

	"github.com/alpacahq/gopaca/db"
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/dbtest"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/service/board"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/praxisgames/corpsim/service/notification"
	"github.com/praxisgames/corpsim/service/valuation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SharesTestSuite struct {
	dbtest.Suite
}

func TestSharesTestSuite(t *testing.T) {
	suite.Run(t, new(SharesTestSuite))
}

func (s *SharesTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *SharesTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *SharesTestSuite) svc(tx *gorm.DB) ShareService {
	return Service(
		valuation.Service(),
		ledger.Service(),
		board.Service(ledger.Service(), notification.Service()),
	).WithTx(tx)
}

func (s *SharesTestSuite) newUser(name string, cash int64) *models.User {
	user := &models.User{Name: name, Cash: decimal.New(cash, 0)}
	require.Nil(s.T(), db.DB().Create(user).Error)
	return user
}

// found commits a corporation through the service so tests start from
// the same state a player would.
func (s *SharesTestSuite) found(founder *models.User, name string, capital int64, shares uint) *models.Corporation {
	tx := db.DB().Begin()

	corp, err := s.svc(tx).Found(
		founder.ID, name, enum.Agriculture, enum.Arcadia, decimal.New(capital, 0), shares)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	return corp
}

func (s *SharesTestSuite) reloadCorp(id string) *models.Corporation {
	corp := &models.Corporation{}
	require.Nil(s.T(), db.DB().Where("id = ?", id).First(corp).Error)
	return corp
}

func (s *SharesTestSuite) userCash(id string) decimal.Decimal {
	user := &models.User{}
	require.Nil(s.T(), db.DB().Where("id = ?", id).First(user).Error)
	return user.Cash
}

func (s *SharesTestSuite) holding(corpID, userID string) uint {
	holder := &models.Shareholder{}
	q := db.DB().Where("corporation_id = ? AND user_id = ?", corpID, userID).First(holder)
	if q.RecordNotFound() {
		return 0
	}
	require.Nil(s.T(), q.Error)
	return holder.Shares
}

func (s *SharesTestSuite) TestFound() {
	founder := s.newUser("found-ok", 10000)

	corp := s.found(founder, "found-ok-corp", 6000, 100)

	// capital moved out of the founder's pocket
	assert.True(s.T(), s.userCash(founder.ID).Equal(decimal.New(4000, 0)))
	assert.True(s.T(), corp.Capital.Equal(decimal.New(6000, 0)))

	// the founder holds everything; nothing floats
	assert.Equal(s.T(), uint(100), corp.TotalShares)
	assert.Equal(s.T(), uint(0), corp.PublicShares)
	assert.Equal(s.T(), uint(100), s.holding(corp.ID, founder.ID))

	// 6000/100 * 1.2
	assert.True(s.T(), corp.SharePrice.Equal(decimal.New(72, 0)), "got %s", corp.SharePrice)

	txn := &models.Transaction{}
	require.Nil(s.T(), db.DB().
		Where("corporation_id = ? AND type = ?", corp.ID, enum.CorpFounding).
		First(txn).Error)
	assert.True(s.T(), txn.Amount.Equal(decimal.New(6000, 0)))
}

func (s *SharesTestSuite) TestFoundDuplicateName() {
	first := s.newUser("dupe-first", 10000)
	second := s.newUser("dupe-second", 10000)

	s.found(first, "dupe-corp", 1000, 10)

	tx := db.DB().Begin()
	_, err := s.svc(tx).Found(
		second.ID, "dupe-corp", enum.Agriculture, enum.Arcadia, decimal.New(1000, 0), 10)
	tx.Rollback()

	assert.True(s.T(), cserrors.Is(err, cserrors.Conflict))
}

func (s *SharesTestSuite) TestFoundInsufficientFunds() {
	founder := s.newUser("found-broke", 100)

	tx := db.DB().Begin()
	defer tx.Rollback()

	_, err := s.svc(tx).Found(
		founder.ID, "found-broke-corp", enum.Agriculture, enum.Arcadia,
		decimal.New(6000, 0), 100)

	assert.True(s.T(), cserrors.Is(err, cserrors.InsufficientFunds))
}

func (s *SharesTestSuite) TestSellThenBuy() {
	founder := s.newUser("trade-founder", 10000)
	buyer := s.newUser("trade-buyer", 10000)

	corp := s.found(founder, "trade-corp", 6000, 100)

	// selling prices at 1% under the fundamental 72: 71.28 * 20
	tx := db.DB().Begin()
	trade, err := s.svc(tx).Sell(corp.ID, founder.ID, 20)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	assert.True(s.T(), trade.PricePerShare.Equal(decimal.New(7128, -2)),
		"got %s", trade.PricePerShare)
	assert.True(s.T(), trade.Total.Equal(decimal.New(14256, -1)))

	corp = s.reloadCorp(corp.ID)
	assert.Equal(s.T(), uint(20), corp.PublicShares)
	assert.Equal(s.T(), uint(80), s.holding(corp.ID, founder.ID))
	assert.True(s.T(), s.userCash(founder.ID).Equal(decimal.New(54256, -1)))
	assert.True(s.T(), corp.Capital.Equal(decimal.New(45744, -1)))

	// buying pulls from the float at 1% over the blended price
	tx = db.DB().Begin()
	trade, err = s.svc(tx).Buy(corp.ID, buyer.ID, 5)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	corp = s.reloadCorp(corp.ID)
	assert.Equal(s.T(), uint(15), corp.PublicShares)
	assert.Equal(s.T(), uint(5), s.holding(corp.ID, buyer.ID))

	// money is conserved: buyer's spend landed in capital
	spent := decimal.New(10000, 0).Sub(s.userCash(buyer.ID))
	assert.True(s.T(), spent.Equal(trade.Total))
	assert.True(s.T(), corp.Capital.Equal(decimal.New(45744, -1).Add(trade.Total)))

	var trades int
	require.Nil(s.T(), db.DB().
		Model(&models.ShareTransaction{}).
		Where("corporation_id = ?", corp.ID).
		Count(&trades).Error)
	assert.Equal(s.T(), 2, trades)
}

func (s *SharesTestSuite) TestBuyWithoutFloat() {
	founder := s.newUser("no-float-founder", 10000)
	buyer := s.newUser("no-float-buyer", 10000)

	corp := s.found(founder, "no-float-corp", 6000, 100)

	tx := db.DB().Begin()
	defer tx.Rollback()

	_, err := s.svc(tx).Buy(corp.ID, buyer.ID, 1)
	assert.True(s.T(), cserrors.Is(err, cserrors.Conflict))
}

func (s *SharesTestSuite) TestSellGuards() {
	founder := s.newUser("sell-guard-founder", 10000)
	stranger := s.newUser("sell-guard-stranger", 10000)

	corp := s.found(founder, "sell-guard-corp", 6000, 100)

	tx := db.DB().Begin()
	_, err := s.svc(tx).Sell(corp.ID, stranger.ID, 1)
	tx.Rollback()
	assert.True(s.T(), cserrors.Is(err, cserrors.NotShareholder))

	tx = db.DB().Begin()
	_, err = s.svc(tx).Sell(corp.ID, founder.ID, 200)
	tx.Rollback()
	assert.True(s.T(), cserrors.Is(err, cserrors.Conflict))
}

func (s *SharesTestSuite) TestIssue() {
	founder := s.newUser("issue-founder", 10000)
	buyer := s.newUser("issue-buyer", 10000)

	corp := s.found(founder, "issue-corp", 6000, 100)

	// as largest shareholder the founder is on the board and can issue;
	// issuance prices at the computed value with no spread: 72 * 10
	tx := db.DB().Begin()
	trade, err := s.svc(tx).Issue(corp.ID, founder.ID, buyer.ID, 10)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	assert.True(s.T(), trade.PricePerShare.Equal(decimal.New(72, 0)))
	assert.True(s.T(), trade.Total.Equal(decimal.New(720, 0)))

	corp = s.reloadCorp(corp.ID)
	assert.Equal(s.T(), uint(110), corp.TotalShares)
	assert.True(s.T(), corp.Capital.Equal(decimal.New(6720, 0)))
	assert.Equal(s.T(), uint(10), s.holding(corp.ID, buyer.ID))
	assert.True(s.T(), s.userCash(buyer.ID).Equal(decimal.New(9280, 0)))
}

func (s *SharesTestSuite) TestIssueRequiresBoard() {
	founder := s.newUser("issue-gate-founder", 10000)
	outsider := s.newUser("issue-gate-outsider", 10000)

	corp := s.found(founder, "issue-gate-corp", 6000, 100)

	tx := db.DB().Begin()
	defer tx.Rollback()

	_, err := s.svc(tx).Issue(corp.ID, outsider.ID, outsider.ID, 10)
	assert.True(s.T(), cserrors.Is(err, cserrors.NotBoardMember))
}
