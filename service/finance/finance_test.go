package finance

import (
	"testing"

	"github.com/alpacahq/gopaca/db"
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/dbtest"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/service/board"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/praxisgames/corpsim/service/notification"
	"github.com/praxisgames/corpsim/service/pricing"
	"github.com/praxisgames/corpsim/service/valuation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestHourlyBook(t *testing.T) {
	// reference prices keep the arithmetic auditable
	prices := &pricing.PriceSet{
		Commodities: map[enum.Commodity]decimal.Decimal{},
		Products:    map[enum.Product]decimal.Decimal{},
	}
	for commodity, curve := range pricing.CommodityCurves {
		prices.Commodities[commodity] = curve.Reference
	}
	for product, curve := range pricing.ProductCurves {
		prices.Products[product] = curve.Reference
	}

	// 10 mining extraction units: 10*5 ore at 25 = 1250 revenue;
	// electricity 10*2*30 = 600, labor 10*7, overhead 10*2 = 690 cost
	entries := []models.MarketEntry{{
		Sector:          enum.Mining,
		ExtractionUnits: 10,
	}}

	revenue, cost := HourlyBook(entries, prices)
	assert.True(t, revenue.Equal(decimal.New(1250, 0)), "got %s", revenue)
	assert.True(t, cost.Equal(decimal.New(690, 0)), "got %s", cost)

	// 10 services retail units: 10*35 = 350 base revenue; food
	// 10*1*20 = 200, labor 50, overhead 10 = 260 cost
	entries = append(entries, models.MarketEntry{
		Sector:      enum.Services,
		RetailUnits: 10,
	})

	revenue, cost = HourlyBook(entries, prices)
	assert.True(t, revenue.Equal(decimal.New(1600, 0)), "got %s", revenue)
	assert.True(t, cost.Equal(decimal.New(950, 0)), "got %s", cost)

	// unknown sectors contribute nothing
	revenue, cost = HourlyBook([]models.MarketEntry{{Sector: "SPACE"}}, prices)
	assert.True(t, revenue.Equal(decimal.Zero))
	assert.True(t, cost.Equal(decimal.Zero))
}

type FinanceTestSuite struct {
	dbtest.Suite
}

func TestFinanceTestSuite(t *testing.T) {
	suite.Run(t, new(FinanceTestSuite))
}

func (s *FinanceTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *FinanceTestSuite) TearDownSuite() {
	s.TeardownDB()
}

// SetupTest clears market entries left by earlier tests so each test
// prices against exactly the economy it seeds.
func (s *FinanceTestSuite) SetupTest() {
	require.Nil(s.T(), db.DB().Delete(&models.MarketEntry{}).Error)
	pricing.Invalidate()
}

func (s *FinanceTestSuite) svc(tx *gorm.DB) FinanceService {
	return Service(
		pricing.Service(),
		valuation.Service(),
		ledger.Service(),
		board.Service(ledger.Service(), notification.Service()),
		notification.Service(),
	).WithTx(tx)
}

type corpFixture struct {
	corp    *models.Corporation
	founder *models.User
	m2, m3  *models.User
}

// newCorp commits a corporation with a 60/25/15 shareholder split of
// 100 shares; the founder is the acting CEO.
func (s *FinanceTestSuite) newCorp(name string, capital decimal.Decimal) *corpFixture {
	f := &corpFixture{
		founder: &models.User{Name: name + "-founder", Cash: decimal.New(1000, 0)},
		m2:      &models.User{Name: name + "-m2", Cash: decimal.New(1000, 0)},
		m3:      &models.User{Name: name + "-m3", Cash: decimal.New(1000, 0)},
	}

	tx := db.DB().Begin()

	for _, u := range []*models.User{f.founder, f.m2, f.m3} {
		if err := tx.Create(u).Error; err != nil {
			tx.Rollback()
			assert.FailNow(s.T(), err.Error())
		}
	}

	f.corp = &models.Corporation{
		Name:        name,
		FounderID:   f.founder.ID,
		Sector:      enum.Services,
		HQState:     enum.Arcadia,
		Capital:     capital,
		TotalShares: 100,
		SharePrice:  decimal.New(10, 0),
	}

	if err := tx.Create(f.corp).Error; err != nil {
		tx.Rollback()
		assert.FailNow(s.T(), err.Error())
	}

	holdings := []models.Shareholder{
		{CorporationID: f.corp.ID, UserID: f.founder.ID, Shares: 60},
		{CorporationID: f.corp.ID, UserID: f.m2.ID, Shares: 25},
		{CorporationID: f.corp.ID, UserID: f.m3.ID, Shares: 15},
	}

	for i := range holdings {
		if err := tx.Create(&holdings[i]).Error; err != nil {
			tx.Rollback()
			assert.FailNow(s.T(), err.Error())
		}
	}

	if err := tx.Commit().Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}

	return f
}

func (s *FinanceTestSuite) reloadCorp(id string) *models.Corporation {
	corp := &models.Corporation{}
	require.Nil(s.T(), db.DB().Where("id = ?", id).First(corp).Error)
	return corp
}

func (s *FinanceTestSuite) userCash(id string) decimal.Decimal {
	user := &models.User{}
	require.Nil(s.T(), db.DB().Where("id = ?", id).First(user).Error)
	return user.Cash
}

func (s *FinanceTestSuite) TestSettleSkipsIdleCorporations() {
	f := s.newCorp("idle-corp", decimal.New(100000, 0))

	tx := db.DB().Begin()
	result, err := s.svc(tx).Settle(f.corp)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	// no market entries: nothing to book, nothing changes
	assert.True(s.T(), result.Net.Equal(decimal.Zero))
	assert.True(s.T(), result.Capital.Equal(decimal.New(100000, 0)))
	assert.True(s.T(), result.SharePrice.Equal(decimal.New(10, 0)))

	corp := s.reloadCorp(f.corp.ID)
	assert.True(s.T(), corp.Capital.Equal(decimal.New(100000, 0)))
	assert.True(s.T(), corp.SharePrice.Equal(decimal.New(10, 0)))

	// an idle tick leaves no ledger entry and no history row
	var ledgerRows int
	require.Nil(s.T(), db.DB().
		Model(&models.Transaction{}).
		Where("corporation_id = ?", f.corp.ID).
		Count(&ledgerRows).Error)
	assert.Equal(s.T(), 0, ledgerRows)

	var history int
	require.Nil(s.T(), db.DB().
		Model(&models.SharePriceHistory{}).
		Where("corporation_id = ?", f.corp.ID).
		Count(&history).Error)
	assert.Equal(s.T(), 0, history)
}

func (s *FinanceTestSuite) TestSettleClampsCapitalAtZero() {
	f := s.newCorp("sinking-corp", decimal.New(10, 0))

	// service units demanding consumer goods nobody supplies run at a
	// heavy loss
	entry := models.MarketEntry{
		CorporationID: f.corp.ID,
		State:         enum.Arcadia,
		Sector:        enum.Services,
		ServiceUnits:  10,
	}
	require.Nil(s.T(), db.DB().Create(&entry).Error)

	tx := db.DB().Begin()
	result, err := s.svc(tx).Settle(f.corp)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	require.True(s.T(), result.Net.IsNegative())
	assert.True(s.T(), result.Capital.Equal(decimal.Zero))

	corp := s.reloadCorp(f.corp.ID)
	assert.True(s.T(), corp.Capital.Equal(decimal.Zero))

	// the loss is on the books at its full magnitude
	txn := &models.Transaction{}
	require.Nil(s.T(), db.DB().
		Where("corporation_id = ? AND type = ?", f.corp.ID, enum.CorpLoss).
		First(txn).Error)
	assert.True(s.T(), txn.Amount.Equal(result.Net.Abs()))
}

func (s *FinanceTestSuite) TestSettleSalary() {
	f := s.newCorp("payroll-corp", decimal.New(1000000, 0))

	// 9.6M per 96h period pays 100k hourly
	require.Nil(s.T(), db.DB().
		Model(f.corp).
		Update("ceo_salary", decimal.New(9600000, 0)).Error)
	f.corp = s.reloadCorp(f.corp.ID)

	tx := db.DB().Begin()
	require.Nil(s.T(), s.svc(tx).SettleSalary(f.corp))
	require.Nil(s.T(), tx.Commit().Error)

	corp := s.reloadCorp(f.corp.ID)
	assert.True(s.T(), corp.Capital.Equal(decimal.New(900000, 0)), "got %s", corp.Capital)

	// the acting CEO is the largest shareholder
	assert.True(s.T(), s.userCash(f.founder.ID).Equal(decimal.New(101000, 0)))
	assert.True(s.T(), s.userCash(f.m2.ID).Equal(decimal.New(1000, 0)))

	var entries int
	require.Nil(s.T(), db.DB().
		Model(&models.Transaction{}).
		Where("corporation_id = ? AND type = ?", f.corp.ID, enum.CEOSalary).
		Count(&entries).Error)
	assert.Equal(s.T(), 1, entries)
}

func (s *FinanceTestSuite) TestSettleSalaryRequiresCEO() {
	member := &models.User{Name: "headless-appointee", Cash: decimal.New(1000, 0)}
	require.Nil(s.T(), db.DB().Create(member).Error)

	// no shareholders means no acting CEO, even though an appointed
	// member still sits on the board
	corp := &models.Corporation{
		Name:        "headless-corp",
		FounderID:   member.ID,
		Sector:      enum.Services,
		HQState:     enum.Arcadia,
		Capital:     decimal.New(1000000, 0),
		TotalShares: 100,
		SharePrice:  decimal.New(10, 0),
		CEOSalary:   decimal.New(9600000, 0),
	}
	require.Nil(s.T(), db.DB().Create(corp).Error)

	appt := models.BoardAppointment{CorporationID: corp.ID, UserID: member.ID}
	require.Nil(s.T(), db.DB().Create(&appt).Error)

	tx := db.DB().Begin()
	require.Nil(s.T(), s.svc(tx).SettleSalary(corp))
	require.Nil(s.T(), tx.Commit().Error)

	// a vacant CEO seat draws no salary
	assert.True(s.T(), s.userCash(member.ID).Equal(decimal.New(1000, 0)))

	corp = s.reloadCorp(corp.ID)
	assert.True(s.T(), corp.Capital.Equal(decimal.New(1000000, 0)))
	assert.True(s.T(), corp.CEOSalary.Equal(decimal.New(9600000, 0)))
}

func (s *FinanceTestSuite) TestSettleSalaryShortfall() {
	f := s.newCorp("broke-payroll-corp", decimal.New(50000, 0))

	require.Nil(s.T(), db.DB().
		Model(f.corp).
		Update("ceo_salary", decimal.New(9600000, 0)).Error)
	f.corp = s.reloadCorp(f.corp.ID)

	tx := db.DB().Begin()
	require.Nil(s.T(), s.svc(tx).SettleSalary(f.corp))
	require.Nil(s.T(), tx.Commit().Error)

	// no partial payment: the salary resets and capital is untouched
	corp := s.reloadCorp(f.corp.ID)
	assert.True(s.T(), corp.CEOSalary.Equal(decimal.Zero))
	assert.True(s.T(), corp.Capital.Equal(decimal.New(50000, 0)))
	assert.True(s.T(), s.userCash(f.founder.ID).Equal(decimal.New(1000, 0)))
}

func (s *FinanceTestSuite) TestSettleDividends() {
	f := s.newCorp("dividend-corp", decimal.New(100000, 0))

	require.Nil(s.T(), db.DB().
		Model(f.corp).
		Update("dividend_percent", decimal.New(25, 0)).Error)
	f.corp = s.reloadCorp(f.corp.ID)

	// the corporation retails food in a glutted food market: 10 units
	// earn 350 base revenue against cheap stock, so hourly profit is
	// comfortably positive
	entries := []models.MarketEntry{
		{CorporationID: f.corp.ID, State: enum.Arcadia, Sector: enum.Agriculture, RetailUnits: 10},
	}

	// two outside producers keep food and electricity supplied
	producer := s.newCorp("dividend-producer", decimal.New(100000, 0))
	entries = append(entries,
		models.MarketEntry{
			CorporationID: producer.corp.ID, State: enum.Belmont,
			Sector: enum.Agriculture, ProductionUnits: 100},
		models.MarketEntry{
			CorporationID: producer.corp.ID, State: enum.Calderon,
			Sector: enum.Utilities, ProductionUnits: 100},
	)

	for i := range entries {
		require.Nil(s.T(), db.DB().Create(&entries[i]).Error)
	}
	pricing.Invalidate()

	// expected pool mirrors the settlement projection
	prices, err := pricing.Service().WithTx(db.DB()).Current()
	require.Nil(s.T(), err)

	revenue, cost := HourlyBook(entries[:1], prices)
	hourlyProfit := revenue.Sub(cost)
	require.True(s.T(), hourlyProfit.IsPositive(), "profit was %s", hourlyProfit)

	pool := hourlyProfit.
		Mul(decimal.New(25, 0)).
		Div(decimal.New(100, 0)).
		Round(2)

	tx := db.DB().Begin()
	require.Nil(s.T(), s.svc(tx).SettleDividends(f.corp))
	require.Nil(s.T(), tx.Commit().Error)

	// pro rata on the 60/25/15 split
	base := decimal.New(1000, 0)
	shares := decimal.New(100, 0)

	for user, held := range map[string]int64{f.founder.ID: 60, f.m2.ID: 25, f.m3.ID: 15} {
		cut := pool.Mul(decimal.New(held, 0)).Div(shares).Round(2)
		assert.True(s.T(), s.userCash(user).Equal(base.Add(cut)),
			"user %v holds %v shares, cash %s", user, held, s.userCash(user))
	}

	// the pool leaves capital exactly once
	corp := s.reloadCorp(f.corp.ID)
	assert.True(s.T(), corp.Capital.Equal(decimal.New(100000, 0).Sub(pool)),
		"got %s", corp.Capital)

	var ledgerRows int
	require.Nil(s.T(), db.DB().
		Model(&models.Transaction{}).
		Where("corporation_id = ? AND type = ?", f.corp.ID, enum.DividendPayment).
		Count(&ledgerRows).Error)
	assert.Equal(s.T(), 3, ledgerRows)
}

func (s *FinanceTestSuite) TestSettleDividendsSkips() {
	f := s.newCorp("no-dividend-corp", decimal.New(100000, 0))

	// zero percent configured: nothing moves
	tx := db.DB().Begin()
	require.Nil(s.T(), s.svc(tx).SettleDividends(f.corp))
	require.Nil(s.T(), tx.Commit().Error)

	assert.True(s.T(), s.userCash(f.founder.ID).Equal(decimal.New(1000, 0)))

	// positive percent with no operations projects a zero pool
	require.Nil(s.T(), db.DB().
		Model(f.corp).
		Update("dividend_percent", decimal.New(25, 0)).Error)
	f.corp = s.reloadCorp(f.corp.ID)

	tx = db.DB().Begin()
	require.Nil(s.T(), s.svc(tx).SettleDividends(f.corp))
	require.Nil(s.T(), tx.Commit().Error)

	corp := s.reloadCorp(f.corp.ID)
	assert.True(s.T(), corp.Capital.Equal(decimal.New(100000, 0)))
	assert.True(s.T(), s.userCash(f.founder.ID).Equal(decimal.New(1000, 0)))
}
