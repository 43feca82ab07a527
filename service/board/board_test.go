package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/alpacahq/gopaca/db"
	"github.com/jinzhu/gorm"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/dbtest"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/praxisgames/corpsim/service/notification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BoardTestSuite struct {
	dbtest.Suite
}

func TestBoardTestSuite(t *testing.T) {
	suite.Run(t, new(BoardTestSuite))
}

func (s *BoardTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *BoardTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *BoardTestSuite) svc(tx *gorm.DB) BoardService {
	return Service(ledger.Service(), notification.Service()).WithTx(tx)
}

// fixture is one committed corporation with a three-seat board: the
// founder holds the most shares (acting CEO), two appointed members
// hold the rest, and one shareholder-outsider sits off the board.
type fixture struct {
	corp     *models.Corporation
	founder  *models.User
	m2, m3   *models.User
	outsider *models.User
}

func (s *BoardTestSuite) newBoard(name string) *fixture {
	f := &fixture{
		founder:  &models.User{Name: name + "-founder", Cash: decimal.New(10000, 0)},
		m2:       &models.User{Name: name + "-m2", Cash: decimal.New(10000, 0)},
		m3:       &models.User{Name: name + "-m3", Cash: decimal.New(10000, 0)},
		outsider: &models.User{Name: name + "-outsider", Cash: decimal.New(10000, 0)},
	}

	tx := db.DB().Begin()

	for _, u := range []*models.User{f.founder, f.m2, f.m3, f.outsider} {
		if err := tx.Create(u).Error; err != nil {
			tx.Rollback()
			assert.FailNow(s.T(), err.Error())
		}
	}

	f.corp = &models.Corporation{
		Name:        name,
		FounderID:   f.founder.ID,
		Sector:      enum.Agriculture,
		HQState:     enum.Arcadia,
		Capital:     decimal.New(100000, 0),
		TotalShares: 100,
		SharePrice:  decimal.New(10, 0),
		BoardSize:   3,
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

	for _, userID := range []string{f.m2.ID, f.m3.ID} {
		appt := models.BoardAppointment{CorporationID: f.corp.ID, UserID: userID}
		if err := tx.Create(&appt).Error; err != nil {
			tx.Rollback()
			assert.FailNow(s.T(), err.Error())
		}
	}

	if err := tx.Commit().Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}

	return f
}

func (s *BoardTestSuite) propose(f *fixture, proposalType enum.ProposalType, payload models.ProposalPayload) *models.BoardProposal {
	tx := db.DB().Begin()

	proposal, err := s.svc(tx).CreateProposal(f.corp.ID, f.founder.ID, proposalType, payload)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	return proposal
}

func (s *BoardTestSuite) vote(proposalID, voterID string, value enum.VoteValue) (*models.BoardProposal, error) {
	tx := db.DB().Begin()

	proposal, err := s.svc(tx).Vote(proposalID, voterID, value)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	require.Nil(s.T(), tx.Commit().Error)
	return proposal, nil
}

func (s *BoardTestSuite) reloadCorp(id string) *models.Corporation {
	corp := &models.Corporation{}
	require.Nil(s.T(), db.DB().Where("id = ?", id).First(corp).Error)
	return corp
}

func (s *BoardTestSuite) reloadProposal(id string) *models.BoardProposal {
	proposal := &models.BoardProposal{}
	require.Nil(s.T(), db.DB().Where("id = ?", id).First(proposal).Error)
	return proposal
}

func (s *BoardTestSuite) TestSupermajority() {
	assert.Equal(s.T(), 2, Supermajority(3))
	assert.Equal(s.T(), 3, Supermajority(4))
	assert.Equal(s.T(), 3, Supermajority(5))
	assert.Equal(s.T(), 4, Supermajority(7))
}

func (s *BoardTestSuite) TestDerivedMembers() {
	f := s.newBoard("members-corp")

	members, err := s.svc(db.DB()).Members(f.corp.ID)
	require.Nil(s.T(), err)
	require.Len(s.T(), members, 3)

	// largest shareholder acts as CEO when nobody was elected
	assert.Equal(s.T(), f.founder.ID, members[0].UserID)
	assert.Equal(s.T(), RoleCEO, members[0].Role)
	assert.True(s.T(), members[0].Acting)

	assert.Equal(s.T(), f.m2.ID, members[1].UserID)
	assert.Equal(s.T(), f.m3.ID, members[2].UserID)

	// electing a CEO displaces the acting seat; the elected member's
	// appointment no longer consumes a seat
	require.Nil(s.T(), db.DB().Model(f.corp).Update("ceo_id", f.m2.ID).Error)

	members, err = s.svc(db.DB()).Members(f.corp.ID)
	require.Nil(s.T(), err)
	require.Len(s.T(), members, 2)

	assert.Equal(s.T(), f.m2.ID, members[0].UserID)
	assert.False(s.T(), members[0].Acting)
	assert.Equal(s.T(), f.m3.ID, members[1].UserID)
}

func (s *BoardTestSuite) TestMemberSeatCap() {
	f := s.newBoard("seat-cap-corp")

	// a third appointment exists but the charter only has two member
	// seats next to the CEO
	appt := models.BoardAppointment{CorporationID: f.corp.ID, UserID: f.outsider.ID}
	require.Nil(s.T(), db.DB().Create(&appt).Error)

	members, err := s.svc(db.DB()).Members(f.corp.ID)
	require.Nil(s.T(), err)
	assert.Len(s.T(), members, 3)

	ok, err := s.svc(db.DB()).IsMember(f.corp.ID, f.outsider.ID)
	require.Nil(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *BoardTestSuite) TestVacantCEOSeatStaysVacant() {
	f := s.newBoard("vacant-seat-corp")

	// every shareholder cashed out: nobody is left to act as CEO
	require.Nil(s.T(), db.DB().
		Where("corporation_id = ?", f.corp.ID).
		Delete(&models.Shareholder{}).Error)

	// a third appointment is waiting for a seat
	appt := models.BoardAppointment{CorporationID: f.corp.ID, UserID: f.outsider.ID}
	require.Nil(s.T(), db.DB().Create(&appt).Error)

	// only the two member seats fill; the CEO seat never goes to an
	// appointee
	members, err := s.svc(db.DB()).Members(f.corp.ID)
	require.Nil(s.T(), err)
	require.Len(s.T(), members, 2)

	assert.Equal(s.T(), f.m2.ID, members[0].UserID)
	assert.Equal(s.T(), f.m3.ID, members[1].UserID)
	for _, m := range members {
		assert.Equal(s.T(), RoleMember, m.Role)
	}
}

func (s *BoardTestSuite) TestQuorumTracksBoardSize() {
	f := s.newBoard("quorum-growth-corp")

	proposal := s.propose(f, enum.HQChange, models.HQChangePayload{State: enum.Dorado})

	// the charter grows to five seats while the vote is open, moving
	// the supermajority threshold from 2 to 3
	require.Nil(s.T(), db.DB().Model(f.corp).Update("board_size", 5).Error)

	_, err := s.vote(proposal.ID, f.founder.ID, enum.Aye)
	require.Nil(s.T(), err)

	// two ayes would have carried the original board of three
	result, err := s.vote(proposal.ID, f.m2.ID, enum.Aye)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ProposalActive, result.Status)

	result, err = s.vote(proposal.ID, f.m3.ID, enum.Aye)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ProposalPassed, result.Status)
	assert.Equal(s.T(), enum.Dorado, s.reloadCorp(f.corp.ID).HQState)
}

func (s *BoardTestSuite) TestActingCEOTieBreak() {
	f := s.newBoard("tie-break-corp")

	// even the holdings: the earliest position wins the acting seat
	require.Nil(s.T(), db.DB().
		Model(&models.Shareholder{}).
		Where("corporation_id = ? AND user_id = ?", f.corp.ID, f.m2.ID).
		Updates(map[string]interface{}{
			"shares":     60,
			"created_at": time.Now().Add(time.Hour),
		}).Error)

	members, err := s.svc(db.DB()).Members(f.corp.ID)
	require.Nil(s.T(), err)
	require.NotEmpty(s.T(), members)
	assert.Equal(s.T(), f.founder.ID, members[0].UserID)
}

func (s *BoardTestSuite) TestCreateProposalRequiresBoard() {
	f := s.newBoard("proposer-gate-corp")

	tx := db.DB().Begin()
	defer tx.Rollback()

	_, err := s.svc(tx).CreateProposal(
		f.corp.ID, f.outsider.ID, enum.HQChange, models.HQChangePayload{State: enum.Dorado})

	assert.True(s.T(), cserrors.Is(err, cserrors.NotBoardMember))
}

func (s *BoardTestSuite) TestCreateProposalValidatesPayload() {
	f := s.newBoard("payload-gate-corp")

	tx := db.DB().Begin()
	defer tx.Rollback()

	_, err := s.svc(tx).CreateProposal(
		f.corp.ID, f.founder.ID, enum.HQChange, models.HQChangePayload{State: "ATLANTIS"})

	assert.True(s.T(), cserrors.Is(err, cserrors.InvalidProposalPayload))
}

func (s *BoardTestSuite) TestCEONominationRequiresShareholder() {
	f := s.newBoard("nominee-gate-corp")

	stranger := &models.User{Name: "nominee-gate-stranger"}
	require.Nil(s.T(), db.DB().Create(stranger).Error)

	tx := db.DB().Begin()
	defer tx.Rollback()

	_, err := s.svc(tx).CreateProposal(
		f.corp.ID, f.founder.ID, enum.CEONomination,
		models.CEONominationPayload{NomineeID: stranger.ID})

	assert.True(s.T(), cserrors.Is(err, cserrors.NotShareholder))
}

func (s *BoardTestSuite) TestSupermajorityResolvesEarly() {
	f := s.newBoard("early-resolve-corp")

	proposal := s.propose(f, enum.HQChange, models.HQChangePayload{State: enum.Dorado})

	// one aye of three seats keeps it open
	result, err := s.vote(proposal.ID, f.founder.ID, enum.Aye)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ProposalActive, result.Status)

	// the second aye is a supermajority; the payload applies without
	// waiting for the third vote
	result, err = s.vote(proposal.ID, f.m2.ID, enum.Aye)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ProposalPassed, result.Status)
	require.NotNil(s.T(), result.ResolvedAt)

	assert.Equal(s.T(), enum.Dorado, s.reloadCorp(f.corp.ID).HQState)
}

func (s *BoardTestSuite) TestNaySupermajorityFails() {
	f := s.newBoard("nay-resolve-corp")

	proposal := s.propose(f, enum.HQChange, models.HQChangePayload{State: enum.Dorado})

	_, err := s.vote(proposal.ID, f.m2.ID, enum.Nay)
	require.Nil(s.T(), err)

	result, err := s.vote(proposal.ID, f.m3.ID, enum.Nay)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ProposalFailed, result.Status)

	// the payload never applied
	assert.Equal(s.T(), enum.Arcadia, s.reloadCorp(f.corp.ID).HQState)
}

func (s *BoardTestSuite) TestRevoteOverwrites() {
	f := s.newBoard("revote-corp")

	proposal := s.propose(f, enum.HQChange, models.HQChangePayload{State: enum.Dorado})

	_, err := s.vote(proposal.ID, f.founder.ID, enum.Aye)
	require.Nil(s.T(), err)

	// flipping to nay replaces the earlier ballot instead of stacking
	result, err := s.vote(proposal.ID, f.founder.ID, enum.Nay)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ProposalActive, result.Status)

	var count int
	require.Nil(s.T(), db.DB().
		Model(&models.BoardVote{}).
		Where("proposal_id = ?", proposal.ID).
		Count(&count).Error)
	assert.Equal(s.T(), 1, count)
}

func (s *BoardTestSuite) TestVoteOnResolvedProposal() {
	f := s.newBoard("late-vote-corp")

	proposal := s.propose(f, enum.HQChange, models.HQChangePayload{State: enum.Dorado})

	_, err := s.vote(proposal.ID, f.founder.ID, enum.Aye)
	require.Nil(s.T(), err)
	_, err = s.vote(proposal.ID, f.m2.ID, enum.Aye)
	require.Nil(s.T(), err)

	_, err = s.vote(proposal.ID, f.m3.ID, enum.Aye)
	assert.True(s.T(), cserrors.Is(err, cserrors.ProposalNotActive))
}

func (s *BoardTestSuite) TestResolveTieFails() {
	f := s.newBoard("tie-corp")

	proposal := s.propose(f, enum.HQChange, models.HQChangePayload{State: enum.Dorado})

	_, err := s.vote(proposal.ID, f.founder.ID, enum.Aye)
	require.Nil(s.T(), err)
	_, err = s.vote(proposal.ID, f.m2.ID, enum.Nay)
	require.Nil(s.T(), err)

	// split vote can't decide early
	assert.Equal(s.T(), enum.ProposalActive, s.reloadProposal(proposal.ID).Status)

	// the expiry path decides by simple majority; a tie fails
	tx := db.DB().Begin()
	result, err := s.svc(tx).Resolve(proposal.ID)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	assert.Equal(s.T(), enum.ProposalFailed, result.Status)
	assert.Equal(s.T(), enum.Arcadia, s.reloadCorp(f.corp.ID).HQState)
}

func (s *BoardTestSuite) TestResolveIsIdempotent() {
	f := s.newBoard("idempotent-corp")

	proposal := s.propose(f, enum.HQChange, models.HQChangePayload{State: enum.Dorado})

	tx := db.DB().Begin()
	first, err := s.svc(tx).Resolve(proposal.ID)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	assert.Equal(s.T(), enum.ProposalFailed, first.Status)
	require.NotNil(s.T(), first.ResolvedAt)

	tx = db.DB().Begin()
	second, err := s.svc(tx).Resolve(proposal.ID)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	assert.Equal(s.T(), enum.ProposalFailed, second.Status)
	assert.Equal(s.T(), first.ResolvedAt.Unix(), second.ResolvedAt.Unix())
}

func (s *BoardTestSuite) TestStockSplit() {
	f := s.newBoard("split-corp")

	proposal := s.propose(f, enum.StockSplit, models.StockSplitPayload{})

	_, err := s.vote(proposal.ID, f.founder.ID, enum.Aye)
	require.Nil(s.T(), err)
	result, err := s.vote(proposal.ID, f.m2.ID, enum.Aye)
	require.Nil(s.T(), err)
	require.Equal(s.T(), enum.ProposalPassed, result.Status)

	corp := s.reloadCorp(f.corp.ID)
	assert.Equal(s.T(), uint(200), corp.TotalShares)
	assert.True(s.T(), corp.SharePrice.Equal(decimal.New(5, 0)))

	holder := &models.Shareholder{}
	require.Nil(s.T(), db.DB().
		Where("corporation_id = ? AND user_id = ?", f.corp.ID, f.founder.ID).
		First(holder).Error)
	assert.Equal(s.T(), uint(120), holder.Shares)
}

func (s *BoardTestSuite) TestSpecialDividend() {
	f := s.newBoard("special-div-corp")

	amount := decimal.New(1000, 0)
	proposal := s.propose(f, enum.SpecialDividend, models.SpecialDividendPayload{Amount: amount})

	_, err := s.vote(proposal.ID, f.founder.ID, enum.Aye)
	require.Nil(s.T(), err)
	result, err := s.vote(proposal.ID, f.m2.ID, enum.Aye)
	require.Nil(s.T(), err)
	require.Equal(s.T(), enum.ProposalPassed, result.Status)

	// pro rata on a 60/25/15 split of 100 shares
	expected := map[string]decimal.Decimal{
		f.founder.ID: decimal.New(600, 0),
		f.m2.ID:      decimal.New(250, 0),
		f.m3.ID:      decimal.New(150, 0),
	}

	for userID, cut := range expected {
		user := &models.User{}
		require.Nil(s.T(), db.DB().Where("id = ?", userID).First(user).Error)
		assert.True(s.T(), user.Cash.Equal(decimal.New(10000, 0).Add(cut)),
			fmt.Sprintf("user %v got %v", userID, user.Cash))
	}

	corp := s.reloadCorp(f.corp.ID)
	assert.True(s.T(), corp.Capital.Equal(decimal.New(99000, 0)))
	require.NotNil(s.T(), corp.LastSpecialDividendAt)
	assert.True(s.T(), corp.LastSpecialDividend.Equal(amount))

	var entries int
	require.Nil(s.T(), db.DB().
		Model(&models.Transaction{}).
		Where("corporation_id = ? AND type = ?", f.corp.ID, enum.SpecialDividendPay).
		Count(&entries).Error)
	assert.Equal(s.T(), 3, entries)

	// the cooldown now blocks the next proposal
	tx := db.DB().Begin()
	defer tx.Rollback()

	_, err = s.svc(tx).CreateProposal(
		f.corp.ID, f.founder.ID, enum.SpecialDividend,
		models.SpecialDividendPayload{Amount: amount})
	assert.True(s.T(), cserrors.Is(err, cserrors.CooldownActive))
}

func (s *BoardTestSuite) TestSpecialDividendShortfall() {
	f := s.newBoard("short-div-corp")

	// capital drops between proposal and resolution
	proposal := s.propose(f, enum.SpecialDividend,
		models.SpecialDividendPayload{Amount: decimal.New(1000, 0)})

	require.Nil(s.T(), db.DB().
		Model(f.corp).
		Update("capital", decimal.New(500, 0)).Error)

	_, err := s.vote(proposal.ID, f.founder.ID, enum.Aye)
	require.Nil(s.T(), err)
	result, err := s.vote(proposal.ID, f.m2.ID, enum.Aye)
	require.Nil(s.T(), err)

	// the proposal still passes, but nothing pays out and the
	// cooldown stays unstamped so the board can retry
	assert.Equal(s.T(), enum.ProposalPassed, result.Status)

	corp := s.reloadCorp(f.corp.ID)
	assert.True(s.T(), corp.Capital.Equal(decimal.New(500, 0)))
	assert.Nil(s.T(), corp.LastSpecialDividendAt)
}

func (s *BoardTestSuite) TestResignCEO() {
	f := s.newBoard("resign-corp")

	require.Nil(s.T(), db.DB().Model(f.corp).Update("ceo_id", f.m2.ID).Error)

	tx := db.DB().Begin()
	err := s.svc(tx).ResignCEO(f.corp.ID, f.m3.ID)
	tx.Rollback()
	assert.True(s.T(), cserrors.Is(err, cserrors.Forbidden))

	tx = db.DB().Begin()
	require.Nil(s.T(), s.svc(tx).ResignCEO(f.corp.ID, f.m2.ID))
	require.Nil(s.T(), tx.Commit().Error)

	corp := s.reloadCorp(f.corp.ID)
	assert.False(s.T(), corp.HasElectedCEO())

	// the founder's block of shares makes them acting CEO again
	members, err := s.svc(db.DB()).Members(f.corp.ID)
	require.Nil(s.T(), err)
	require.NotEmpty(s.T(), members)
	assert.Equal(s.T(), f.founder.ID, members[0].UserID)
	assert.True(s.T(), members[0].Acting)
}
