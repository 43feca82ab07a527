// Package board implements the proposal and voting state machine that
// governs corporate decisions, plus the board membership derivation it
// depends on.
//
// Membership is never persisted: the effective board is derived on
// demand from the corporation row, the shareholder set and the
// appointment set, so a share sale or a resignation is reflected by
// the very next call.
package board

import (
	"fmt"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/service/ledger"
	"github.com/praxisgames/corpsim/service/notification"
)

type Role string

const (
	RoleCEO    Role = "CEO"
	RoleMember Role = "MEMBER"
)

// Member is one seat of the derived board.
type Member struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	// Acting is true when the CEO seat is held by the largest
	// shareholder rather than an elected CEO.
	Acting bool `json:"acting"`
}

type BoardService interface {
	// Members derives the current board: the effective CEO followed
	// by up to board_size-1 appointed members in appointment order.
	Members(corporationID string) ([]Member, error)
	IsMember(corporationID, userID string) (bool, error)

	CreateProposal(corporationID, proposerID string, proposalType enum.ProposalType, payload models.ProposalPayload) (*models.BoardProposal, error)
	Vote(proposalID, voterID string, value enum.VoteValue) (*models.BoardProposal, error)

	// Resolve pushes a proposal to a terminal state by simple
	// majority regardless of participation. It is the expiry path
	// and the admin path; resolving a non-active proposal is a no-op.
	Resolve(proposalID string) (*models.BoardProposal, error)

	// ResignCEO clears the elected CEO without a proposal. The
	// largest shareholder acts as CEO from the next derivation on.
	ResignCEO(corporationID, userID string) error

	// ForceStockSplit applies a split outside the proposal flow
	// (administrative trigger). Same routine a passed split proposal
	// uses.
	ForceStockSplit(corporationID string) error

	WithTx(tx *gorm.DB) BoardService
}

type boardService struct {
	tx           *gorm.DB
	ledger       ledger.LedgerService
	notification notification.NotificationService
}

func Service(ledger ledger.LedgerService, notification notification.NotificationService) BoardService {
	return &boardService{
		ledger:       ledger,
		notification: notification,
	}
}

func (s *boardService) WithTx(tx *gorm.DB) BoardService {
	s.tx = tx
	return s
}

func (s *boardService) Members(corporationID string) ([]Member, error) {
	corp := &models.Corporation{}

	q := s.tx.Where("id = ?", corporationID).First(corp)
	if q.RecordNotFound() {
		return nil, cserrors.NotFound.WithMsg("corporation not found")
	}
	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return s.members(corp)
}

func (s *boardService) members(corp *models.Corporation) ([]Member, error) {
	members := []Member{}

	ceo, err := s.effectiveCEO(corp)
	if err != nil {
		return nil, err
	}

	if ceo != nil {
		members = append(members, *ceo)
	}

	appointments := []models.BoardAppointment{}

	q := s.tx.
		Where("corporation_id = ?", corp.ID).
		Order("created_at ASC").
		Find(&appointments)

	if q.Error != nil && !q.RecordNotFound() {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	// appointments fill at most board_size-1 seats; when nobody holds
	// the CEO seat it stays vacant rather than going to an appointee
	seats := int(corp.BoardSize) - 1
	seated := 0
	for _, appt := range appointments {
		if seated >= seats {
			break
		}
		if ceo != nil && appt.UserID == ceo.UserID {
			continue
		}
		members = append(members, Member{UserID: appt.UserID, Role: RoleMember})
		seated++
	}

	return members, nil
}

// effectiveCEO returns the elected CEO when one exists, otherwise the
// largest shareholder acting in that role (ties broken by the earliest
// holding). Nil when the corporation has no shareholders at all.
func (s *boardService) effectiveCEO(corp *models.Corporation) (*Member, error) {
	if corp.HasElectedCEO() {
		return &Member{UserID: *corp.CEOID, Role: RoleCEO}, nil
	}

	holder := &models.Shareholder{}

	q := s.tx.
		Where("corporation_id = ?", corp.ID).
		Order("shares DESC, created_at ASC").
		First(holder)

	if q.RecordNotFound() {
		return nil, nil
	}
	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return &Member{UserID: holder.UserID, Role: RoleCEO, Acting: true}, nil
}

func (s *boardService) IsMember(corporationID, userID string) (bool, error) {
	members, err := s.Members(corporationID)
	if err != nil {
		return false, err
	}

	for _, m := range members {
		if m.UserID == userID {
			return true, nil
		}
	}

	return false, nil
}

func (s *boardService) CreateProposal(corporationID, proposerID string, proposalType enum.ProposalType, payload models.ProposalPayload) (*models.BoardProposal, error) {
	if !proposalType.Valid() {
		return nil, cserrors.InvalidProposalPayload.WithMsg(
			fmt.Sprintf("unknown proposal type %q", proposalType))
	}

	if err := payload.Validate(); err != nil {
		return nil, cserrors.InvalidProposalPayload.WithError(err)
	}

	corp := &models.Corporation{}

	q := s.tx.Where("id = ?", corporationID).First(corp)
	if q.RecordNotFound() {
		return nil, cserrors.NotFound.WithMsg("corporation not found")
	}
	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	members, err := s.members(corp)
	if err != nil {
		return nil, err
	}

	if !containsMember(members, proposerID) {
		return nil, cserrors.NotBoardMember
	}

	if err := s.checkPayloadSemantics(corp, payload); err != nil {
		return nil, err
	}

	raw, err := models.EncodePayload(payload)
	if err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	now := clock.Now()

	proposal := &models.BoardProposal{
		CorporationID: corp.ID,
		ProposerID:    proposerID,
		Type:          proposalType,
		Payload:       raw,
		Status:        enum.ProposalActive,
		ExpiresAt:     now.Add(models.ProposalLifetime),
	}

	if err := s.tx.Create(proposal).Error; err != nil {
		return nil, cserrors.InternalServerError.WithError(
			errors.Wrap(err, "failed to create proposal"))
	}

	subject := fmt.Sprintf("New board proposal at %v", corp.Name)
	body := fmt.Sprintf(
		"A %v proposal is up for vote at %v. Voting closes %v.",
		proposal.Type, corp.Name, proposal.ExpiresAt.Format(time.RFC822))

	for _, m := range members {
		if m.UserID == proposerID {
			continue
		}
		s.notification.WithTx(s.tx).NotifyBestEffort(m.UserID, subject, body)
	}

	return proposal, nil
}

// checkPayloadSemantics covers the rules that need database state on
// top of the payload's own shape validation.
func (s *boardService) checkPayloadSemantics(corp *models.Corporation, payload models.ProposalPayload) error {
	switch p := payload.(type) {
	case models.CEONominationPayload:
		return s.requireShareholder(corp.ID, p.NomineeID)
	case models.MemberAppointmentPayload:
		return s.requireShareholder(corp.ID, p.AppointeeID)
	case models.SpecialDividendPayload:
		if corp.LastSpecialDividendAt != nil {
			elapsed := clock.Now().Sub(*corp.LastSpecialDividendAt)
			if elapsed < models.SpecialDividendCooldownHours*time.Hour {
				return cserrors.CooldownActive
			}
		}
	}
	return nil
}

func (s *boardService) requireShareholder(corporationID, userID string) error {
	holder := &models.Shareholder{}

	q := s.tx.
		Where("corporation_id = ? AND user_id = ?", corporationID, userID).
		First(holder)

	if q.RecordNotFound() {
		return cserrors.NotShareholder
	}
	if q.Error != nil {
		return cserrors.InternalServerError.WithError(q.Error)
	}

	return nil
}

func (s *boardService) Vote(proposalID, voterID string, value enum.VoteValue) (*models.BoardProposal, error) {
	// lock the proposal row so vote counting and the resolve
	// decision are serialized per proposal
	proposal, err := s.lockProposal(proposalID)
	if err != nil {
		return nil, err
	}

	if !proposal.Active() {
		return nil, cserrors.ProposalNotActive
	}

	corp := &models.Corporation{}
	if err := s.tx.Where("id = ?", proposal.CorporationID).First(corp).Error; err != nil {
		return nil, cserrors.InternalServerError.WithError(err)
	}

	members, err := s.members(corp)
	if err != nil {
		return nil, err
	}

	if !containsMember(members, voterID) {
		return nil, cserrors.NotBoardMember
	}

	vote := &models.BoardVote{}

	q := s.tx.
		Where("proposal_id = ? AND voter_id = ?", proposalID, voterID).
		First(vote)

	switch {
	case q.RecordNotFound():
		vote = &models.BoardVote{
			ProposalID: proposalID,
			VoterID:    voterID,
			Value:      value,
		}
		if err := s.tx.Create(vote).Error; err != nil {
			return nil, cserrors.InternalServerError.WithError(err)
		}
	case q.Error != nil:
		return nil, cserrors.InternalServerError.WithError(q.Error)
	default:
		// re-voting overwrites until the proposal resolves
		if err := s.tx.Model(vote).Update("value", value).Error; err != nil {
			return nil, cserrors.InternalServerError.WithError(err)
		}
	}

	if err := s.evaluate(proposal, corp); err != nil {
		return nil, err
	}

	return proposal, nil
}

func (s *boardService) lockProposal(proposalID string) (*models.BoardProposal, error) {
	proposal := &models.BoardProposal{}

	q := s.tx.
		Set("gorm:query_option", db.ForUpdate).
		Where("id = ?", proposalID).
		First(proposal)

	if q.RecordNotFound() {
		return nil, cserrors.ProposalNotFound
	}
	if q.Error != nil {
		return nil, cserrors.InternalServerError.WithError(q.Error)
	}

	return proposal, nil
}

func containsMember(members []Member, userID string) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (s *boardService) ResignCEO(corporationID, userID string) error {
	corp := &models.Corporation{}

	q := s.tx.Where("id = ?", corporationID).First(corp)
	if q.RecordNotFound() {
		return cserrors.NotFound.WithMsg("corporation not found")
	}
	if q.Error != nil {
		return cserrors.InternalServerError.WithError(q.Error)
	}

	if !corp.HasElectedCEO() || *corp.CEOID != userID {
		return cserrors.Forbidden.WithMsg("user is not the elected CEO")
	}

	if err := s.tx.Model(corp).Update("ceo_id", nil).Error; err != nil {
		return cserrors.InternalServerError.WithError(err)
	}

	return nil
}
