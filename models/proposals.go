package models

import (
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/jinzhu/gorm/dialects/postgres"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/shopspring/decimal"
)

// ProposalLifetime is how long a proposal accepts votes before the
// expiry scan resolves it by simple majority.
const ProposalLifetime = 12 * time.Hour

var MaxCEOSalary = decimal.New(10000000, 0)

type BoardProposal struct {
	ID            string `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CorporationID string `json:"corporation_id" gorm:"index" sql:"type:uuid references corporations(id);"`
	ProposerID    string `json:"proposer_id" sql:"type:uuid references users(id);"`

	Type    enum.ProposalType `json:"type" sql:"type:text"`
	Payload postgres.Jsonb    `json:"payload"`

	Status enum.ProposalStatus `json:"status" gorm:"index" sql:"type:text"`

	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"index"`
	ResolvedAt *time.Time `json:"resolved_at"`
}

func (p *BoardProposal) BeforeCreate(scope *gorm.Scope) error {
	if p.ID == "" {
		p.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", p.ID)
}

func (p *BoardProposal) Active() bool {
	return p.Status == enum.ProposalActive
}

func (p *BoardProposal) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

type BoardVote struct {
	ProposalID string         `json:"proposal_id" gorm:"primary_key" sql:"type:uuid references board_proposals(id);"`
	VoterID    string         `json:"voter_id" gorm:"primary_key" sql:"type:uuid references users(id);"`
	Value      enum.VoteValue `json:"value" sql:"type:text"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ProposalPayload is the tagged union of per-type proposal payloads.
// Exactly one shape exists per proposal type, and every site that
// touches a payload (creation, validation, resolution) decodes it
// through DecodePayload so unknown types fail loudly.
type ProposalPayload interface {
	Validate() error
}

type CEONominationPayload struct {
	NomineeID string `json:"nominee_id"`
}

func (p CEONominationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.NomineeID, validation.Required, isUUID),
	)
}

type SectorChangePayload struct {
	Sector enum.Sector `json:"sector"`
}

func (p SectorChangePayload) Validate() error {
	if !p.Sector.Valid() {
		return fmt.Errorf("unknown sector %q", p.Sector)
	}
	return nil
}

type HQChangePayload struct {
	State enum.State `json:"state"`
}

func (p HQChangePayload) Validate() error {
	if !p.State.Valid() {
		return fmt.Errorf("unknown state %q", p.State)
	}
	return nil
}

type BoardSizeChangePayload struct {
	Size uint `json:"size"`
}

func (p BoardSizeChangePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Size, validation.Required,
			validation.Min(uint(MinBoardSize)), validation.Max(uint(MaxBoardSize))),
	)
}

type MemberAppointmentPayload struct {
	AppointeeID string `json:"appointee_id"`
}

func (p MemberAppointmentPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.AppointeeID, validation.Required, isUUID),
	)
}

type SalaryChangePayload struct {
	Salary decimal.Decimal `json:"salary"`
}

func (p SalaryChangePayload) Validate() error {
	if p.Salary.IsNegative() || p.Salary.GreaterThan(MaxCEOSalary) {
		return fmt.Errorf("salary must be between 0 and %v", MaxCEOSalary)
	}
	return nil
}

type DividendRateChangePayload struct {
	Percent decimal.Decimal `json:"percent"`
}

func (p DividendRateChangePayload) Validate() error {
	if p.Percent.IsNegative() || p.Percent.GreaterThan(decimal.New(100, 0)) {
		return fmt.Errorf("dividend percent must be between 0 and 100")
	}
	return nil
}

type SpecialDividendPayload struct {
	Amount decimal.Decimal `json:"amount"`
}

func (p SpecialDividendPayload) Validate() error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("special dividend amount must be positive")
	}
	return nil
}

type StockSplitPayload struct{}

func (p StockSplitPayload) Validate() error {
	return nil
}

var isUUID = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if _, err := uuid.FromString(s); err != nil {
		return fmt.Errorf("not a valid uuid")
	}
	return nil
})

// DecodePayload unmarshals the jsonb payload into the shape for the
// given proposal type. The switch is exhaustive over enum.ProposalTypes.
func DecodePayload(t enum.ProposalType, raw postgres.Jsonb) (ProposalPayload, error) {
	buf := raw.RawMessage
	if len(buf) == 0 {
		buf = []byte("{}")
	}

	var (
		payload ProposalPayload
		err     error
	)

	switch t {
	case enum.CEONomination:
		p := CEONominationPayload{}
		err = json.Unmarshal(buf, &p)
		payload = p
	case enum.SectorChange:
		p := SectorChangePayload{}
		err = json.Unmarshal(buf, &p)
		payload = p
	case enum.HQChange:
		p := HQChangePayload{}
		err = json.Unmarshal(buf, &p)
		payload = p
	case enum.BoardSizeChange:
		p := BoardSizeChangePayload{}
		err = json.Unmarshal(buf, &p)
		payload = p
	case enum.MemberAppointment:
		p := MemberAppointmentPayload{}
		err = json.Unmarshal(buf, &p)
		payload = p
	case enum.SalaryChange:
		p := SalaryChangePayload{}
		err = json.Unmarshal(buf, &p)
		payload = p
	case enum.DividendRateChange:
		p := DividendRateChangePayload{}
		err = json.Unmarshal(buf, &p)
		payload = p
	case enum.SpecialDividend:
		p := SpecialDividendPayload{}
		err = json.Unmarshal(buf, &p)
		payload = p
	case enum.StockSplit:
		payload = StockSplitPayload{}
	default:
		return nil, fmt.Errorf("unknown proposal type %q", t)
	}

	if err != nil {
		return nil, err
	}

	return payload, nil
}

// EncodePayload marshals a typed payload for storage.
func EncodePayload(payload ProposalPayload) (postgres.Jsonb, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return postgres.Jsonb{}, err
	}
	return postgres.Jsonb{RawMessage: buf}, nil
}
