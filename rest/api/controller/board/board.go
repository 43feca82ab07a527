package board

import (
	"encoding/json"

	"github.com/jinzhu/gorm/dialects/postgres"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/rest/api"
	"github.com/praxisgames/corpsim/rest/api/controller/parameter"
)

type createRequest struct {
	Type    enum.ProposalType `json:"type"`
	Payload json.RawMessage   `json:"payload"`
}

// Create opens a new proposal for the corporation's board.
func Create(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := createRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	payload, err := models.DecodePayload(req.Type, postgres.Jsonb{RawMessage: req.Payload})
	if err != nil {
		ctx.RespondError(cserrors.InvalidProposalPayload.WithError(err))
		return
	}

	srv := ctx.Services().Board().WithTx(ctx.Tx())

	proposal, err := srv.CreateProposal(
		corpID, parameter.SessionUserID(ctx), req.Type, payload)

	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(proposal)
	}
}

type voteRequest struct {
	Value enum.VoteValue `json:"value"`
}

// Vote records (or overwrites) the caller's vote on a proposal.
func Vote(ctx api.Context) {
	proposalID, err := parameter.GetParamUUID(ctx, "proposal_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := voteRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	if req.Value != enum.Aye && req.Value != enum.Nay {
		ctx.RespondError(cserrors.InvalidRequestParam.WithMsg("vote value must be AYE or NAY"))
		return
	}

	srv := ctx.Services().Board().WithTx(ctx.Tx())

	proposal, err := srv.Vote(proposalID, parameter.SessionUserID(ctx), req.Value)

	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(proposal)
	}
}

// Get returns the derived board of a corporation.
func Get(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Board().WithTx(ctx.Tx())

	if members, err := srv.Members(corpID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(members)
	}
}

// Resign clears the caller's elected CEO seat.
func Resign(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Board().WithTx(ctx.Tx())

	if err := srv.ResignCEO(corpID, parameter.SessionUserID(ctx)); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(nil)
	}
}
