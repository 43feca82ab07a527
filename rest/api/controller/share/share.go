package share

import (
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/rest/api"
	"github.com/praxisgames/corpsim/rest/api/controller/parameter"
)

type tradeRequest struct {
	Shares uint `json:"shares"`
}

// Buy purchases from the corporation's public float.
func Buy(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := tradeRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Shares().WithTx(ctx.Tx())

	trade, err := srv.Buy(corpID, parameter.SessionUserID(ctx), req.Shares)

	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(trade)
	}
}

// Sell returns the caller's shares to the public float.
func Sell(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := tradeRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Shares().WithTx(ctx.Tx())

	trade, err := srv.Sell(corpID, parameter.SessionUserID(ctx), req.Shares)

	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(trade)
	}
}

type issueRequest struct {
	BuyerID string `json:"buyer_id"`
	Shares  uint   `json:"shares"`
}

// Issue places newly created shares with a buyer. Caller must sit on
// the board.
func Issue(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := issueRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Shares().WithTx(ctx.Tx())

	trade, err := srv.Issue(corpID, parameter.SessionUserID(ctx), req.BuyerID, req.Shares)

	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(trade)
	}
}
