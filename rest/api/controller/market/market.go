package market

import (
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/rest/api"
	"github.com/praxisgames/corpsim/rest/api/controller/parameter"
)

type entryRequest struct {
	State  enum.State  `json:"state"`
	Sector enum.Sector `json:"sector"`
}

// requireBoard gates unit management behind board membership; market
// presence is a corporate decision, not a shareholder one.
func requireBoard(ctx api.Context, corpID string) error {
	isMember, err := ctx.Services().Board().WithTx(ctx.Tx()).
		IsMember(corpID, parameter.SessionUserID(ctx))
	if err != nil {
		return err
	}
	if !isMember {
		return cserrors.NotBoardMember
	}
	return nil
}

// Open registers the corporation in a state/sector market.
func Open(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := entryRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	if err := requireBoard(ctx, corpID); err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Market().WithTx(ctx.Tx())

	if entry, err := srv.Open(corpID, req.State, req.Sector); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(entry)
	}
}

type unitsRequest struct {
	State  enum.State    `json:"state"`
	Sector enum.Sector   `json:"sector"`
	Kind   enum.UnitKind `json:"kind"`
	Count  uint          `json:"count"`
}

// AddUnits grows a unit count on an existing market entry.
func AddUnits(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := unitsRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	if err := requireBoard(ctx, corpID); err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Market().WithTx(ctx.Tx())

	if entry, err := srv.AddUnits(corpID, req.State, req.Sector, req.Kind, req.Count); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(entry)
	}
}

// Abandon removes the corporation from a state/sector market.
func Abandon(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	req := entryRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	if err := requireBoard(ctx, corpID); err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Market().WithTx(ctx.Tx())

	if err := srv.Abandon(corpID, req.State, req.Sector); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(nil)
	}
}

// List returns the corporation's market entries.
func List(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Market().WithTx(ctx.Tx())

	if entries, err := srv.List(corpID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(entries)
	}
}
