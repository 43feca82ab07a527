package corporation

import (
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/praxisgames/corpsim/rest/api"
	"github.com/praxisgames/corpsim/rest/api/controller/parameter"
	"github.com/shopspring/decimal"
)

type foundRequest struct {
	Name    string          `json:"name"`
	Sector  enum.Sector     `json:"sector"`
	HQState enum.State      `json:"hq_state"`
	Capital decimal.Decimal `json:"capital"`
	Shares  uint            `json:"shares"`
}

// Create founds a corporation from the caller's cash.
func Create(ctx api.Context) {
	req := foundRequest{}
	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(cserrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	if req.Name == "" {
		ctx.RespondError(cserrors.InvalidRequestParam.WithMsg("name is required"))
		return
	}

	srv := ctx.Services().Shares().WithTx(ctx.Tx())

	corp, err := srv.Found(
		parameter.SessionUserID(ctx),
		req.Name, req.Sector, req.HQState, req.Capital, req.Shares)

	if err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(corp)
	}
}

// Get returns a corporation row.
func Get(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	corp := &models.Corporation{}

	q := ctx.Tx().Where("id = ?", corpID).First(corp)
	if q.RecordNotFound() {
		ctx.RespondError(cserrors.NotFound.WithMsg("corporation not found"))
		return
	}
	if q.Error != nil {
		ctx.RespondError(cserrors.InternalServerError.WithError(q.Error))
		return
	}

	ctx.Respond(corp)
}

// Ledger returns the corporation's most recent ledger entries.
func Ledger(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	limit := ctx.URLParamIntDefault("limit", 100)

	srv := ctx.Services().Ledger().WithTx(ctx.Tx())

	if entries, err := srv.List(corpID, limit); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(entries)
	}
}
