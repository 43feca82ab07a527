// Package admin implements the internal operator endpoints. They sit
// behind the admin secret and bypass the proposal flow.
package admin

import (
	"github.com/praxisgames/corpsim/rest/api"
	"github.com/praxisgames/corpsim/rest/api/controller/parameter"
	"github.com/praxisgames/corpsim/utils/csevents"
)

// Split applies a 2-for-1 stock split without a board vote.
func Split(ctx api.Context) {
	corpID, err := parameter.GetParamUUID(ctx, "corp_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Board().WithTx(ctx.Tx())

	if err := srv.ForceStockSplit(corpID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(nil)
	}
}

// ResolveProposal forces a proposal to resolve by the votes cast so
// far instead of waiting for expiry.
func ResolveProposal(ctx api.Context) {
	proposalID, err := parameter.GetParamUUID(ctx, "proposal_id")
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().Board().WithTx(ctx.Tx())

	if proposal, err := srv.Resolve(proposalID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(proposal)
	}
}

// RecalculatePrices refreshes the price cache and tells every other
// process to drop theirs.
func RecalculatePrices(ctx api.Context) {
	srv := ctx.Services().Pricing().WithTx(ctx.Tx())

	prices, err := srv.Recalculate()
	if err != nil {
		ctx.RespondError(err)
		return
	}

	go csevents.TriggerEvent(&csevents.Event{Name: csevents.EventEconomyRefreshed})

	ctx.Respond(prices)
}
