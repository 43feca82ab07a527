package price

import (
	"github.com/praxisgames/corpsim/rest/api"
)

// List returns the current commodity and product price set.
func List(ctx api.Context) {
	srv := ctx.Services().Pricing().WithTx(ctx.Tx())

	if prices, err := srv.Current(); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(prices)
	}
}
