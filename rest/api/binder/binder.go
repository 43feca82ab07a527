package binder

import (
	"github.com/iris-contrib/middleware/cors"
	"github.com/kataras/iris"
	"github.com/praxisgames/corpsim/rest/api"
	"github.com/praxisgames/corpsim/rest/api/controller/admin"
	"github.com/praxisgames/corpsim/rest/api/controller/board"
	"github.com/praxisgames/corpsim/rest/api/controller/corporation"
	"github.com/praxisgames/corpsim/rest/api/controller/market"
	"github.com/praxisgames/corpsim/rest/api/controller/price"
	"github.com/praxisgames/corpsim/rest/api/controller/share"
	"github.com/praxisgames/corpsim/rest/api/middleware/httplogger"
	"github.com/praxisgames/corpsim/utils"
)

type APIHandler interface {
	Authenticate(func(api.Context), ...bool) iris.Handler
	NoAuth(func(api.Context), ...bool) iris.Handler
	RouteNotFound(api.Context)
}

// Public binds the player-facing engine API handlers to their
// respective endpoints
func Public(api *api.API, r iris.Party) {
	r.Use(httplogger.New())

	// CORS
	{
		getOrigins := func() []string {
			switch {
			case utils.Prod():
				return []string{"https://play.praxisgames.net"}
			default:
				// staging/dev mode
				return []string{"*"}
			}
		}

		crs := cors.New(cors.Options{
			AllowedOrigins: getOrigins(),
			AllowedMethods: []string{
				iris.MethodGet,
				iris.MethodPost,
				iris.MethodDelete,
				iris.MethodOptions,
			},
			AllowedHeaders:     []string{"*"},
			AllowCredentials:   true,
			OptionsPassthrough: false,
		})

		r.Use(crs)
		r.AllowMethods(iris.MethodOptions) // <- important for the preflight.
	}

	// corporations
	r.Post("/corporations", api.Authenticate(corporation.Create, utils.StandBy()))
	r.Get("/corporations/{corp_id}", api.Authenticate(corporation.Get))
	r.Get("/corporations/{corp_id}/ledger", api.Authenticate(corporation.Ledger))

	// governance
	r.Get("/corporations/{corp_id}/board", api.Authenticate(board.Get))
	r.Post("/corporations/{corp_id}/proposals", api.Authenticate(board.Create, utils.StandBy()))
	r.Post("/proposals/{proposal_id}/votes", api.Authenticate(board.Vote, utils.StandBy()))
	r.Delete("/corporations/{corp_id}/ceo", api.Authenticate(board.Resign, utils.StandBy()))

	// shares
	r.Post("/corporations/{corp_id}/shares/buy", api.Authenticate(share.Buy, utils.StandBy()))
	r.Post("/corporations/{corp_id}/shares/sell", api.Authenticate(share.Sell, utils.StandBy()))
	r.Post("/corporations/{corp_id}/shares/issue", api.Authenticate(share.Issue, utils.StandBy()))

	// markets
	r.Get("/corporations/{corp_id}/markets", api.Authenticate(market.List))
	r.Post("/corporations/{corp_id}/markets", api.Authenticate(market.Open, utils.StandBy()))
	r.Post("/corporations/{corp_id}/markets/units", api.Authenticate(market.AddUnits, utils.StandBy()))
	r.Delete("/corporations/{corp_id}/markets", api.Authenticate(market.Abandon, utils.StandBy()))

	// prices
	r.Get("/prices", api.Authenticate(price.List))

	r.Any("/", api.NoAuth(api.RouteNotFound))
	r.Any("/{anypath}", api.NoAuth(api.RouteNotFound))
}

// Internal binds the operator endpoints to their respective endpoints
func Internal(api *api.API, r iris.Party) {
	r.Use(httplogger.New())

	r.Post("/corporations/{corp_id}/split", api.AuthenticateAdmin(admin.Split))
	r.Post("/proposals/{proposal_id}/resolve", api.AuthenticateAdmin(admin.ResolveProposal))
	r.Post("/prices/recalculate", api.AuthenticateAdmin(admin.RecalculatePrices))
}
