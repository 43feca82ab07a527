package api

import (
	"crypto/subtle"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/gofrs/uuid"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/models"
)

type Authenticator interface {
	Authenticate(Context) error
	AuthenticateAdmin(Context) error
}

type authenticator struct {
	Authenticator
}

func NewAuthenticator() Authenticator {
	return &authenticator{}
}

// Authenticate verifies the engine secret and resolves the acting
// user. The game frontend holds the secret and vouches for the user
// it forwards; the engine itself keeps no credentials per user.
func (a *authenticator) Authenticate(ctx Context) error {
	if !secretMatches(ctx, "ENGINE_SECRET") {
		return cserrors.Unauthorized.WithMsg("invalid engine secret")
	}

	userID, err := uuid.FromString(ctx.Request().Header.Get("CS-API-USER-ID"))
	if err != nil {
		return cserrors.Unauthorized.WithMsg("invalid user id")
	}

	// don't need to grab the context's connection, since a missing
	// user fails before any mutation starts
	user := &models.User{}

	q := db.DB().Where("id = ?", userID.String()).First(user)
	if q.RecordNotFound() {
		return cserrors.Unauthorized.WithMsg("unknown user")
	}
	if q.Error != nil {
		return cserrors.InternalServerError.WithError(q.Error)
	}

	ctx.Authorize(userID, PermissionUser)

	// assign user_id for tracking purposes
	ctx.Values().Set("user_id", userID.String())

	return nil
}

func (a *authenticator) AuthenticateAdmin(ctx Context) error {
	if !secretMatches(ctx, "ADMIN_SECRET") {
		return cserrors.Unauthorized.WithMsg("invalid admin secret")
	}

	adminID := uuid.FromStringOrNil(ctx.Request().Header.Get("CS-API-USER-ID"))

	ctx.Authorize(adminID, PermissionAdmin)

	ctx.Values().Set("admin_id", adminID.String())

	return nil
}

func secretMatches(ctx Context, envKey string) bool {
	header := ctx.Request().Header.Get("CS-API-SECRET")
	secret := env.GetVar(envKey)

	return secret != "" &&
		subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1
}
