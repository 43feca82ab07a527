// Package parameter holds the shared request parameter helpers used
// across controllers.
package parameter

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/praxisgames/corpsim/cserrors"
	"github.com/praxisgames/corpsim/rest/api"
)

// GetParamUUID parses a path parameter as a UUID.
func GetParamUUID(ctx api.Context, name string) (string, error) {
	id, err := uuid.FromString(ctx.Params().Get(name))
	if err != nil {
		return "", cserrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("%v is not a valid uuid", name))
	}
	return id.String(), nil
}

// SessionUserID returns the authenticated user's ID.
func SessionUserID(ctx api.Context) string {
	return ctx.Session().ID.String()
}
