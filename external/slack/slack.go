package slack

import (
	"github.com/praxisgames/corpsim/utils"
)

// Notify sends a payload over Slack to the message's channel for the
// current deployment. Development mode stays quiet.
func Notify(msg Message) {
	switch {
	case utils.Stg():
		msg.SendStaging()
	case utils.Prod():
		msg.SendProduction()
	}
}
