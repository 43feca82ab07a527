package utils

import (
	"strconv"

	"github.com/alpacahq/gopaca/env"
)

// Dev returns true if the engine is in development mode
func Dev() bool {
	return env.GetVar("CORPSIM_MODE") == "DEV"
}

// Stg returns true if the engine is in staging mode
func Stg() bool {
	return env.GetVar("CORPSIM_MODE") == "STG"
}

// Prod returns true if the engine is in production mode
func Prod() bool {
	return env.GetVar("CORPSIM_MODE") == "PROD"
}

// StandBy returns true if the engine is in standby mode; ticks do not
// run and mutating endpoints are refused.
func StandBy() bool {
	standby, _ := strconv.ParseBool(env.GetVar("STANDBY_MODE"))
	return standby
}

var (
	Sha1hash string
	Version  string = "dev"
)
