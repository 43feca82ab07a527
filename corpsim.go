package main

import (
	stdContext "context"
	"flag"
	"strings"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/praxisgames/corpsim/csreg"
	"github.com/praxisgames/corpsim/external/slack"
	"github.com/praxisgames/corpsim/migration"
	"github.com/praxisgames/corpsim/rest"
	"github.com/praxisgames/corpsim/utils/csevents"
	"github.com/praxisgames/corpsim/utils/initializer"
	"github.com/praxisgames/corpsim/utils/signalman"
	"go.uber.org/zap/zapcore"
)

func shutdown() error {
	timeout := time.Second
	ctx, cancel := stdContext.WithTimeout(stdContext.Background(), timeout)
	defer cancel()
	return rest.Shutdown(ctx)
}

func init() {
	// set the clock
	clock.Set()

	// register env defaults
	initializer.Initialize()

	flag.Parse()

	// log errors to slack
	log.Logger().AddCallback(
		"corpsim_slack_errors",
		zapcore.ErrorLevel,
		func(i interface{}) {
			msg := slack.NewServerError()
			msg.SetBody(i)
			slack.Notify(msg)
		},
	)

	// set deployment level on logger
	log.Logger().SetDeploymentLevel(env.GetVar("CORPSIM_MODE"))

	csevents.RegisterSignalHandler()

	signalman.RegisterFunc("rest_shutdown", shutdown)
}

func main() {
	if err := migration.Migration(db.DB()).Migrate(); err != nil {
		log.Fatal("database migration failed", "error", err)
	}

	log.Info("corpsim is live", "mode", env.GetVar("CORPSIM_MODE"), "clock", clock.Now())

	signalman.Start()

	go func() {
		csevents.RunForever()
	}()

	if err := rest.Start(env.GetVar("CORPSIM_PORT"), csreg.Services); err != nil {
		if !strings.Contains(err.Error(), "Server closed") {
			log.Fatal("rest server unexpectedly exited", "error", err)
		}
	}

	defer db.DB().Close()

	log.Info("waiting for graceful shutdown")
	signalman.Wait()
}
