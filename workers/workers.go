package main

import (
	"flag"
	"sync"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/praxisgames/corpsim/external/slack"
	"github.com/praxisgames/corpsim/utils"
	"github.com/praxisgames/corpsim/utils/csevents"
	"github.com/praxisgames/corpsim/utils/initializer"
	"github.com/praxisgames/corpsim/utils/signalman"
	"github.com/praxisgames/corpsim/workers/macrotick"
	"github.com/praxisgames/corpsim/workers/proposals"
	"github.com/robfig/cron"
	"go.uber.org/zap/zapcore"
)

var (
	cronWg sync.WaitGroup
	c      *cron.Cron
)

func shutdown() error {

	// stop crons so no new ones start
	if c != nil {
		c.Stop()
	}

	// wait for existing crons to finish
	cronWg.Wait()

	// sleep a second to let things cleanup
	<-time.After(time.Second)
	return nil
}

func init() {
	// set the clock
	clock.Set()

	// register env defaults
	initializer.Initialize()

	flag.Parse()

	// log errors to slack
	log.Logger().AddCallback(
		"cs-workers_slack_errors",
		zapcore.ErrorLevel,
		func(i interface{}) {
			msg := slack.NewServerError()
			msg.SetBody(i)
			slack.Notify(msg)
		},
	)

	// set deployment level on logger
	log.Logger().SetDeploymentLevel(env.GetVar("CORPSIM_MODE"))

	// handler initializers
	csevents.RegisterSignalHandler()

	signalman.RegisterFunc("workers_shutdown", shutdown)
	signalman.Start()
}

func main() {
	if utils.StandBy() {
		log.Info("starting in standby mode - no crons will be run")
		signalman.Wait()
		return
	}

	c = cron.New()

	// macro tick - hourly settlement of the whole economy
	c.AddFunc("0 0 * * * *", func() {
		cronWg.Add(1)
		defer cronWg.Done()
		macrotick.Work()
	})

	// micro tick - resolve expired proposals every 5 minutes
	c.AddFunc("0 */5 * * * *", func() {
		cronWg.Add(1)
		defer cronWg.Done()
		proposals.Work()
	})

	// queue the crons
	c.Start()

	// start event listeners
	go func() { csevents.RunForever() }()

	log.Info(
		"workers are live",
		"mode", env.GetVar("CORPSIM_MODE"),
		"clock", clock.Now())

	signalman.Wait()
}
