// Package metrics reports tick timings and per-entity failure counts
// to the local statsd agent. All calls are best effort; a missing
// agent never affects the engine.
package metrics

import (
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
)

var (
	once   sync.Once
	client *statsd.Client
)

func Client() *statsd.Client {
	once.Do(func() {
		var err error
		client, err = statsd.New(env.GetVar("STATSD_ADDR"))
		if err != nil {
			log.Warn("statsd unavailable, metrics disabled", "error", err)
			client = nil
			return
		}
		client.Namespace = "corpsim."
	})
	return client
}

// Timing reports how long a tick phase took.
func Timing(name string, start time.Time, tags ...string) {
	if c := Client(); c != nil {
		c.Timing(name, time.Since(start), tags, 1)
	}
}

// Incr counts an event (e.g. a per-entity tick failure).
func Incr(name string, tags ...string) {
	if c := Client(); c != nil {
		c.Incr(name, tags, 1)
	}
}
