package csevents

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/gopaca/rmq/pubsub"
	"github.com/praxisgames/corpsim/utils/signalman"
)

type Event struct {
	Name    string                  `json:"name"`
	Payload *map[string]interface{} `json:"payload"`
}

var (
	once sync.Once

	handlers  []func(*Event)
	handlerMu sync.RWMutex

	cancellerSub context.CancelFunc
	cancellerPub context.CancelFunc
	publisher    chan<- pubsub.Message

	// economy parameters changed; every process must drop its
	// cached commodity/product prices
	EventEconomyRefreshed = "economy_refreshed"
)

func RegisterFunc(handler func(*Event)) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	handlers = append(handlers, handler)
}

func RegisterSignalHandler() {
	signalman.RegisterFunc("csevents", shutdown)
}

func shutdown() error {
	if cancellerSub != nil {
		cancellerSub()
	}
	if cancellerPub != nil {
		cancellerPub()
	}
	return nil
}

func TriggerEvent(evt *Event) {
	once.Do(func() {
		msgs, cancel := pubsub.NewPubSub("csevents").Publish()
		cancellerPub = cancel
		publisher = msgs
	})

	buf, _ := json.Marshal(evt)

	publisher <- pubsub.Message(buf)
}

func RunForever() {
	c, cancel := pubsub.NewPubSub("csevents").Subscribe()

	cancellerSub = cancel

	for msg := range c {
		evt := Event{}

		if err := json.Unmarshal(msg, &evt); err != nil {
			log.Error("failed to unmarshal msg")
			continue
		}

		log.Debug("receive csevents", "event", evt)

		handlerMu.RLock()
		for _, handler := range handlers {
			handler(&evt)
		}

		handlerMu.RUnlock()
	}
}
