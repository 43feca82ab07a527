package slack

import (
	"encoding/json"
	"fmt"

	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	sl "github.com/ashwanthkumar/slack-go-webhook"
)

type Message struct {
	prod *channel
	stg  *channel
	body interface{}
}

func (m *Message) SetBody(body interface{}) {
	m.body = body
}

func (m *Message) FormatBody() string {
	switch v := m.body.(type) {
	case string:
		return v
	default:
		buf, _ := json.MarshalIndent(v, "", "\t")
		return fmt.Sprintf("```%s```", string(buf))
	}
}

func (m *Message) SendStaging() {
	m.send(m.stg)
}

func (m *Message) SendProduction() {
	m.send(m.prod)
}

func (m *Message) send(c *channel) {
	if c == nil || c.webhook == "" {
		return
	}

	errors := sl.Send(
		c.webhook,
		"", sl.Payload{
			Text:     m.FormatBody(),
			Channel:  c.name,
			Username: c.user,
		})

	if len(errors) > 0 {
		log.Error("slack send errors", "errors", errors)
	}
}

type channel struct {
	name    string
	user    string
	webhook string
}

// NewServerError targets the engine's error channel. Webhooks come
// from the environment so forks and staging deployments point at their
// own workspaces.
func NewServerError() Message {
	return Message{
		prod: &channel{
			webhook: env.GetVar("SLACK_ERRORS_WEBHOOK"),
			name:    "#corpsim-errors",
			user:    "Corpsim Errors",
		},
		stg: &channel{
			webhook: env.GetVar("SLACK_ERRORS_WEBHOOK_STG"),
			name:    "#corpsim-errors-stg",
			user:    "Staging Corpsim Errors",
		},
	}
}

// NewTickStatus targets the channel operators watch for settlement
// tick health.
func NewTickStatus() Message {
	return Message{
		prod: &channel{
			webhook: env.GetVar("SLACK_TICKS_WEBHOOK"),
			name:    "#corpsim-ticks",
			user:    "Corpsim Ticks",
		},
		stg: &channel{
			webhook: env.GetVar("SLACK_TICKS_WEBHOOK_STG"),
			name:    "#corpsim-ticks-stg",
			user:    "Staging Corpsim Ticks",
		},
	}
}
