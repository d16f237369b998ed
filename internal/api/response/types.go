package response

import (
	"github.com/mcoot/tourneybot/internal/services/registration"
)

// Option represents a selectable reply option
type Option struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// Reply represents the bot's answer to a conversation event
type Reply struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"`
	State   string   `json:"state,omitempty"`
	Ignored bool     `json:"ignored,omitempty"`
}

// ReplyFromModel converts a registration.Reply
func ReplyFromModel(r *registration.Reply) Reply {
	options := make([]Option, len(r.Options))
	for i, o := range r.Options {
		options[i] = Option{Label: o.Label, Payload: o.Payload}
	}
	return Reply{
		Text:    r.Text,
		Options: options,
		State:   string(r.State),
		Ignored: r.Ignored(),
	}
}

// Snapshot is the response after taking a snapshot
type Snapshot struct {
	Dir string `json:"dir"`
}

// SnapshotList lists snapshot names, oldest first
type SnapshotList struct {
	Snapshots []string `json:"snapshots"`
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
