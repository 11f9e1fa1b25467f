package events

import (
	"encoding/json"
	"time"
)

// LaunchTransitionMessage records one startup state machine transition.
type LaunchTransitionMessage struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLaunchTransitionMessage creates a transition event.
func NewLaunchTransitionMessage(from, to string) *LaunchTransitionMessage {
	return &LaunchTransitionMessage{
		From:      from,
		To:        to,
		Timestamp: time.Now().UTC(),
	}
}

// AIUsageMessage records one text-generation request. It carries only
// shape metadata; prompt text and credentials never leave the process.
type AIUsageMessage struct {
	Kind       string    `json:"kind"`
	SampleSize int       `json:"sample_size"`
	Cached     bool      `json:"cached"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewAIUsageMessage creates a usage event.
func NewAIUsageMessage(kind string, sampleSize int, cached bool) *AIUsageMessage {
	return &AIUsageMessage{
		Kind:       kind,
		SampleSize: sampleSize,
		Cached:     cached,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *LaunchTransitionMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }

func (m *AIUsageMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }
