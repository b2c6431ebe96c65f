package chat

import "slices"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry. Presentational only.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the per-conversation state. It is passed into and returned
// from every turn; Respond never mutates the value it was given.
type Session struct {
	PendingName   string `json:"pending_name,omitempty"`
	PendingReason string `json:"pending_reason,omitempty"`
	Transcript    []Turn `json:"transcript"`
}

func (s Session) with(turns ...Turn) Session {
	s.Transcript = append(slices.Clip(s.Transcript), turns...)
	return s
}

// Complete reports whether both fields needed for a decision are known.
func (s Session) Complete() bool {
	return s.PendingName != "" && s.PendingReason != ""
}
