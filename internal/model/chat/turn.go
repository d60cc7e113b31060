package chat

import "time"

// Role tags a turn for completion-context assembly. The tag is assigned when
// the turn is written, never inferred from the sender string at read time.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AssistantName is the fixed identity of the automated responder. It is not
// a real user account.
const AssistantName = "assistant"

// TimeLayout is the display format for turn timestamps, e.g. "03:45 PM | Jun 12".
// Clients render it verbatim; nothing parses it back.
const TimeLayout = "03:04 PM | Jan 02"

// FormatTime renders an instant in the display format.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// Turn is one persisted chat utterance. Turns are immutable once written; the
// store assigns the id on append. CreatedAt is the sortable instant kept in
// storage, Timestamp the derived display string sent over the wire.
type Turn struct {
	ID        int64     `json:"id,omitempty"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Message   string    `json:"message"`
	Role      Role      `json:"-"`
	CreatedAt time.Time `json:"-"`
	Timestamp string    `json:"timestamp"`
}

// NewUserTurn builds the inbound half of a message cycle: user to responder.
func NewUserTurn(username, message string, at time.Time) Turn {
	return Turn{
		Sender:    username,
		Receiver:  AssistantName,
		Message:   message,
		Role:      RoleUser,
		CreatedAt: at,
		Timestamp: FormatTime(at),
	}
}

// NewAssistantTurn builds the outbound half: responder back to the user.
func NewAssistantTurn(username, message string, at time.Time) Turn {
	return Turn{
		Sender:    AssistantName,
		Receiver:  username,
		Message:   message,
		Role:      RoleAssistant,
		CreatedAt: at,
		Timestamp: FormatTime(at),
	}
}
