package model

import (
	"fmt"
	"sync"
	"time"
)

// Conversation is the append-only transcript of one session. The system
// message is fixed at construction and always comes first.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{
		messages: []Message{{
			Role:      RoleSystem,
			Content:   systemPrompt,
			Timestamp: time.Now(),
		}},
	}
}

func (c *Conversation) Append(msg Message) error {
	if msg.Role == RoleSystem {
		return fmt.Errorf("system message is fixed at construction")
	}

	switch msg.Role {
	case RoleUser, RoleAssistant, RoleTool:
	default:
		return fmt.Errorf("unknown role %q", msg.Role)
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return nil
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Last returns the most recent message with the given role.
func (c *Conversation) Last(role string) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i], true
		}
	}
	return Message{}, false
}
