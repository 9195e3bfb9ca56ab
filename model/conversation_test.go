package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationSystemFirst(t *testing.T) {
	conv := NewConversation("be brief")

	require.NoError(t, conv.Append(Message{Role: RoleUser, Content: "hi"}))
	require.NoError(t, conv.Append(Message{Role: RoleAssistant, Content: "hello"}))
	require.NoError(t, conv.Append(Message{Role: RoleTool, Content: "[]", ToolName: "ls"}))

	assert.Error(t, conv.Append(Message{Role: RoleSystem, Content: "new rules"}))
	assert.Error(t, conv.Append(Message{Role: "narrator", Content: "?"}))

	msgs := conv.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "be brief", msgs[0].Content)
	for _, msg := range msgs[1:] {
		assert.NotEqual(t, RoleSystem, msg.Role)
		assert.False(t, msg.Timestamp.IsZero())
	}
}

func TestConversationMessagesIsACopy(t *testing.T) {
	conv := NewConversation("sys")
	msgs := conv.Messages()
	msgs[0].Content = "changed"
	msgs[0].Role = RoleUser

	got := conv.Messages()
	assert.Equal(t, RoleSystem, got[0].Role)
	assert.Equal(t, "sys", got[0].Content)
}

func TestConversationLast(t *testing.T) {
	conv := NewConversation("sys")
	_, ok := conv.Last(RoleAssistant)
	assert.False(t, ok)

	require.NoError(t, conv.Append(Message{Role: RoleAssistant, Content: "one"}))
	require.NoError(t, conv.Append(Message{Role: RoleUser, Content: "more"}))
	require.NoError(t, conv.Append(Message{Role: RoleAssistant, Content: "two"}))

	last, ok := conv.Last(RoleAssistant)
	assert.True(t, ok)
	assert.Equal(t, "two", last.Content)
	assert.Equal(t, 4, conv.Len())
}
