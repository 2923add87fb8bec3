/* mock_session.go
 * Contains a recording implementation of DiscordSession for testing the command handlers
 */

package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// MockDiscordSession records every message the bot sends
type MockDiscordSession struct {
	mu sync.Mutex

	SentMessages []MockMessage
	// ErrorToReturn simulates a failed send
	ErrorToReturn error
}

// MockMessage represents a message sent to a channel
type MockMessage struct {
	ChannelID string
	Content   string
}

func (m *MockDiscordSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}

	m.SentMessages = append(m.SentMessages, MockMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ID: "mock_message_id", ChannelID: channelID, Content: content}, nil
}

// GetLastMessage returns the last message sent, or an empty MockMessage if none
func (m *MockDiscordSession) GetLastMessage() MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SentMessages) == 0 {
		return MockMessage{}
	}
	return m.SentMessages[len(m.SentMessages)-1]
}

func (m *MockDiscordSession) ClearMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentMessages = nil
}

func NewMockDiscordSession() *MockDiscordSession {
	return &MockDiscordSession{SentMessages: make([]MockMessage, 0)}
}
