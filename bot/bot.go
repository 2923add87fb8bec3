/* bot.go
 * Contains the Bot type and the command parsing used by the Discord front end. Requires a discord bot token and
 * ApiPtr, both of which are passed in from main.go
 */

package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-andiamo/splitter"
	"go.uber.org/zap"

	"e-network/api/api"
)

// commandTimeout bounds the work done for a single chat command
const commandTimeout = 15 * time.Second

// maxListed is the most matches or history entries printed in one reply, discord caps messages at 2000 chars
const maxListed = 10

type Bot struct {
	BotToken string
	APIPtr   *api.API
	Logger   *zap.Logger
}

func NewBot(botToken string, apiPtr *api.API, logger *zap.Logger) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("api is required but none was provided")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		BotToken: botToken,
		APIPtr:   apiPtr,
		Logger:   logger,
	}, nil
}

// parseCommand splits a chat message into the command and its arguments
// Preconditions: Receives the raw message content
// Postconditions: Returns the lowercased command (e.g. "$follow") and the arguments with surrounding quotes removed.
// Names containing spaces must be quoted, e.g. "Team Liquid". Returns an empty command for non command messages
func parseCommand(content string) (string, []string) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "$") {
		return "", nil
	}

	// splitter keeps quoted names such as "FaZe Clan" together as one argument
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return "", nil
	}
	parts, err := spaceSplitter.Split(content)
	if err != nil {
		// Unbalanced quotes, fall back to plain whitespace splitting
		parts = strings.Fields(content)
	}

	var args []string
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), "\"“”"))
		if p != "" {
			args = append(args, p)
		}
	}
	if len(args) == 0 {
		return "", nil
	}
	return strings.ToLower(args[0]), args[1:]
}
