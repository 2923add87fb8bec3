//go:build !test

/* bot_runtime.go
 * Contains runtime-only Discord bot methods that use *discordgo.Session directly.
 * Delegates to the testable handlers in handlers.go
 */

package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Run connects to Discord and serves commands until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	discord, err := discordgo.New("Bot " + b.BotToken)
	if err != nil {
		return fmt.Errorf("error creating discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent

	discord.AddHandler(b.newMessage)

	if err := discord.Open(); err != nil {
		return fmt.Errorf("error opening discord session: %w", err)
	}
	defer discord.Close()

	b.Logger.Info("discord bot started")
	<-ctx.Done()
	b.Logger.Info("discord bot stopping")
	return nil
}

// newMessage delegates to the testable newMessageHandler
func (b *Bot) newMessage(discord *discordgo.Session, message *discordgo.MessageCreate) {
	b.newMessageHandler(discord, message, discord.State.User.ID)
}
