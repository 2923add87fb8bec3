/* handlers.go
 * Contains the command handlers. Handlers accept the DiscordSession interface so they can be tested without a
 * live connection
 */

package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"e-network/api/logic"
	"e-network/api/shared"
)

func authorOf(message *discordgo.MessageCreate) shared.User {
	return shared.User{UserID: message.Author.ID, Username: message.Author.Username}
}

func (b *Bot) reply(session DiscordSession, message *discordgo.MessageCreate, content string) {
	if _, err := session.ChannelMessageSend(message.ChannelID, content); err != nil {
		b.Logger.Warn("failed to send discord message", zap.String("channel_id", message.ChannelID), zap.Error(err))
	}
}

// helpMessageHandler handles the $help command
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("E-Network Bot\n")
	res.WriteString("`$feed`: upcoming matches for the games, leagues and teams you follow\n")
	res.WriteString("`$upcoming`: upcoming matches open for predictions, with their match ids\n")
	res.WriteString("`$follow <game|league|team> <name>`: follow a game, league or team\n")
	res.WriteString("`$unfollow <game|league|team> <name>`: stop following a game, league or team\n")
	res.WriteString("`$prefs`: shows what you follow\n")
	res.WriteString("`$predict <matchId> <team>`: predict the winner of a match. Predictions are final\n")
	res.WriteString("`$stats`: shows how many of your finished predictions were correct\n")
	res.WriteString("`$history`: shows your predictions and their outcomes\n")
	res.WriteString("There is fuzzy matching on names. Names that contain two or more words need to be encased in \" (e.g. \"Team Liquid\")\n")
	b.reply(session, message, res.String())
}

// feedHandler handles the $feed command
func (b *Bot) feedHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	user := authorOf(message)
	feed, err := b.APIPtr.GetFeed(ctx, &user)
	if err != nil {
		b.Logger.Error("failed to build feed", zap.String("user_id", user.UserID), zap.Error(err))
		b.reply(session, message, errorReply(err, "building your feed"))
		return
	}
	if len(feed.Matches) == 0 {
		b.reply(session, message, "No upcoming matches")
		return
	}

	heading := fmt.Sprintf("%s's feed:", user.Username)
	if feed.Message != "" {
		heading = fmt.Sprintf("%s's feed (%s):", user.Username, feed.Message)
	}
	b.reply(session, message, formatMatches(heading, feed.Matches))
}

// upcomingMatchesHandler handles the $upcoming command. Matches where a team is still TBD are left out since they
// cannot be predicted by name
func (b *Bot) upcomingMatchesHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	matches, err := b.APIPtr.GetUpcomingMatches(ctx)
	if err != nil {
		b.Logger.Error("failed to get upcoming matches", zap.Error(err))
		b.reply(session, message, errorReply(err, "getting upcoming matches"))
		return
	}

	var confirmed []shared.Match
	for _, m := range logic.OpenMatches(matches) {
		if m.Opponents[0].IsTBD() || m.Opponents[1].IsTBD() {
			continue
		}
		confirmed = append(confirmed, m)
	}
	if len(confirmed) == 0 {
		b.reply(session, message, "No upcoming matches")
		return
	}
	b.reply(session, message, formatMatches("Upcoming matches:", confirmed))
}

// preferenceField returns the slice of prefs a preference kind refers to
func preferenceField(prefs shared.Preferences, kind string) []shared.ID {
	switch kind {
	case logic.KindGame:
		return prefs.Games
	case logic.KindLeague:
		return prefs.Leagues
	default:
		return prefs.Teams
	}
}

// preferenceUpdate builds an update that only replaces the field of one preference kind
func preferenceUpdate(kind string, ids []shared.ID) shared.PreferencesUpdate {
	var update shared.PreferencesUpdate
	switch kind {
	case logic.KindGame:
		update.Games = &ids
	case logic.KindLeague:
		update.Leagues = &ids
	default:
		update.Teams = &ids
	}
	return update
}

// followHandler handles the $follow and $unfollow commands
// Preconditions: Receives the arguments after the command: the preference kind then the name
// Postconditions: The resolved id is added to or removed from the matching preference field, other fields are left
// untouched. The outcome is sent to the discord channel
func (b *Bot) followHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate, args []string, follow bool) {
	command := "$unfollow"
	if follow {
		command = "$follow"
	}
	usage := fmt.Sprintf("Usage: `%s <game|league|team> <name>`", command)
	if len(args) < 2 {
		b.reply(session, message, usage)
		return
	}

	kind := strings.TrimSuffix(strings.ToLower(args[0]), "s")
	candidates, err := b.APIPtr.Catalog.Candidates(kind)
	if err != nil {
		b.reply(session, message, usage)
		return
	}
	name := strings.Join(args[1:], " ")
	entry, ok := logic.ResolveName(name, candidates)
	if !ok {
		b.reply(session, message, fmt.Sprintf("Could not find a %s matching \"%s\"", kind, name))
		return
	}

	user := authorOf(message)
	prefs, err := b.APIPtr.GetPreferences(ctx, user.UserID)
	if err != nil {
		b.Logger.Error("failed to get preferences", zap.String("user_id", user.UserID), zap.Error(err))
		b.reply(session, message, errorReply(err, "getting your preferences"))
		return
	}

	current := preferenceField(prefs, kind)
	following := shared.IDSet(current)[entry.ID]
	if follow == following {
		if follow {
			b.reply(session, message, fmt.Sprintf("%s already follows %s", user.Username, entry.Name))
		} else {
			b.reply(session, message, fmt.Sprintf("%s does not follow %s", user.Username, entry.Name))
		}
		return
	}

	updated := make([]shared.ID, 0, len(current)+1)
	for _, id := range current {
		if id != entry.ID {
			updated = append(updated, id)
		}
	}
	if follow {
		updated = append(updated, entry.ID)
	}

	if err := b.APIPtr.SignIn(ctx, user); err != nil {
		b.Logger.Warn("failed to create user document", zap.String("user_id", user.UserID), zap.Error(err))
	}
	if err := b.APIPtr.SavePreferences(ctx, user.UserID, preferenceUpdate(kind, updated)); err != nil {
		b.Logger.Error("failed to save preferences", zap.String("user_id", user.UserID), zap.Error(err))
		b.reply(session, message, errorReply(err, "saving your preferences"))
		return
	}

	if follow {
		b.reply(session, message, fmt.Sprintf("%s now follows %s", user.Username, entry.Name))
	} else {
		b.reply(session, message, fmt.Sprintf("%s no longer follows %s", user.Username, entry.Name))
	}
}

// prefsHandler handles the $prefs command
func (b *Bot) prefsHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	user := authorOf(message)
	prefs, err := b.APIPtr.GetPreferences(ctx, user.UserID)
	if err != nil {
		b.Logger.Error("failed to get preferences", zap.String("user_id", user.UserID), zap.Error(err))
		b.reply(session, message, errorReply(err, "getting your preferences"))
		return
	}
	b.reply(session, message, formatPreferences(user.Username, prefs, b.APIPtr.Catalog))
}

// predictHandler handles the $predict command
// Preconditions: Receives the arguments after the command: the match id then the team name
// Postconditions: The prediction is recorded if the match is open and the team plays in it, else the reason it was
// refused is sent to the discord channel
func (b *Bot) predictHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate, args []string) {
	const usage = "Usage: `$predict <matchId> <team>`. Use `$upcoming` to find match ids"
	if len(args) < 2 {
		b.reply(session, message, usage)
		return
	}
	matchID, ok := shared.NormalizeID(args[0])
	if !ok {
		b.reply(session, message, usage)
		return
	}

	matches, err := b.APIPtr.GetUpcomingMatches(ctx)
	if err != nil {
		b.Logger.Error("failed to get upcoming matches", zap.Error(err))
		b.reply(session, message, errorReply(err, "looking up the match"))
		return
	}
	var match *shared.Match
	for i := range matches {
		if matches[i].ID == matchID {
			match = &matches[i]
			break
		}
	}
	if match == nil {
		b.reply(session, message, fmt.Sprintf("Match %s is not open for predictions. Use `$upcoming` to see open matches", matchID))
		return
	}

	candidates := logic.OpponentCandidates(*match)
	if len(candidates) == 0 {
		b.reply(session, message, fmt.Sprintf("The teams for match %s are not confirmed yet", matchID))
		return
	}
	name := strings.Join(args[1:], " ")
	team, ok := logic.ResolveName(name, candidates)
	if !ok {
		b.reply(session, message, fmt.Sprintf("\"%s\" is not playing in %s", name, formatMatch(*match)))
		return
	}

	user := authorOf(message)
	if err := b.APIPtr.SignIn(ctx, user); err != nil {
		b.Logger.Warn("failed to create user document", zap.String("user_id", user.UserID), zap.Error(err))
	}
	if _, err := b.APIPtr.RecordPrediction(ctx, user, match.ID, team.ID); err != nil {
		b.Logger.Info("prediction not recorded", zap.String("user_id", user.UserID), zap.String("match_id", match.ID.String()), zap.Error(err))
		b.reply(session, message, errorReply(err, "recording your prediction"))
		return
	}
	b.reply(session, message, fmt.Sprintf("%s predicted %s to win %s vs %s", user.Username, team.Name,
		match.Opponents[0].DisplayName(), match.Opponents[1].DisplayName()))
}

// statsHandler handles the $stats command
func (b *Bot) statsHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	user := authorOf(message)
	stats, err := b.APIPtr.GetStats(ctx, user.UserID)
	if err != nil {
		b.Logger.Error("failed to get stats", zap.String("user_id", user.UserID), zap.Error(err))
		b.reply(session, message, errorReply(err, "getting your stats"))
		return
	}
	if stats.Total == 0 {
		b.reply(session, message, fmt.Sprintf("%s has no finished predictions yet", user.Username))
		return
	}
	b.reply(session, message, fmt.Sprintf("%s's predictions: %d correct, %d incorrect out of %d finished matches",
		user.Username, stats.Correct, stats.Incorrect, stats.Total))
}

// historyHandler handles the $history command
func (b *Bot) historyHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	user := authorOf(message)
	history, err := b.APIPtr.GetHistory(ctx, user.UserID)
	if err != nil {
		b.Logger.Error("failed to get history", zap.String("user_id", user.UserID), zap.Error(err))
		b.reply(session, message, errorReply(err, "getting your history"))
		return
	}
	if len(history) == 0 {
		b.reply(session, message, fmt.Sprintf("%s has not made any predictions yet. Use `$predict` to make one", user.Username))
		return
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("%s's predictions:\n", user.Username))
	for i, e := range history {
		if i == maxListed {
			res.WriteString(fmt.Sprintf("...and %d more\n", len(history)-maxListed))
			break
		}
		res.WriteString(formatHistoryEntry(e) + "\n")
	}
	b.reply(session, message, res.String())
}

// newMessageHandler routes messages to the command handlers
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	if message.Author == nil || message.Author.ID == botUserID || message.Author.Bot {
		return
	}

	command, args := parseCommand(message.Content)
	if command == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch command {
	case "$help":
		b.helpMessageHandler(session, message)
	case "$feed":
		b.feedHandler(ctx, session, message)
	case "$upcoming":
		b.upcomingMatchesHandler(ctx, session, message)
	case "$follow":
		b.followHandler(ctx, session, message, args, true)
	case "$unfollow":
		b.followHandler(ctx, session, message, args, false)
	case "$prefs":
		b.prefsHandler(ctx, session, message)
	case "$predict":
		b.predictHandler(ctx, session, message, args)
	case "$stats":
		b.statsHandler(ctx, session, message)
	case "$history":
		b.historyHandler(ctx, session, message)
	}
}
