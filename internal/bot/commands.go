package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// CommandKind identifies a slash command the bot understands.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandStart
	CommandHelp
	CommandTerms
	CommandAgreement
	CommandContact
	CommandRefreshImages
	CommandTerminate
	CommandStatus
	CommandExport
)

// Command defines a bot command with its handler key and Telegram menu description.
type Command struct {
	Kind        CommandKind
	Name        string // Command name without slash (e.g., "start")
	Description string // Description shown in Telegram command menu
	Admin       bool
}

// botCommands defines all available bot commands.
// This is the single source of truth for command definitions.
var botCommands = []Command{
	{Kind: CommandStart, Name: "start", Description: "Start the bot and see main menu"},
	{Kind: CommandHelp, Name: "help", Description: "Get help and information"},
	{Kind: CommandTerms, Name: "terms", Description: "View Terms of Service"},
	{Kind: CommandAgreement, Name: "agreement", Description: "View User Agreement"},
	{Kind: CommandContact, Name: "contact", Description: "Contact support team"},
	{Kind: CommandRefreshImages, Name: "refresh_images", Description: "Refresh all users' profile images", Admin: true},
	{Kind: CommandTerminate, Name: "terminate", Description: "Stop the running image refresh", Admin: true},
	{Kind: CommandStatus, Name: "status", Description: "Show bot status", Admin: true},
	{Kind: CommandExport, Name: "export", Description: "Export users as a spreadsheet", Admin: true},
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(botCommands))
	for _, c := range botCommands {
		m[c.Name] = c
	}
	return m
}()

// parseCommand resolves a message's command. Messages that are not commands
// yield CommandUnknown and an empty name.
func parseCommand(message *tgbotapi.Message) (Command, string) {
	name := message.Command()
	if name == "" {
		return Command{Kind: CommandUnknown}, ""
	}
	if cmd, ok := commandsByName[name]; ok {
		return cmd, message.CommandArguments()
	}
	return Command{Kind: CommandUnknown, Name: name}, message.CommandArguments()
}

func toBotCommands(admin bool) []tgbotapi.BotCommand {
	var commands []tgbotapi.BotCommand
	for _, cmd := range botCommands {
		if cmd.Admin && !admin {
			continue
		}
		commands = append(commands, tgbotapi.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		})
	}
	return commands
}

// RegisterCommands sets the bot's command menu in Telegram. The admin, when
// configured, additionally sees the operational commands in their own chat.
func RegisterCommands(tg BotAPI, adminID int64) error {
	public := toBotCommands(false)
	if _, err := tg.Request(tgbotapi.NewSetMyCommands(public...)); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	log.Info().Int("count", len(public)).Msg("registered bot commands")

	if adminID == 0 {
		return nil
	}

	all := toBotCommands(true)
	scope := tgbotapi.NewBotCommandScopeChat(adminID)
	if _, err := tg.Request(tgbotapi.NewSetMyCommandsWithScope(scope, all...)); err != nil {
		return fmt.Errorf("failed to set admin commands: %w", err)
	}
	log.Info().Int("count", len(all)).Int64("adminId", adminID).Msg("registered admin commands")
	return nil
}
