package models

import "strings"

// CommandType enumerates supported chat command categories.
type CommandType string

const (
	CommandWeight    CommandType = "weight"
	CommandWater     CommandType = "water"
	CommandBowl      CommandType = "bowl"
	CommandLeftover  CommandType = "leftover"
	CommandEvap      CommandType = "evap"
	CommandFood      CommandType = "food"
	CommandNote      CommandType = "note"
	CommandStats     CommandType = "stats"
	CommandReminders CommandType = "reminders"
	CommandUnknown   CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"weight":    CommandWeight,
	"w":         CommandWeight,
	"water":     CommandWater,
	"bowl":      CommandBowl,
	"leftover":  CommandLeftover,
	"left":      CommandLeftover,
	"evap":      CommandEvap,
	"food":      CommandFood,
	"eat":       CommandFood,
	"note":      CommandNote,
	"stats":     CommandStats,
	"today":     CommandStats,
	"reminders": CommandReminders,
	"remind":    CommandReminders,
}

// Command represents a parsed instruction extracted from chat text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
// Arguments keep their original case so note text and food names survive.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return Command{Type: CommandUnknown, Raw: message}
	}

	cmd := Command{Raw: message, Type: CommandUnknown}
	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := commandAliases[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
