package bot

// Command constants for Telegram bot commands.
const (
	CommandStart  = "/start"
	CommandStatus = "/status"
)

// Route names reported for messages that match no command.
const (
	RouteUnknown = "unknown_command"
	RouteText    = "text"
)
