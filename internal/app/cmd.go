package app

// Command is a sub-command of the dda binary.
type Command string

const (
	// CommandServe runs the API server. It is the default.
	CommandServe Command = "serve"
	// CommandWorker runs the expired-session sweep.
	CommandWorker Command = "worker"
	// CommandMigrate applies database migrations and exits.
	CommandMigrate Command = "migrate"
	// CommandHealthcheck probes the local API server, for distroless container health checks.
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand returns the sub-command named by args[0], or CommandServe when
// args is empty or the name is unknown.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch Command(args[0]) {
	case CommandWorker, CommandServe, CommandMigrate, CommandHealthcheck:
		return Command(args[0])
	default:
		return CommandServe
	}
}
