package player

import "strings"

// CommandHandler executes one registered command for the issuing player,
// given the arguments following the command name.
type CommandHandler func(p *Player, args []string) error

// CommandRegistry is a side-channel off the main Play packet dispatch: chat
// messages beginning with "/" are routed here instead of being broadcast.
// It deliberately does not implement argument grammar, permissions, or
// tab-completion — only name-to-handler dispatch, leaving a real command
// framework as a plugin/ABI concern out of scope here.
type CommandRegistry struct {
	handlers map[string]CommandHandler
}

// NewCommandRegistry returns an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{handlers: make(map[string]CommandHandler)}
}

// Register associates name (without a leading slash) with handler.
func (r *CommandRegistry) Register(name string, handler CommandHandler) {
	r.handlers[name] = handler
}

// Dispatch parses a raw chat message and, if it begins with "/", invokes
// the matching handler. It reports whether the message was consumed as a
// command at all (false for ordinary chat).
func (r *CommandRegistry) Dispatch(p *Player, message string) (bool, error) {
	if !strings.HasPrefix(message, "/") {
		return false, nil
	}
	fields := strings.Fields(message[1:])
	if len(fields) == 0 {
		return true, nil
	}
	handler, ok := r.handlers[fields[0]]
	if !ok {
		return true, nil
	}
	return true, handler(p, fields[1:])
}
