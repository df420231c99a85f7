// Package bot connects registered bots to the messaging platform and answers
// their chats from the knowledge base.
package bot

import "context"

// Message is one incoming chat message. Command holds the command name
// without the slash when the message is a command.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
	Command  string
}

// HandleFunc returns the reply for a message. An empty reply sends nothing.
type HandleFunc func(ctx context.Context, msg Message) string

// Connector is a live connection of one bot to the messaging platform.
type Connector interface {
	// Run delivers messages to handle until ctx is cancelled.
	Run(ctx context.Context, handle HandleFunc) error
}

// ConnectFunc authenticates a bot token and returns its connector.
type ConnectFunc func(token string) (Connector, error)
