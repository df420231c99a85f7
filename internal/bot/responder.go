package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"kbbot/internal/metrics"
	"kbbot/internal/models"

	"go.uber.org/zap"
)

const (
	fallbackMessage = `I'm sorry, I couldn't find relevant information in my knowledge base to answer your question.

You can try:
- Rephrasing your question
- Being more specific
- Asking about a different topic

If you think this information should be available, please contact the administrator to update the knowledge base.`

	errorMessage = "I'm sorry, I encountered an error while processing your request. Please try again later."

	rateLimitedMessage = "You're sending messages too quickly. Please wait a moment and try again."
)

func welcomeMessage(botName string) string {
	return fmt.Sprintf(`🤖 Welcome to %s!

I'm an AI assistant with access to a knowledge base. You can ask me questions and I'll try to help you based on the information I have.

Commands:
/start - Show this welcome message
/help - Get help information

Just send me a message with your question!`, botName)
}

func helpMessage(botName string) string {
	return fmt.Sprintf(`🆘 Help for %s

I can help you find information from my knowledge base. Here's how to use me:

1. Ask Questions: Simply type your question and I'll search for relevant information
2. Be Specific: The more specific your question, the better I can help
3. Try Different Phrasings: If you don't get the answer you're looking for, try rephrasing your question

Commands:
/start - Welcome message
/help - This help message

Example questions:
- "What is...?"
- "How do I...?"
- "Tell me about..."`, botName)
}

// Searcher answers a question from a bot's knowledge bases.
type Searcher interface {
	Ask(ctx context.Context, botID int64, query string) (answer string, found bool, err error)
}

// Recorder stores chat exchanges.
type Recorder interface {
	Record(ctx context.Context, conv *models.Conversation) error
}

// Responder produces the replies of one bot.
type Responder struct {
	botID    int64
	botName  string
	searcher Searcher
	recorder Recorder
	limiter  *userLimiter
	logger   *zap.Logger
}

func (r *Responder) Handle(ctx context.Context, msg Message) string {
	if !r.limiter.Allow(msg.UserID) {
		metrics.CountMessage("rate_limited")
		return rateLimitedMessage
	}

	switch msg.Command {
	case "start":
		metrics.CountMessage("start")
		reply := welcomeMessage(r.botName)
		r.record(ctx, msg, "/start", reply)
		return reply
	case "help":
		metrics.CountMessage("help")
		reply := helpMessage(r.botName)
		r.record(ctx, msg, "/help", reply)
		return reply
	case "":
	default:
		return ""
	}

	query := strings.TrimSpace(msg.Text)
	if query == "" {
		return ""
	}

	answer, found, err := r.searcher.Ask(ctx, r.botID, query)
	if err != nil {
		metrics.CountMessage("error")
		r.logger.Error("Failed to answer message", zap.Int64("bot_id", r.botID), zap.Error(err))
		r.record(ctx, msg, query, "Error: "+err.Error())
		return errorMessage
	}

	if !found {
		metrics.CountMessage("fallback")
		answer = fallbackMessage
	} else {
		metrics.CountMessage("answered")
	}
	r.record(ctx, msg, query, answer)
	return answer
}

func (r *Responder) record(ctx context.Context, msg Message, text, reply string) {
	conv := &models.Conversation{
		TelegramUserID:   strconv.FormatInt(msg.UserID, 10),
		TelegramUsername: msg.Username,
		Message:          text,
		Response:         reply,
		BotID:            r.botID,
	}
	if err := r.recorder.Record(context.WithoutCancel(ctx), conv); err != nil {
		r.logger.Warn("Failed to log conversation", zap.Int64("bot_id", r.botID), zap.Error(err))
	}
}
