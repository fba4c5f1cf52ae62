package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go_todo/task"
)

// ApologyAnswer is returned when the model could not answer.
const ApologyAnswer = "Sorry, I encountered an error while processing your query. Please try again."

// Assistant answers free-form questions about the task list.
type Assistant struct {
	gen    Generator
	logger *zap.Logger
}

// NewAssistant creates an assistant backed by gen.
func NewAssistant(gen Generator, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{gen: gen, logger: logger}
}

// Answer returns the model's answer, or ApologyAnswer on failure.
func (a *Assistant) Answer(ctx context.Context, question string, tasks []task.Task) string {
	answer, err := a.gen.GenerateText(ctx, queryPrompt(question, tasks))
	if err != nil {
		a.logger.Error("task query failed", zap.String("question", question), zap.Error(err))
		return ApologyAnswer
	}
	return strings.TrimSpace(answer)
}

func queryPrompt(question string, tasks []task.Task) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that answers questions about the user's tasks.\n")
	b.WriteString("Here are the user's tasks:\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "- Description: %s, Due Date: %s, Completed: %t\n", t.Description, t.Due, t.Completed)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\n", question)
	b.WriteString("Please provide a helpful and concise answer about the user's tasks.")
	return b.String()
}

// SearchTerm reports whether query asks for a plain text search
// ("search milk", "find dentist") and returns the term.
func SearchTerm(query string) (string, bool) {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)
	for _, prefix := range []string{"search ", "find "} {
		if strings.HasPrefix(lower, prefix) {
			term := strings.TrimSpace(q[len(prefix):])
			return term, term != ""
		}
	}
	return "", false
}
