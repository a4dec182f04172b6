// Package agent implements the conversational agent gateway: prompt assembly
// from stored portfolio/task/memory context, a fallback chain across candidate
// generation models, action-directive extraction from the model's reply, and
// transcript logging.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/gemini"
	"github.com/mavecode/portfolio/internal/storage"
)

const (
	contextMemoryLimit = 10
	contextTaskLimit   = 10
	transcriptLimit    = 150
)

// User-visible failure messages when the whole fallback chain is exhausted.
const (
	quotaMessage = "All AI models are currently busy (quota limit). Please try again in a few moments!"
	errorMessage = "Sorry, I'm having technical difficulties reaching my AI brain right now. Please try again."
)

// Generator produces text for one candidate model. Implemented by
// *gemini.Client.
type Generator interface {
	Generate(ctx context.Context, model, systemInstruction, userMessage string) (string, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Reply is the structured result of one chat turn. It is always returned
// with a 200-level transport status; Success carries the real outcome.
type Reply struct {
	Response string   `json:"response"`
	Success  bool     `json:"success"`
	Actions  []string `json:"actions_performed,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Agent is the conversational gateway. Safe for concurrent use: each chat
// request's working state is local to the call.
type Agent struct {
	store  storage.Store
	llm    Generator
	models []string
	clock  Clock
}

// New creates an Agent that tries the candidate models in the given priority
// order (first success wins).
func New(store storage.Store, llm Generator, models []string) *Agent {
	return &Agent{store: store, llm: llm, models: models, clock: realClock{}}
}

// NewWithClock creates an Agent with a custom clock (for testing).
func NewWithClock(store storage.Store, llm Generator, models []string, clock Clock) *Agent {
	return &Agent{store: store, llm: llm, models: models, clock: clock}
}

// Chat runs one full turn: context assembly, generation with fallback,
// directive application, transcript logging. It never returns an error;
// every failure is converted into a non-success Reply.
func (a *Agent) Chat(ctx context.Context, message, username string) Reply {
	reply, err := a.chat(ctx, message, username)
	if err != nil {
		slog.Error("chat turn failed", "error", err)
		return Reply{
			Response: fmt.Sprintf("I apologize, I'm having trouble connecting right now. Error: %v", err),
			Success:  false,
		}
	}
	return reply
}

func (a *Agent) chat(ctx context.Context, message, username string) (Reply, error) {
	now := a.clock.Now().UTC()

	pf, err := a.resolvePortfolio(username)
	if err != nil {
		return Reply{}, fmt.Errorf("resolving portfolio: %w", err)
	}

	memories, err := a.store.ListMemories(contextMemoryLimit)
	if err != nil {
		return Reply{}, fmt.Errorf("loading memories: %w", err)
	}

	taskFilter := storage.TaskFilter{OnlyIncomplete: true, Limit: contextTaskLimit}
	if pf != nil && pf.UserID != "" {
		taskFilter.UserID = pf.UserID
	}
	tasks, err := a.store.ListTasks(taskFilter)
	if err != nil {
		return Reply{}, fmt.Errorf("loading tasks: %w", err)
	}

	systemPrompt := BuildSystemPrompt(pf, memories, tasks, now)

	text, lastErr := a.generateWithFallback(ctx, systemPrompt, message)
	if text == "" {
		reply := Reply{Response: errorMessage, Success: false}
		if lastErr != nil {
			reply.Error = lastErr.Error()
			if gemini.IsQuotaExhausted(lastErr) {
				reply.Response = quotaMessage
			}
		}
		return reply, nil
	}

	text, performed := a.applyDirectives(text, now)

	a.logTranscript(message, text, performed, now)

	return Reply{Response: text, Success: true, Actions: performed}, nil
}

// resolvePortfolio looks up the requested portfolio. With no username the
// first stored portfolio is used (legacy single-tenant default). A nil result
// with nil error means no portfolio exists.
func (a *Agent) resolvePortfolio(username string) (*storage.Portfolio, error) {
	if username != "" {
		pf, err := a.store.GetPortfolioByUsername(username)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &pf, nil
	}

	pf, err := a.store.FirstPortfolio()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pf, nil
}

// generateWithFallback tries each candidate model in order and returns the
// first usable text. A blocked or empty payload moves on without recording an
// error; a transport or provider error is recorded and the chain continues.
// Each model is tried once per turn.
func (a *Agent) generateWithFallback(ctx context.Context, systemPrompt, message string) (string, error) {
	var lastErr error
	for _, model := range a.models {
		text, err := a.llm.Generate(ctx, model, systemPrompt, message)
		if err == nil && text != "" {
			slog.Info("generation succeeded", "model", model)
			return text, nil
		}

		var blocked *gemini.BlockedError
		if errors.As(err, &blocked) {
			slog.Warn("model produced no usable text", "model", model, "finish_reason", blocked.FinishReason)
			continue
		}
		if err != nil {
			slog.Error("model call failed", "model", model, "error", err)
			lastErr = err
		}
	}
	return "", lastErr
}

// applyDirectives creates one task per parsed ADD_TASK tag, strips every tag
// occurrence from the text, and returns the cleaned text plus human-readable
// action descriptions. A failed directive is logged and skipped; the rest of
// the matches and the response are unaffected.
func (a *Agent) applyDirectives(text string, now time.Time) (string, []string) {
	var performed []string
	for _, d := range ParseDirectives(text) {
		if d.Kind != KindAddTask {
			continue
		}
		task := storage.Task{
			ID:        uuid.New().String(),
			Title:     strings.TrimSpace(d.Title),
			Priority:  strings.ToLower(strings.TrimSpace(d.Priority)),
			Deadline:  strings.TrimSpace(d.Deadline),
			Completed: false,
			CreatedAt: storage.Timestamp(now),
		}
		if err := a.store.SaveTask(task); err != nil {
			slog.Error("failed to apply task directive", "title", d.Title, "error", err)
			continue
		}
		performed = append(performed, "Added task: "+d.Title)
		text = strings.TrimSpace(strings.ReplaceAll(text, d.Raw, ""))
	}
	return text, performed
}

// logTranscript appends a trimmed record of the exchange to agent memory.
// Fire-and-forget: a failure is logged and does not affect the reply.
func (a *Agent) logTranscript(userMessage, response string, performed []string, now time.Time) {
	entry := storage.MemoryEntry{
		ID:   uuid.New().String(),
		Type: "conversation",
		Content: fmt.Sprintf("User: %s... Assistant: %s...",
			truncateRunes(userMessage, transcriptLimit),
			truncateRunes(response, transcriptLimit)),
		Actions:   performed,
		CreatedAt: storage.Timestamp(now),
	}
	if err := a.store.SaveMemory(entry); err != nil {
		slog.Error("failed to save conversation memory", "error", err)
	}
}
