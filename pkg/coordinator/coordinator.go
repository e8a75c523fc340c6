// Package coordinator issues chat completion requests against a provider
// and reports the outcome over an event channel.
//
// Each invocation performs exactly one provider call, blocking or
// streaming, on its own goroutine so the caller's loop never waits on the
// network. Results come back as Events: zero or more Fragments followed by
// exactly one terminal event (Finished or Failed), after which the channel
// is closed. The coordinator never mutates conversation state; the caller
// applies the outcome.
package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/papercomputeco/console/pkg/llm"
)

// ErrInFlight is returned when a request is started while another is still
// running. Requests are neither queued nor interleaved.
var ErrInFlight = errors.New("a request is already in flight")

// ErrNoPrompt is returned when the snapshot does not end in a user turn,
// which would send the model a prompt with nothing to answer.
var ErrNoPrompt = errors.New("last turn is not a user turn")

// Provider is the chat completion capability the coordinator drives.
// Implementations perform a single attempt per call; retries are out of
// contract.
type Provider interface {
	// Complete performs one blocking chat completion.
	Complete(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)

	// Stream performs one streaming chat completion, invoking fn for each
	// text fragment in arrival order. Returning an error from fn aborts
	// the stream.
	Stream(ctx context.Context, req llm.ChatRequest, fn func(delta string) error) error
}

// Event is the outcome channel payload: Fragment, Finished, or Failed.
type Event interface{ coordinatorEvent() }

// Fragment is one incremental piece of streamed assistant text.
type Fragment struct {
	Text string
}

// Finished is the terminal success event. Content is the full assistant
// message; in streaming mode it equals the in-order concatenation of every
// Fragment delivered before it.
type Finished struct {
	Content string
}

// Failed is the terminal failure event. Fragments already delivered are not
// retracted; the caller decides what to do with partial display output.
type Failed struct {
	Err error
}

func (Fragment) coordinatorEvent() {}
func (Finished) coordinatorEvent() {}
func (Failed) coordinatorEvent()   {}

// Coordinator issues at most one request at a time against a fixed model.
type Coordinator struct {
	provider Provider
	model    string
	logger   *zap.Logger

	inflight atomic.Bool
}

// New creates a Coordinator. A nil logger falls back to a no-op logger.
func New(provider Provider, model string, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{provider: provider, model: model, logger: logger}
}

// InFlight reports whether a request is currently running.
func (c *Coordinator) InFlight() bool {
	return c.inflight.Load()
}

// Send issues one blocking completion for the given snapshot of turns. The
// returned channel delivers exactly one terminal event and is then closed.
func (c *Coordinator) Send(ctx context.Context, turns []llm.Message) (<-chan Event, error) {
	return c.start(ctx, turns, false)
}

// SendStream issues one streaming completion. The returned channel delivers
// fragments in arrival order followed by exactly one terminal event, then
// closes.
func (c *Coordinator) SendStream(ctx context.Context, turns []llm.Message) (<-chan Event, error) {
	return c.start(ctx, turns, true)
}

func (c *Coordinator) start(ctx context.Context, turns []llm.Message, streaming bool) (<-chan Event, error) {
	if len(turns) == 0 || turns[len(turns)-1].Role != llm.RoleUser {
		return nil, ErrNoPrompt
	}
	if !c.inflight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}

	req := llm.ChatRequest{
		Model:    c.model,
		Messages: turns,
		Stream:   streaming,
	}

	// Buffered so a slow consumer does not stall fragment delivery for
	// typical responses; ordering is preserved either way.
	events := make(chan Event, 32)

	go func() {
		// The guard clears before the channel closes, so a consumer that
		// drains to the close can immediately start the next request.
		defer close(events)
		defer c.inflight.Store(false)

		if streaming {
			c.runStream(ctx, req, events)
			return
		}
		c.runBlocking(ctx, req, events)
	}()

	return events, nil
}

func (c *Coordinator) runBlocking(ctx context.Context, req llm.ChatRequest, events chan<- Event) {
	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		c.logger.Warn("completion failed", zap.Error(err))
		events <- Failed{Err: err}
		return
	}

	content := resp.Content()
	c.logger.Debug("completion finished",
		zap.String("model", resp.Model),
		zap.Int("content_len", len(content)),
	)
	events <- Finished{Content: content}
}

func (c *Coordinator) runStream(ctx context.Context, req llm.ChatRequest, events chan<- Event) {
	var full strings.Builder

	err := c.provider.Stream(ctx, req, func(delta string) error {
		full.WriteString(delta)
		select {
		case events <- Fragment{Text: delta}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		c.logger.Warn("stream failed",
			zap.Error(err),
			zap.Int("partial_len", full.Len()),
		)
		events <- Failed{Err: err}
		return
	}

	c.logger.Debug("stream finished", zap.Int("content_len", full.Len()))
	events <- Finished{Content: full.String()}
}
