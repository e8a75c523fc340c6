// Package conversation owns the ordered list of chat turns that forms the
// prompt sent to the model on each request.
//
// The log is split into committed turns and a single pending slot. A user
// turn is staged with Propose, sent to the provider as part of Snapshot,
// and only committed (together with the assistant reply) when the exchange
// succeeds. Failed exchanges Discard the pending turn, so committed history
// always reflects completed exchanges only.
//
// A Conversation is owned by whichever loop drives the chat (the TUI update
// loop in this program) and is not safe for concurrent use.
package conversation

import "github.com/papercomputeco/console/pkg/llm"

// DefaultSystemPrompt seeds a fresh conversation when no system prompt is
// configured.
const DefaultSystemPrompt = "You are a helpful assistant."

// Conversation is an ordered sequence of turns. The first committed turn is
// always the system turn.
type Conversation struct {
	system  string
	turns   []llm.Message
	pending *llm.Message
}

// New creates a conversation holding a single system turn. An empty
// systemPrompt falls back to DefaultSystemPrompt.
func New(systemPrompt string) *Conversation {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	c := &Conversation{system: systemPrompt}
	c.Reset()
	return c
}

// Reset replaces all turns with a single fresh system turn and drops any
// pending turn. Calling it twice in a row yields the same state.
func (c *Conversation) Reset() {
	c.turns = []llm.Message{{Role: llm.RoleSystem, Content: c.system}}
	c.pending = nil
}

// SetSystemPrompt changes the prompt used for the system turn. The current
// system turn is rewritten in place; committed exchanges are untouched.
func (c *Conversation) SetSystemPrompt(prompt string) {
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	c.system = prompt
	if len(c.turns) > 0 && c.turns[0].Role == llm.RoleSystem {
		c.turns[0].Content = prompt
	}
}

// Append adds a turn at the end of the committed log. No role ordering is
// enforced; that discipline belongs to the caller.
func (c *Conversation) Append(m llm.Message) {
	c.turns = append(c.turns, m)
}

// PopLastIfRole removes and returns the last committed turn only if its
// role matches; otherwise it is a no-op.
func (c *Conversation) PopLastIfRole(role llm.Role) (llm.Message, bool) {
	if len(c.turns) == 0 {
		return llm.Message{}, false
	}
	last := c.turns[len(c.turns)-1]
	if last.Role != role {
		return llm.Message{}, false
	}
	c.turns = c.turns[:len(c.turns)-1]
	return last, true
}

// Propose stages content as the pending user turn. It reports false when a
// pending turn already exists or the content is empty.
func (c *Conversation) Propose(content string) bool {
	if c.pending != nil || content == "" {
		return false
	}
	c.pending = &llm.Message{Role: llm.RoleUser, Content: content}
	return true
}

// Pending returns the staged user turn, if any.
func (c *Conversation) Pending() (llm.Message, bool) {
	if c.pending == nil {
		return llm.Message{}, false
	}
	return *c.pending, true
}

// Commit appends the pending user turn followed by the assistant reply to
// the committed log and clears the pending slot. It reports false when
// nothing was pending.
func (c *Conversation) Commit(assistant llm.Message) bool {
	if c.pending == nil {
		return false
	}
	c.turns = append(c.turns, *c.pending, assistant)
	c.pending = nil
	return true
}

// Discard drops the pending user turn, returning it for display purposes.
// Committed turns are untouched.
func (c *Conversation) Discard() (llm.Message, bool) {
	if c.pending == nil {
		return llm.Message{}, false
	}
	dropped := *c.pending
	c.pending = nil
	return dropped, true
}

// Snapshot returns a copy of the full prompt sequence: committed turns with
// the pending user turn, if any, last. The copy is safe to hand to a worker
// goroutine while the conversation keeps mutating.
func (c *Conversation) Snapshot() []llm.Message {
	n := len(c.turns)
	if c.pending != nil {
		n++
	}
	out := make([]llm.Message, 0, n)
	out = append(out, c.turns...)
	if c.pending != nil {
		out = append(out, *c.pending)
	}
	return out
}

// Len reports the number of committed turns. The pending turn is not
// counted until Commit.
func (c *Conversation) Len() int {
	return len(c.turns)
}
