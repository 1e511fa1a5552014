package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RawInputKey is the context key the orchestrator seeds with the raw
// run input before any step executes.
const RawInputKey = "raw_input"

// Message is a directed note from one agent to another, carried on the
// shared run context.
type Message struct {
	// ID uniquely identifies the message.
	ID string `json:"id"`

	// Sender is the agent id that sent the message.
	Sender string `json:"sender"`

	// Receiver is the agent id the message is addressed to.
	Receiver string `json:"receiver"`

	// Type names the kind of message (agent-defined).
	Type string `json:"type"`

	// Payload carries the message body.
	Payload map[string]interface{} `json:"payload,omitempty"`

	// Timestamp is when the message was created.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a generated id and the current
// time.
func NewMessage(sender, receiver, msgType string, payload map[string]interface{}) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// LogEntry is one line of the run's activity log.
type LogEntry struct {
	// Actor is who logged the entry: "orchestrator" or an agent id.
	Actor string `json:"actor"`

	// Action names what happened (e.g., "step_completed").
	Action string `json:"action"`

	// Detail carries structured context for the entry.
	Detail map[string]interface{} `json:"detail,omitempty"`

	// At is when the entry was logged.
	At time.Time `json:"at"`
}

// Context is the shared state of one pipeline run: a key/value data
// area, an inter-agent message list, and an activity log.
//
// The orchestrator creates a fresh Context per run and seeds it with
// the raw input under RawInputKey. Steps read their input from it and
// completed step results are written back under each step's OutputKey,
// which is how data flows from step to step.
//
// All methods are safe for concurrent use; parallel ready batches read
// and write the context from worker goroutines.
type Context struct {
	mu       sync.RWMutex
	data     map[string]interface{}
	messages []Message
	log      []LogEntry
}

// NewContext creates an empty run context.
func NewContext() *Context {
	return &Context{
		data: make(map[string]interface{}),
	}
}

// Set stores a value under the given key, replacing any previous value.
func (c *Context) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Get retrieves the value stored under key.
func (c *Context) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.data[key]
	return value, ok
}

// GetOr retrieves the value stored under key, or def if absent.
func (c *Context) GetOr(key string, def interface{}) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if value, ok := c.data[key]; ok {
		return value
	}
	return def
}

// Has reports whether a value is stored under key.
func (c *Context) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.data[key]
	return ok
}

// Keys returns all stored keys in sorted order.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for key := range c.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the data area.
func (c *Context) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := make(map[string]interface{}, len(c.data))
	for key, value := range c.data {
		snap[key] = value
	}
	return snap
}

// AddMessage appends a message to the run's message list.
func (c *Context) AddMessage(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of all messages in arrival order.
func (c *Context) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// MessagesFor returns the messages addressed to the given receiver, in
// arrival order.
func (c *Context) MessagesFor(receiver string) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Message
	for _, msg := range c.messages {
		if msg.Receiver == receiver {
			out = append(out, msg)
		}
	}
	return out
}

// Log appends an entry to the run's activity log.
func (c *Context) Log(actor, action string, detail map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log = append(c.log, LogEntry{
		Actor:  actor,
		Action: action,
		Detail: detail,
		At:     time.Now(),
	})
}

// LogEntries returns a copy of the activity log in append order.
func (c *Context) LogEntries() []LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]LogEntry, len(c.log))
	copy(out, c.log)
	return out
}
