package window

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/mira-bridge/internal/log"
)

// Command is one instruction sent to the UI process.
type Command struct {
	ID   string         `json:"id"`
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`
	// Ack tells the UI whether the bridge waits for POST /window/ack/{id}.
	Ack bool `json:"ack"`
}

// Ack is the UI's reply to a Command.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Remote is a Host whose window is reached through attached UI streams.
// A handle obtained from MainWindow belongs to one attachment generation:
// once every stream has detached, the handle reports ErrStale even if a new
// stream attaches later.
type Remote struct {
	ackTimeout time.Duration
	logger     *slog.Logger

	mu         sync.Mutex
	streams    map[int]chan Command
	nextStream int
	generation uint64
	pending    map[string]chan error
	onAttach   func(context.Context, Window)
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithAckTimeout makes every command wait up to d for the UI's ack.
// Zero means fire-and-forget.
func WithAckTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		r.ackTimeout = d
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) RemoteOption {
	return func(r *Remote) {
		r.logger = l
	}
}

// NewRemote returns a Remote with no attached streams.
func NewRemote(opts ...RemoteOption) *Remote {
	r := &Remote{
		logger:  log.WithComponent("window"),
		streams: make(map[int]chan Command),
		pending: make(map[string]chan error),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnAttach registers fn to run, on its own goroutine, whenever a stream
// attaches while none was attached.
func (r *Remote) OnAttach(fn func(context.Context, Window)) {
	r.mu.Lock()
	r.onAttach = fn
	r.mu.Unlock()
}

// MainWindow returns a handle bound to the current attachment.
func (r *Remote) MainWindow() (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.streams) == 0 {
		return nil, false
	}
	return &handle{remote: r, generation: r.generation}, true
}

// Streams reports the number of attached UI streams.
func (r *Remote) Streams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

// Attach registers a UI stream. Commands are delivered on the returned
// channel until detach is called.
func (r *Remote) Attach() (<-chan Command, func()) {
	r.mu.Lock()
	id := r.nextStream
	r.nextStream++
	ch := make(chan Command, 32)
	first := len(r.streams) == 0
	if first {
		r.generation++
	}
	r.streams[id] = ch
	hook := r.onAttach
	var w Window
	if first && hook != nil {
		w = &handle{remote: r, generation: r.generation}
	}
	r.mu.Unlock()

	r.logger.Info("ui stream attached", "stream", id, "first", first)
	if w != nil {
		go hook(context.Background(), w)
	}

	var once sync.Once
	detach := func() {
		once.Do(func() { r.detach(id) })
	}
	return ch, detach
}

func (r *Remote) detach(id int) {
	r.mu.Lock()
	ch, ok := r.streams[id]
	if ok {
		delete(r.streams, id)
		close(ch)
	}
	last := len(r.streams) == 0
	if last {
		for cmdID, wait := range r.pending {
			select {
			case wait <- ErrStale:
			default:
			}
			delete(r.pending, cmdID)
		}
	}
	r.mu.Unlock()

	if ok {
		r.logger.Info("ui stream detached", "stream", id, "last", last)
	}
}

// Ack resolves the pending command id.
func (r *Remote) Ack(id string, ack Ack) error {
	r.mu.Lock()
	wait, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrUnknownCommand
	}

	var err error
	if !ack.OK {
		msg := ack.Error
		if msg == "" {
			msg = "window command failed"
		}
		err = errors.New(msg)
	}
	wait <- err
	return nil
}

func (r *Remote) send(ctx context.Context, generation uint64, op string, args map[string]any) error {
	cmd := Command{
		ID:   uuid.NewString(),
		Op:   op,
		Args: args,
		Ack:  r.ackTimeout > 0,
	}

	r.mu.Lock()
	if r.generation != generation || len(r.streams) == 0 {
		r.mu.Unlock()
		return ErrStale
	}
	var wait chan error
	if cmd.Ack {
		wait = make(chan error, 1)
		r.pending[cmd.ID] = wait
	}
	for id, ch := range r.streams {
		select {
		case ch <- cmd:
		default:
			r.logger.Warn("ui stream full, dropping command", "stream", id, "op", op, "command_id", cmd.ID)
		}
	}
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "window command sent", "op", op, "command_id", cmd.ID, "ack", cmd.Ack)
	if wait == nil {
		return nil
	}

	timer := time.NewTimer(r.ackTimeout)
	defer timer.Stop()

	select {
	case err := <-wait:
		return err
	case <-timer.C:
		r.forget(cmd.ID)
		return ErrAckTimeout
	case <-ctx.Done():
		r.forget(cmd.ID)
		return ctx.Err()
	}
}

func (r *Remote) forget(id string) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

type handle struct {
	remote     *Remote
	generation uint64
}

func (h *handle) Show(ctx context.Context) error {
	return h.remote.send(ctx, h.generation, OpShow, nil)
}

func (h *handle) SetFocus(ctx context.Context) error {
	return h.remote.send(ctx, h.generation, OpSetFocus, nil)
}

func (h *handle) SetTitle(ctx context.Context, title string) error {
	return h.remote.send(ctx, h.generation, OpSetTitle, map[string]any{"title": title})
}

func (h *handle) Eval(ctx context.Context, script string) error {
	return h.remote.send(ctx, h.generation, OpEval, map[string]any{"script": script})
}

func (h *handle) OpenDevtools(ctx context.Context) error {
	return h.remote.send(ctx, h.generation, OpOpenDevtools, nil)
}

func (h *handle) RegisterShortcut(ctx context.Context, accelerator, action string) error {
	return h.remote.send(ctx, h.generation, OpRegisterShortcut, map[string]any{
		"accelerator": accelerator,
		"action":      action,
	})
}
