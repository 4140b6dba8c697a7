package process

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/platform"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
)

const (
	// maxStderrBytes caps the amount of stderr captured from a child.
	maxStderrBytes = 64 * 1024

	// maxStdoutBytes caps stdout; it is only used for debug logging.
	maxStdoutBytes = 16 * 1024
)

// Messages are the user-facing strings for one kind of invocation.
type Messages struct {
	Success       string
	FailurePrefix string
}

var (
	// CommandMessages is used by execute_command.
	CommandMessages = Messages{Success: "命令执行成功", FailurePrefix: "命令执行失败"}
	// StartMessages is used by execute_command_async.
	StartMessages = Messages{Success: "命令已启动", FailurePrefix: "命令启动失败"}
	// LaunchMessages is used by launch_app.
	LaunchMessages = Messages{Success: "App launched successfully", FailurePrefix: "Failed to launch app"}
)

// Outcome is what a single child process run produced.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	// Err is set when the process could not be started or waited on.
	Err error
}

// Executor runs invocations built by a platform strategy.
type Executor struct {
	strategy platform.Strategy
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New creates an Executor for strategy.
func New(strategy platform.Strategy, opts ...Option) *Executor {
	e := &Executor{
		strategy: strategy,
		logger:   log.WithComponent("process"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy returns the platform strategy the executor was built with.
func (e *Executor) Strategy() platform.Strategy {
	return e.strategy
}

// Execute runs program with args, shaped by the platform strategy.
// It blocks until the child exits. There is no timeout and no retry.
func (e *Executor) Execute(ctx context.Context, program string, args []string) protocol.Result {
	if strings.TrimSpace(program) == "" {
		return protocol.Failuref("%s: no command given", CommandMessages.FailurePrefix)
	}
	return e.Run(ctx, e.strategy.Command(program, args), CommandMessages)
}

// Start spawns program with args and returns once it is running. The child
// is reaped in the background; its exit is only logged.
func (e *Executor) Start(ctx context.Context, program string, args []string) protocol.Result {
	if strings.TrimSpace(program) == "" {
		return protocol.Failuref("%s: no command given", StartMessages.FailurePrefix)
	}
	inv := e.strategy.Command(program, args)

	cmd := exec.Command(inv.Name, inv.Args...)
	configure(cmd)
	stderr := newCappedBuffer(maxStderrBytes)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		e.logger.WarnContext(ctx, "process failed to start", "invocation", inv.String(), "error", err)
		return protocol.Failuref("%s: %v", StartMessages.FailurePrefix, err)
	}
	pid := cmd.Process.Pid
	e.logger.InfoContext(ctx, "process started", "invocation", inv.String(), "pid", pid)

	started := time.Now()
	bg := context.WithoutCancel(ctx)
	go func() {
		err := cmd.Wait()
		attrs := []any{"invocation", inv.String(), "pid", pid, "duration_ms", time.Since(started).Milliseconds()}
		if err != nil {
			attrs = append(attrs, "error", err, "stderr", strings.TrimSpace(stderr.String()))
			e.logger.WarnContext(bg, "background process exited", attrs...)
			return
		}
		e.logger.InfoContext(bg, "background process exited", attrs...)
	}()
	return protocol.Success(StartMessages.Success)
}

// Launch starts the application at path using the platform launcher.
func (e *Executor) Launch(ctx context.Context, path string) protocol.Result {
	return e.Run(ctx, e.strategy.Launch(path), LaunchMessages)
}

// Run spawns inv, waits for it and classifies the outcome with msgs.
func (e *Executor) Run(ctx context.Context, inv platform.Invocation, msgs Messages) protocol.Result {
	out := e.Spawn(ctx, inv)
	res := Classify(out, msgs)
	switch {
	case res.OK && out.ExitCode != 0:
		e.logger.Warn("process exited non-zero without stderr",
			"invocation", inv.String(),
			"exit_code", out.ExitCode,
			"duration_ms", out.Duration.Milliseconds(),
		)
	case res.OK:
		e.logger.Info("process succeeded", "invocation", inv.String(), "duration_ms", out.Duration.Milliseconds())
	default:
		e.logger.Warn("process failed",
			"invocation", inv.String(),
			"exit_code", out.ExitCode,
			"duration_ms", out.Duration.Milliseconds(),
			"error", res.Message,
		)
	}
	return res
}

// Spawn runs inv to completion and captures its exit status and output.
// exec.Command is used rather than CommandContext: a launched application
// must not be killed when the request that started it goes away.
func (e *Executor) Spawn(ctx context.Context, inv platform.Invocation) Outcome {
	cmd := exec.Command(inv.Name, inv.Args...)
	configure(cmd)

	stdout := newCappedBuffer(maxStdoutBytes)
	stderr := newCappedBuffer(maxStderrBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	e.logger.DebugContext(ctx, "spawning process", "name", inv.Name, "args", inv.Args)

	start := time.Now()
	err := cmd.Run()
	out := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		} else {
			out.ExitCode = -1
			out.Err = err
		}
	}

	if stderr.Truncated() {
		e.logger.DebugContext(ctx, "stderr truncated", "name", inv.Name, "limit_bytes", maxStderrBytes)
	}
	if out.Stdout != "" {
		e.logger.DebugContext(ctx, "process stdout", "name", inv.Name, "stdout", out.Stdout)
	}
	return out
}

// Classify turns an Outcome into a Result. A spawn error or a non-zero exit
// with stderr is a failure. A non-zero exit with empty stderr reports the
// confirmation, since there is no error text to show.
func Classify(out Outcome, msgs Messages) protocol.Result {
	if out.Err != nil {
		return protocol.Failuref("%s: %v", msgs.FailurePrefix, out.Err)
	}
	if out.ExitCode != 0 {
		if detail := strings.TrimSpace(out.Stderr); detail != "" {
			return protocol.Failuref("%s: %s", msgs.FailurePrefix, detail)
		}
	}
	return protocol.Success(msgs.Success)
}
