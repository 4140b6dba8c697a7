// Package opener opens files and folders with the operating system's
// default handler.
package opener

import (
	"context"
	"log/slog"

	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/process"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
)

var (
	// Messages are reported by Open.
	Messages = process.Messages{Success: "文件已打开", FailurePrefix: "打开文件失败"}
	// RevealMessages are reported by Reveal.
	RevealMessages = process.Messages{Success: "已在文件管理器中显示", FailurePrefix: "在文件管理器中显示失败"}
)

// Opener hands paths to the platform's open utility.
type Opener struct {
	exec   *process.Executor
	logger *slog.Logger
}

// New returns an Opener that spawns through exec.
func New(exec *process.Executor) *Opener {
	return &Opener{
		exec:   exec,
		logger: log.WithComponent("opener"),
	}
}

// Open asks the OS to open path. The path is not checked for existence;
// the platform utility reports missing files through its exit status.
func (o *Opener) Open(ctx context.Context, path string) protocol.Result {
	inv := o.exec.Strategy().Open(path)
	o.logger.DebugContext(ctx, "opening path", "path", path, "invocation", inv.String())
	return o.exec.Run(ctx, inv, Messages)
}

// Reveal shows path in the platform file manager.
func (o *Opener) Reveal(ctx context.Context, path string) protocol.Result {
	inv := o.exec.Strategy().Reveal(path)
	o.logger.DebugContext(ctx, "revealing path", "path", path, "invocation", inv.String())
	return o.exec.Run(ctx, inv, RevealMessages)
}
