package router

//go:generate mockgen -destination=mocks/mock_router.go -package=mocks github.com/mattjoyce/mira-bridge/internal/router Launcher,Opener,Navigator

import (
	"context"

	"github.com/mattjoyce/mira-bridge/internal/protocol"
)

// Launcher starts applications (process.Executor).
type Launcher interface {
	Launch(ctx context.Context, path string) protocol.Result
}

// Opener opens files with the OS default handler (opener.Opener).
type Opener interface {
	Open(ctx context.Context, path string) protocol.Result
}

// Navigator handles in-app functions (navigate.Signaler).
type Navigator interface {
	NavigateAction(ctx context.Context, name string) protocol.Result
}

// Dispatcher classifies and executes one action request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req protocol.ActionRequest) protocol.Result
}
