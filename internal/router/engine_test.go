package router

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
	"github.com/mattjoyce/mira-bridge/internal/router/mocks"
)

type fixture struct {
	launcher  *mocks.MockLauncher
	opener    *mocks.MockOpener
	navigator *mocks.MockNavigator
	router    *Router
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := fixture{
		launcher:  mocks.NewMockLauncher(ctrl),
		opener:    mocks.NewMockOpener(ctrl),
		navigator: mocks.NewMockNavigator(ctrl),
	}
	f.router = New(f.launcher, f.opener, f.navigator, WithLogger(log.Discard()))
	return f
}

func TestDispatchValidationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name string
		req  protocol.ActionRequest
		want protocol.Result
	}{
		{"application without path", protocol.ActionRequest{Kind: protocol.KindApplication, Title: "Editor"}, protocol.Failure("path required")},
		{"file without path", protocol.ActionRequest{Kind: protocol.KindFile}, protocol.Failure("path required")},
		{"function without action", protocol.ActionRequest{Kind: protocol.KindFunction, Path: "/ignored"}, protocol.Failure("action required")},
		{"unknown kind", protocol.ActionRequest{Kind: "widget", Path: "/x"}, protocol.Failure("unknown kind: widget")},
		{"empty kind", protocol.ActionRequest{}, protocol.Failure("unknown kind: ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t) // no EXPECT: any collaborator call fails the test
			got := f.router.Dispatch(context.Background(), tt.req)
			if got != tt.want {
				t.Fatalf("Dispatch() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDispatchApplication(t *testing.T) {
	f := newFixture(t)
	want := protocol.Failure("Failed to launch app: no such file")
	f.launcher.EXPECT().Launch(gomock.Any(), "/Applications/Editor.app").Return(want)

	got := f.router.Dispatch(context.Background(), protocol.ActionRequest{
		Kind: protocol.KindApplication,
		Path: "/Applications/Editor.app",
	})
	if got != want {
		t.Fatalf("Dispatch() = %+v, want the launcher result unchanged", got)
	}
}

func TestDispatchFile(t *testing.T) {
	f := newFixture(t)
	f.opener.EXPECT().Open(gomock.Any(), "/home/me/notes.txt").Return(protocol.Success("文件已打开"))

	got := f.router.Dispatch(context.Background(), protocol.ActionRequest{
		Kind: protocol.KindFile,
		Path: "/home/me/notes.txt",
	})
	if !got.OK || got.Message != "文件已打开" {
		t.Fatalf("Dispatch() = %+v", got)
	}
}

func TestDispatchFunction(t *testing.T) {
	f := newFixture(t)
	f.navigator.EXPECT().NavigateAction(gomock.Any(), "open-settings").Return(protocol.Success("已打开设置"))

	got := f.router.Dispatch(context.Background(), protocol.ActionRequest{
		Kind:       protocol.KindFunction,
		ActionName: "open-settings",
	})
	if got != protocol.Success("已打开设置") {
		t.Fatalf("Dispatch() = %+v", got)
	}
}

func TestDispatchUnknownFunctionPassesThrough(t *testing.T) {
	f := newFixture(t)
	f.navigator.EXPECT().NavigateAction(gomock.Any(), "open-mars").Return(protocol.Failure("unknown function: open-mars"))

	got := f.router.Dispatch(context.Background(), protocol.ActionRequest{
		Kind:       protocol.KindFunction,
		ActionName: "open-mars",
	})
	if got.OK || got.Message != "unknown function: open-mars" {
		t.Fatalf("Dispatch() = %+v", got)
	}
}
