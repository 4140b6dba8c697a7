package devtools

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/platform"
	"github.com/mattjoyce/mira-bridge/internal/protocol"
	"github.com/mattjoyce/mira-bridge/internal/window/mocks"
)

func TestAccelerator(t *testing.T) {
	assert.Equal(t, "Cmd+Alt+I", Accelerator(platform.Darwin))
	assert.Equal(t, "F12", Accelerator(platform.Windows))
	assert.Equal(t, "F12", Accelerator(platform.Linux))
}

func TestOpen_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)

	c := New(host, platform.Linux, WithEnabled(false), WithLogger(log.Discard()))
	assert.Equal(t, protocol.Failure("開發者工具僅在調試模式下可用"), c.Open(context.Background()))
}

func TestOpen_Enabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	win := mocks.NewMockWindow(ctrl)
	host.EXPECT().MainWindow().Return(win, true)
	win.EXPECT().OpenDevtools(gomock.Any()).Return(nil)

	c := New(host, platform.Linux, WithEnabled(true), WithLogger(log.Discard()))
	assert.Equal(t, protocol.Success(OpenedMessage), c.Open(context.Background()))
}

func TestOpen_NoWindowOrError(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	win := mocks.NewMockWindow(ctrl)
	c := New(host, platform.Linux, WithEnabled(true), WithLogger(log.Discard()))

	host.EXPECT().MainWindow().Return(nil, false)
	assert.Equal(t, protocol.Failure("main window not available"), c.Open(context.Background()))

	host.EXPECT().MainWindow().Return(win, true)
	win.EXPECT().OpenDevtools(gomock.Any()).Return(errors.New("window handle is stale"))
	assert.Equal(t, protocol.Failure("window handle is stale"), c.Open(context.Background()))
}

func TestRegisterShortcut(t *testing.T) {
	ctrl := gomock.NewController(t)
	win := mocks.NewMockWindow(ctrl)

	release := New(nil, platform.Darwin, WithEnabled(false), WithLogger(log.Discard()))
	assert.NoError(t, release.RegisterShortcut(context.Background(), win))

	win.EXPECT().RegisterShortcut(gomock.Any(), "Cmd+Alt+I", ShortcutAction).Return(nil)
	debug := New(nil, platform.Darwin, WithEnabled(true), WithLogger(log.Discard()))
	assert.NoError(t, debug.RegisterShortcut(context.Background(), win))
}
