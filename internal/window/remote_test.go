package window

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/mira-bridge/internal/log"
)

func newTestRemote(opts ...RemoteOption) *Remote {
	return NewRemote(append([]RemoteOption{WithLogger(log.Discard())}, opts...)...)
}

func recv(t *testing.T, ch <-chan Command) Command {
	t.Helper()
	select {
	case cmd := <-ch:
		return cmd
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for command")
		return Command{}
	}
}

func TestRemote_NoStreamNoWindow(t *testing.T) {
	r := newTestRemote()

	w, ok := r.MainWindow()
	assert.False(t, ok)
	assert.Nil(t, w)
	assert.Equal(t, 0, r.Streams())
}

func TestRemote_FireAndForget(t *testing.T) {
	r := newTestRemote()
	ch, detach := r.Attach()
	defer detach()

	w, ok := r.MainWindow()
	require.True(t, ok)

	require.NoError(t, w.Eval(context.Background(), "window.location.hash = '#/settings'"))
	cmd := recv(t, ch)
	assert.Equal(t, OpEval, cmd.Op)
	assert.False(t, cmd.Ack)
	assert.NotEmpty(t, cmd.ID)
	assert.Equal(t, "window.location.hash = '#/settings'", cmd.Args["script"])

	require.NoError(t, w.RegisterShortcut(context.Background(), "F12", "open_devtools"))
	cmd = recv(t, ch)
	assert.Equal(t, OpRegisterShortcut, cmd.Op)
	assert.Equal(t, "F12", cmd.Args["accelerator"])
}

func TestRemote_AckSuccessAndFailure(t *testing.T) {
	r := newTestRemote(WithAckTimeout(2 * time.Second))
	ch, detach := r.Attach()
	defer detach()
	w, ok := r.MainWindow()
	require.True(t, ok)

	go func() {
		cmd := <-ch
		_ = r.Ack(cmd.ID, Ack{OK: true})
		cmd = <-ch
		_ = r.Ack(cmd.ID, Ack{OK: false, Error: "webview gone"})
	}()

	assert.NoError(t, w.Show(context.Background()))
	err := w.SetFocus(context.Background())
	require.Error(t, err)
	assert.Equal(t, "webview gone", err.Error())
}

func TestRemote_AckTimeout(t *testing.T) {
	r := newTestRemote(WithAckTimeout(20 * time.Millisecond))
	_, detach := r.Attach()
	defer detach()
	w, _ := r.MainWindow()

	assert.ErrorIs(t, w.Show(context.Background()), ErrAckTimeout)
}

func TestRemote_ContextDeadline(t *testing.T) {
	r := newTestRemote(WithAckTimeout(time.Minute))
	_, detach := r.Attach()
	defer detach()
	w, _ := r.MainWindow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Show(ctx), context.DeadlineExceeded)
}

func TestRemote_StaleAfterDetach(t *testing.T) {
	r := newTestRemote()
	_, detach := r.Attach()
	w, ok := r.MainWindow()
	require.True(t, ok)

	detach()
	assert.ErrorIs(t, w.Show(context.Background()), ErrStale)

	_, detach2 := r.Attach()
	defer detach2()
	assert.ErrorIs(t, w.Show(context.Background()), ErrStale, "old handle stays stale")

	fresh, ok := r.MainWindow()
	require.True(t, ok)
	assert.NoError(t, fresh.Show(context.Background()))
}

func TestRemote_DetachFailsPendingCommands(t *testing.T) {
	r := newTestRemote(WithAckTimeout(time.Minute))
	ch, detach := r.Attach()
	w, _ := r.MainWindow()

	go func() {
		<-ch
		detach()
	}()

	assert.ErrorIs(t, w.Show(context.Background()), ErrStale)
}

func TestRemote_AckUnknown(t *testing.T) {
	r := newTestRemote()
	assert.ErrorIs(t, r.Ack("nope", Ack{OK: true}), ErrUnknownCommand)
}

func TestRemote_OnAttachRunsOncePerGeneration(t *testing.T) {
	r := newTestRemote()
	calls := make(chan Window, 4)
	r.OnAttach(func(ctx context.Context, w Window) {
		calls <- w
	})

	ch1, detach1 := r.Attach()
	_, detach2 := r.Attach()

	var w Window
	select {
	case w = <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("attach hook not called")
	}
	require.NoError(t, w.SetTitle(context.Background(), "Mira Launcher"))
	cmd := recv(t, ch1)
	assert.Equal(t, OpSetTitle, cmd.Op)
	assert.Equal(t, "Mira Launcher", cmd.Args["title"])

	detach2()
	select {
	case <-calls:
		t.Fatal("second stream must not re-run the hook")
	case <-time.After(50 * time.Millisecond):
	}

	detach1()
	detach1()
	assert.Equal(t, 0, r.Streams())
}

func TestEventType(t *testing.T) {
	assert.Equal(t, "window.set_focus", EventType(OpSetFocus))
}
