package main

import (
	"fmt"
	"runtime"

	"github.com/mattjoyce/mira-bridge/internal/bridge"
	"github.com/mattjoyce/mira-bridge/internal/config"
	"github.com/mattjoyce/mira-bridge/internal/devtools"
	"github.com/mattjoyce/mira-bridge/internal/events"
	"github.com/mattjoyce/mira-bridge/internal/history"
	"github.com/mattjoyce/mira-bridge/internal/log"
	"github.com/mattjoyce/mira-bridge/internal/metrics"
	"github.com/mattjoyce/mira-bridge/internal/navigate"
	"github.com/mattjoyce/mira-bridge/internal/opener"
	"github.com/mattjoyce/mira-bridge/internal/platform"
	"github.com/mattjoyce/mira-bridge/internal/process"
	"github.com/mattjoyce/mira-bridge/internal/router"
	"github.com/mattjoyce/mira-bridge/internal/window"
)

// eventBuffer is the replay window of the activity hub.
const eventBuffer = 256

// components is the assembled bridge.
type components struct {
	family   platform.Family
	executor *process.Executor
	remote   *window.Remote
	service  *bridge.Service

	// Set only for the long-running service.
	hub     *events.Hub
	metrics *metrics.Recorder
	history *history.Store
}

// observers are the optional sinks of a long-running service.
type observers struct {
	hub     *events.Hub
	metrics *metrics.Recorder
	history *history.Store
}

// buildComponents wires the platform strategy, executor, window host,
// navigator, router and devtools into a bridge.Service.
func buildComponents(cfg *config.Config, obs observers) (*components, error) {
	family, err := platform.ParseFamily(cfg.Platform.Family, runtime.GOOS)
	if err != nil {
		return nil, err
	}
	policy, err := navigate.ParsePolicy(cfg.Navigation.MissingWindow)
	if err != nil {
		return nil, err
	}

	strategy := platform.New(family, platform.Options{
		Launcher: cfg.Platform.Launcher,
		Opener:   cfg.Platform.Opener,
	})
	executor := process.New(strategy, process.WithLogger(log.WithComponent("process")))
	remote := window.NewRemote(
		window.WithAckTimeout(cfg.Window.AckTimeout),
		window.WithLogger(log.WithComponent("window")),
	)
	navigator := navigate.New(remote,
		navigate.WithPolicy(policy),
		navigate.WithTimeout(cfg.Navigation.Timeout),
		navigate.WithLogger(log.WithComponent("navigate")),
	)
	fileOpener := opener.New(executor)
	rt := router.New(executor, fileOpener, navigator, router.WithLogger(log.WithComponent("router")))
	dev := devtools.New(remote, family, devtools.WithLogger(log.WithComponent("devtools")))

	deps := bridge.Deps{
		Runner:     executor,
		Opener:     fileOpener,
		Dispatcher: rt,
		Devtools:   dev,
	}
	// Interface fields stay nil unless the sink exists.
	if obs.history != nil {
		deps.History = obs.history
	}
	if obs.metrics != nil {
		deps.Metrics = obs.metrics
	}
	if obs.hub != nil {
		deps.Events = obs.hub
	}

	svc := bridge.New(deps,
		bridge.WithTitle(cfg.Window.Title),
		bridge.WithLogger(log.WithComponent("bridge")),
	)
	remote.OnAttach(svc.WindowAttached)
	if obs.metrics != nil {
		obs.metrics.TrackStreams(remote.Streams)
	}

	return &components{
		family:   family,
		executor: executor,
		remote:   remote,
		service:  svc,
		hub:      obs.hub,
		metrics:  obs.metrics,
		history:  obs.history,
	}, nil
}

// baseURL turns a listen address into a client URL.
func baseURL(listen string) string {
	host := listen
	if len(host) > 0 && host[0] == ':' {
		host = "127.0.0.1" + host
	}
	return fmt.Sprintf("http://%s", host)
}
