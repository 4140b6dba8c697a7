// Package platform picks how the bridge talks to the host OS.
//
// Each OS family gets one Strategy. A Strategy only builds invocations
// (program + argv); running them is the process package's job, so the
// spawn/capture/classify logic exists once for every family.
package platform

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Family identifies an OS family with distinct launch semantics.
type Family string

const (
	Windows Family = "windows"
	Darwin  Family = "darwin"
	Linux   Family = "linux"
)

// Invocation is a fully resolved program and argument vector.
type Invocation struct {
	Name string
	Args []string
}

func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Name
	}
	return i.Name + " " + strings.Join(i.Args, " ")
}

// Strategy builds OS-specific invocations.
type Strategy interface {
	Family() Family
	// Command wraps an arbitrary program + args the way the family expects.
	Command(program string, args []string) Invocation
	// Launch starts an application given its path.
	Launch(path string) Invocation
	// Open hands a path to the OS default handler.
	Open(path string) Invocation
	// Reveal shows path in the file manager.
	Reveal(path string) Invocation
}

// Options overrides the utilities a strategy uses.
type Options struct {
	// Launcher replaces the application launch utility (e.g. "open", "xdg-open").
	Launcher string
	// Opener replaces the default-handler utility.
	Opener string
}

// ParseFamily maps a config value to a Family. Empty and "auto" map to the
// family of goos.
func ParseFamily(value, goos string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return FamilyOf(goos), nil
	case "windows":
		return Windows, nil
	case "darwin", "macos":
		return Darwin, nil
	case "linux":
		return Linux, nil
	default:
		return "", fmt.Errorf("unknown platform family %q (want auto, windows, darwin or linux)", value)
	}
}

// FamilyOf maps a GOOS value to its family. Non-Apple unixes use Linux semantics.
func FamilyOf(goos string) Family {
	switch goos {
	case "windows":
		return Windows
	case "darwin", "ios":
		return Darwin
	default:
		return Linux
	}
}

// New returns the Strategy for family.
func New(family Family, opts Options) Strategy {
	switch family {
	case Windows:
		return newWindows(opts)
	case Darwin:
		return newDarwin(opts)
	default:
		return newLinux(opts)
	}
}

// Detect returns the Strategy for a GOOS value.
func Detect(goos string, opts Options) Strategy {
	return New(FamilyOf(goos), opts)
}

var (
	currentOnce sync.Once
	current     Strategy
)

// Current returns the default Strategy for the running OS, chosen once.
func Current() Strategy {
	currentOnce.Do(func() {
		current = Detect(runtime.GOOS, Options{})
	})
	return current
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
