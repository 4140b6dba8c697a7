package platform

import "path/filepath"

// unixStrategy invokes programs directly. Applications are launched with
// open(1) on every unix family; only the default-handler utility differs
// between Apple and the rest.
type unixStrategy struct {
	family   Family
	launcher string
	opener   string
}

func newDarwin(opts Options) *unixStrategy {
	return &unixStrategy{
		family:   Darwin,
		launcher: orDefault(opts.Launcher, "open"),
		opener:   orDefault(opts.Opener, "open"),
	}
}

func newLinux(opts Options) *unixStrategy {
	return &unixStrategy{
		family:   Linux,
		launcher: orDefault(opts.Launcher, "open"),
		opener:   orDefault(opts.Opener, "xdg-open"),
	}
}

func (s *unixStrategy) Family() Family { return s.family }

func (s *unixStrategy) Command(program string, args []string) Invocation {
	return Invocation{Name: program, Args: append([]string(nil), args...)}
}

func (s *unixStrategy) Launch(path string) Invocation {
	return Invocation{Name: s.launcher, Args: []string{path}}
}

func (s *unixStrategy) Open(path string) Invocation {
	return Invocation{Name: s.opener, Args: []string{path}}
}

// Reveal uses "open -R" on Apple. Elsewhere there is no portable select
// flag, so the containing directory is opened.
func (s *unixStrategy) Reveal(path string) Invocation {
	if s.family == Darwin {
		return Invocation{Name: s.opener, Args: []string{"-R", path}}
	}
	return Invocation{Name: s.opener, Args: []string{filepath.Dir(path)}}
}
