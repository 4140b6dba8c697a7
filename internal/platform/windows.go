package platform

import "strings"

const (
	shellInterpreter = "cmd"
	processLauncher  = "powershell"
)

// windowsStrategy routes everything through cmd /C. Inputs that are already
// "cmd /C start <target>" are rewritten to Start-Process, because start treats
// the first quoted argument as a window title.
type windowsStrategy struct {
	launcher string
	opener   string
}

func newWindows(opts Options) *windowsStrategy {
	return &windowsStrategy{launcher: opts.Launcher, opener: opts.Opener}
}

func (s *windowsStrategy) Family() Family { return Windows }

func (s *windowsStrategy) Command(program string, args []string) Invocation {
	tokens := append([]string{program}, args...)
	if inv, ok := rewriteStart(tokens); ok {
		return inv
	}
	return Invocation{Name: shellInterpreter, Args: append([]string{"/C"}, tokens...)}
}

func (s *windowsStrategy) Launch(path string) Invocation {
	if s.launcher != "" {
		return Invocation{Name: s.launcher, Args: []string{path}}
	}
	return startInvocation(path)
}

func (s *windowsStrategy) Open(path string) Invocation {
	if s.opener != "" {
		return Invocation{Name: s.opener, Args: []string{path}}
	}
	return startInvocation(path)
}

// Reveal selects path in Explorer. Explorer exits 1 even when it succeeds.
func (s *windowsStrategy) Reveal(path string) Invocation {
	return Invocation{Name: "explorer", Args: []string{"/select," + path}}
}

// startInvocation passes an empty title so a quoted path is never taken as one.
func startInvocation(path string) Invocation {
	return Invocation{Name: shellInterpreter, Args: []string{"/C", "start", "", path}}
}

// rewriteStart recognizes [cmd, /C, start, target, args...] and turns it into
// a Start-Process call. The target is the 4th token with wrapping quotes
// removed; an empty title placeholder in that slot shifts it one to the right.
func rewriteStart(tokens []string) (Invocation, bool) {
	if len(tokens) < 4 || !isInterpreter(tokens[0]) ||
		!strings.EqualFold(tokens[1], "/C") || !strings.EqualFold(tokens[2], "start") {
		return Invocation{}, false
	}

	rest := tokens[3:]
	target := stripQuotes(rest[0])
	if target == "" && len(rest) > 1 {
		rest = rest[1:]
		target = stripQuotes(rest[0])
	}
	if target == "" {
		return Invocation{}, false
	}

	script := "Start-Process -FilePath " + psQuote(target)
	if extra := rest[1:]; len(extra) > 0 {
		quoted := make([]string, 0, len(extra))
		for _, a := range extra {
			quoted = append(quoted, psQuote(stripQuotes(a)))
		}
		script += " -ArgumentList " + strings.Join(quoted, ",")
	}

	return Invocation{
		Name: processLauncher,
		Args: []string{"-NoProfile", "-NonInteractive", "-Command", script},
	}, true
}

func isInterpreter(token string) bool {
	t := strings.ToLower(stripQuotes(token))
	return t == "cmd" || t == "cmd.exe" || strings.HasSuffix(t, `\cmd.exe`)
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// psQuote wraps s in a PowerShell single-quoted literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
