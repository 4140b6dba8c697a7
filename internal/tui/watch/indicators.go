package watch

import (
	"strings"
	"time"
)

// Ticker alternates on every UI tick so a frozen view is visible.
type Ticker struct {
	frame bool
}

func NewTicker() Ticker { return Ticker{} }

func (t *Ticker) Tick() { t.frame = !t.frame }

func (t Ticker) Current() string {
	if t.frame {
		return "⟳"
	}
	return "⟲"
}

const spinnerDots = 5

// Spinner lights up on each call and loses a dot every two seconds.
type Spinner struct {
	lastEvent time.Time
	now       func() time.Time
}

func NewSpinner() Spinner {
	return Spinner{now: time.Now}
}

func (s *Spinner) OnEvent() {
	s.lastEvent = s.now()
}

// Dots returns how many dots are lit.
func (s Spinner) Dots() int {
	if s.lastEvent.IsZero() {
		return 0
	}
	lit := spinnerDots - int(s.now().Sub(s.lastEvent)/(2*time.Second))
	if lit < 0 {
		return 0
	}
	return lit
}

func (s Spinner) Render(theme Theme) string {
	lit := s.Dots()
	var b strings.Builder
	for i := range spinnerDots {
		if i < lit {
			b.WriteString(theme.TickerActive.Render("●"))
		} else {
			b.WriteString(theme.TickerInactive.Render("○"))
		}
	}
	return b.String()
}

func (s Spinner) LastEvent() time.Time {
	return s.lastEvent
}
