package replay

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

const DefaultDelay = 250 * time.Millisecond

// Play steps through frames on screen until the last frame is shown and a
// key is pressed, or the user quits with q, Esc or Ctrl-C. Space toggles
// pause; left and right arrows step while paused.
func Play(screen tcell.Screen, frames []Frame, title string, delay time.Duration) {
	if len(frames) == 0 {
		return
	}

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	if delay <= 0 {
		delay = DefaultDelay
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	current := 0
	paused := false
	show := func() {
		Draw(screen, frames[current], title)
		screen.Show()
	}
	show()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
					return
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
					return
				case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
					paused = !paused
				case ev.Key() == tcell.KeyRight && current < len(frames)-1:
					current++
					show()
				case ev.Key() == tcell.KeyLeft && current > 0:
					current--
					show()
				case current == len(frames)-1:
					return
				}
			case *tcell.EventResize:
				screen.Sync()
				show()
			}
		case <-ticker.C:
			if paused || current == len(frames)-1 {
				continue
			}
			current++
			show()
		}
	}
}
