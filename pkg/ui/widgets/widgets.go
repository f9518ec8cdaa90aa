// Package widgets provides the widgets the database client is built from.
// Each embeds runtime.Node; the ones that exchange data with the bus
// implement translate.Composer or translate.Decomposer and get a
// translate.Translator from the caller.
package widgets

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
)

// Navigation is appended to every usage line.
const Navigation = "Tab:Next, Shift+Tab:Previous, Esc:Back"

// announce publishes usage for the status line.
func announce(n *runtime.Node, usage string) {
	status := Navigation
	if usage != "" {
		status = usage + " | " + Navigation
	}
	n.Emit(signal.UIUpdateStatus, signal.F("status", status))
}

func width(s string) int {
	return runewidth.StringWidth(s)
}

func hint(n *runtime.Node) rune {
	if k, ok := n.Trigger(); ok && k.Key == terminal.KeyRune {
		return k.Rune
	}
	return 0
}

func isEnter(ev terminal.KeyEvent) bool {
	return ev.Key == terminal.KeyEnter
}

func isErase(ev terminal.KeyEvent) bool {
	return ev.Key == terminal.KeyBackspace || ev.Key == terminal.KeyDelete
}

// wrap moves i by delta inside [0, n), wrapping at both ends.
func wrap(i, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

// follow returns the scroll offset that keeps index visible in a window of
// size rows.
func follow(scroll, index, rows int) int {
	if rows <= 0 {
		return index
	}
	if index < scroll {
		return index
	}
	if index >= scroll+rows {
		return index - rows + 1
	}
	return scroll
}

func isDescendant(w, ancestor runtime.Widget) bool {
	for p := w.Base().Parent(); p != nil; p = p.Base().Parent() {
		if p.Base() == ancestor.Base() {
			return true
		}
	}
	return false
}
