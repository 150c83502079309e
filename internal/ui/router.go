package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Router forwards controller notifications and navigation requests into a
// running program. It is created before the controllers so it can be handed
// to them as their Navigator, and is attached to the program by Run.
type Router struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewRouter returns a detached router. Messages sent while detached are
// dropped.
func NewRouter() *Router {
	return &Router{}
}

// Navigate implements basket.Navigator.
func (r *Router) Navigate(route string) {
	r.send(navigateMsg(route))
}

// Notify tells the program that controller state changed.
func (r *Router) Notify() {
	r.send(changedMsg{})
}

func (r *Router) attach(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

func (r *Router) detach() {
	r.attach(nil)
}

// send never blocks the caller; controllers notify while holding their cycle
// lock.
func (r *Router) send(msg tea.Msg) {
	if r == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p == nil {
		return
	}
	go p.Send(msg)
}
