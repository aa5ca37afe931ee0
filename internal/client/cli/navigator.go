package cli

import (
	"sync"

	"github.com/dmitrijs2005/siteaccounts/internal/account"
)

// navigator holds the current REPL page. Navigate may be called from timer
// goroutines (the delayed redirect after sign-in).
type navigator struct {
	mu      sync.Mutex
	page    account.Page
	onEnter map[account.Page]func()
}

func newNavigator(start account.Page) *navigator {
	return &navigator{page: start, onEnter: make(map[account.Page]func())}
}

func (n *navigator) Navigate(p account.Page) {
	n.mu.Lock()
	n.page = p
	hook := n.onEnter[p]
	n.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (n *navigator) Page() account.Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.page
}

// OnEnter registers f to run every time p is navigated to.
func (n *navigator) OnEnter(p account.Page, f func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onEnter[p] = f
}
