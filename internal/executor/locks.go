package executor

import "sync"

// walletLocks serializes operations per wallet. A second operation for
// the same wallet blocks until the first settles; different wallets
// proceed in parallel. Entries are reference counted and removed once
// no holder or waiter remains, so the map never grows with the number
// of wallets ever seen.
type walletLocks struct {
	mu    sync.Mutex
	locks map[string]*walletLock
}

type walletLock struct {
	mu   sync.Mutex
	refs int
}

func newWalletLocks() *walletLocks {
	return &walletLocks{locks: make(map[string]*walletLock)}
}

func (w *walletLocks) lock(wallet string) func() {
	w.mu.Lock()
	l, ok := w.locks[wallet]
	if !ok {
		l = &walletLock{}
		w.locks[wallet] = l
	}
	l.refs++
	w.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		w.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(w.locks, wallet)
		}
		w.mu.Unlock()
	}
}
