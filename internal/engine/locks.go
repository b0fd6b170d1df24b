package engine

import "sync"

// accountLocks hands out one mutex per account number so operations on the
// same account serialize while unrelated accounts proceed in parallel.
// Mutexes are never removed; the registry grows with the set of touched
// accounts, which is bounded by the account population.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *accountLocks) get(number string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[number]
	if !ok {
		m = &sync.Mutex{}
		l.locks[number] = m
	}
	return m
}

// lock acquires the account's mutex and returns its unlock function.
func (l *accountLocks) lock(number string) func() {
	m := l.get(number)
	m.Lock()
	return m.Unlock
}

// lockPair acquires both accounts' mutexes in lexical order of account number,
// regardless of which side is source or destination, so two opposite-direction
// transfers can never deadlock. The two numbers must differ.
func (l *accountLocks) lockPair(a, b string) func() {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	fm, sm := l.get(first), l.get(second)
	fm.Lock()
	sm.Lock()
	return func() {
		sm.Unlock()
		fm.Unlock()
	}
}
