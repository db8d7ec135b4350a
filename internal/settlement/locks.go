package settlement

import "sync"

// KeyedLocker is a set of non-blocking locks addressed by string key.
// The zero value is ready to use.
type KeyedLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// TryLock takes the lock for key. It returns false without waiting if the
// key is already held; otherwise the returned func releases it.
func (l *KeyedLocker) TryLock(key string) (unlock func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held == nil {
		l.held = make(map[string]struct{})
	}
	if _, busy := l.held[key]; busy {
		return nil, false
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true
}

// Held reports whether key is currently locked.
func (l *KeyedLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

func settleKey(groupID, userID string) string {
	return groupID + "/" + userID
}
