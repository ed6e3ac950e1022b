package memory

import (
	"context"
	"sync"
)

// KeyedLocker exclusión mutua por clave. La espera respeta el contexto del caller.
type KeyedLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewKeyedLocker crea un locker vacío.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{held: make(map[string]chan struct{})}
}

// Lock bloquea hasta obtener la clave o hasta que ctx termine (devuelve ctx.Err()).
func (l *KeyedLocker) Lock(ctx context.Context, key string) error {
	for {
		l.mu.Lock()
		wait, busy := l.held[key]
		if !busy {
			l.held[key] = make(chan struct{})
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Unlock libera la clave y despierta a quienes la esperan. Liberar una clave libre no hace nada.
func (l *KeyedLocker) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ch, ok := l.held[key]; ok {
		delete(l.held, key)
		close(ch)
	}
}
