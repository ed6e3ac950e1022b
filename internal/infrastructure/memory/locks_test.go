package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocker_ExclusionPorClave(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	require.NoError(t, l.Lock(ctx, "a"))
	// otra clave no espera
	require.NoError(t, l.Lock(ctx, "b"))

	acquired := make(chan struct{})
	go func() {
		_ = l.Lock(ctx, "a")
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("la clave a se obtuvo dos veces")
	case <-time.After(50 * time.Millisecond):
	}

	l.Unlock("a")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("el segundo Lock no despertó")
	}
	l.Unlock("a")
	l.Unlock("b")
}

func TestKeyedLocker_RespetaContexto(t *testing.T) {
	l := NewKeyedLocker()
	require.NoError(t, l.Lock(context.Background(), "k"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	l.Unlock("k")
	assert.NoError(t, l.Lock(context.Background(), "k"))
}

func TestKeyedLocker_Contador(t *testing.T) {
	l := NewKeyedLocker()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Lock(context.Background(), "c")
			counter++
			l.Unlock("c")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
