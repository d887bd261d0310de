package scheduler

import (
	"sync"
	"testing"

	"github.com/shaiso/Rotor/internal/domain"
)

func TestClaims_AcquireRelease(t *testing.T) {
	claims := NewClaims()
	key := domain.AccountKey{PanelID: 1, Username: "alice"}

	if !claims.TryAcquire(key) {
		t.Fatal("first acquire should succeed")
	}
	if claims.TryAcquire(key) {
		t.Fatal("second acquire of a held claim should fail")
	}
	if claims.Len() != 1 {
		t.Errorf("Len = %d, want 1", claims.Len())
	}

	claims.Release(key)
	if claims.Len() != 0 {
		t.Errorf("Len after release = %d, want 0", claims.Len())
	}
	if !claims.TryAcquire(key) {
		t.Error("acquire after release should succeed")
	}
}

func TestClaims_IndependentKeys(t *testing.T) {
	claims := NewClaims()

	a := domain.AccountKey{PanelID: 1, Username: "alice"}
	b := domain.AccountKey{PanelID: 1, Username: "bob"}
	c := domain.AccountKey{PanelID: 2, Username: "alice"}

	if !claims.TryAcquire(a) || !claims.TryAcquire(b) || !claims.TryAcquire(c) {
		t.Fatal("keys with different panel/username must not collide")
	}
}

func TestClaims_ConcurrentSingleWinner(t *testing.T) {
	claims := NewClaims()
	key := domain.AccountKey{PanelID: 1, Username: "alice"}

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if claims.TryAcquire(key) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want 1", winners)
	}
}
