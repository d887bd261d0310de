package scheduler

import (
	"sync"

	"github.com/shaiso/Rotor/internal/domain"
)

// Claims — реестр эксклюзивных claim'ов по ключу аккаунта.
//
// Явный объект вместо амбиентной глобальной карты локов: им владеет
// Scheduler и передаёт туда, где нужна взаимная исключительность.
// Захват неблокирующий: если claim уже удержан, запуск пропускается
// до следующего опроса (очереди нет — next_due не сдвинулся, запись
// попадёт в следующую выборку).
type Claims struct {
	mu   sync.Mutex
	held map[domain.AccountKey]bool
}

// NewClaims создаёт пустой реестр.
func NewClaims() *Claims {
	return &Claims{held: make(map[domain.AccountKey]bool)}
}

// TryAcquire пытается захватить claim. Возвращает false, если claim
// уже удержан другим запуском.
func (c *Claims) TryAcquire(key domain.AccountKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held[key] {
		return false
	}
	c.held[key] = true
	return true
}

// Release отпускает claim.
func (c *Claims) Release(key domain.AccountKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, key)
}

// Len возвращает число удерживаемых claim'ов.
func (c *Claims) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.held)
}
