package panel

import (
	"sync"

	"github.com/shaiso/Rotor/internal/domain"
)

// Registry — кэш клиентов панелей, ключуемый panel_id.
//
// Явный объект вместо глобальной карты: владеет им планировщик
// и передаёт туда, где нужен клиент. Клиент пересоздаётся, если
// изменились реквизиты панели.
type Registry struct {
	mu      sync.Mutex
	clients map[int64]*cachedClient
}

type cachedClient struct {
	client *Client

	// Снимок реквизитов, по которым клиент был создан.
	baseURL  string
	username string
	password string
	verify   bool
}

// NewRegistry создаёт пустой реестр клиентов.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[int64]*cachedClient)}
}

// ClientFor возвращает клиент для панели, создавая или пересоздавая
// его при необходимости.
func (r *Registry) ClientFor(p *domain.Panel) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.clients[p.ID]; ok {
		if cached.baseURL == p.BaseURL &&
			cached.username == p.AdminUsername &&
			cached.password == p.AdminPassword &&
			cached.verify == p.VerifySSL {
			return cached.client, nil
		}
		delete(r.clients, p.ID)
	}

	client, err := NewClient(Config{
		BaseURL:            p.BaseURL,
		Username:           p.AdminUsername,
		Password:           p.AdminPassword,
		InsecureSkipVerify: !p.VerifySSL,
	})
	if err != nil {
		return nil, err
	}

	r.clients[p.ID] = &cachedClient{
		client:   client,
		baseURL:  p.BaseURL,
		username: p.AdminUsername,
		password: p.AdminPassword,
		verify:   p.VerifySSL,
	}
	return client, nil
}

// Invalidate сбрасывает кэшированный клиент панели.
func (r *Registry) Invalidate(panelID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, panelID)
}
