package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Rotor/internal/domain"
)

type sentMessage struct {
	chatID  int64
	text    string
	buttons []string
}

type struckEdit struct {
	chatID    int64
	messageID int
	text      string
}

// fakeClient — транспорт в памяти; выдаёт возрастающие message_id.
type fakeClient struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentMessage
	struck  []struckEdit
	sendErr error

	struckCh chan struckEdit
}

func newFakeClient() *fakeClient {
	return &fakeClient{nextID: 100, struckCh: make(chan struckEdit, 16)}
}

func (c *fakeClient) Send(ctx context.Context, chatID int64, text string, buttons []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return 0, c.sendErr
	}
	c.nextID++
	c.sent = append(c.sent, sentMessage{chatID: chatID, text: text, buttons: buttons})
	return c.nextID, nil
}

func (c *fakeClient) EditStruck(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := struckEdit{chatID: chatID, messageID: messageID, text: text}
	c.mu.Lock()
	c.struck = append(c.struck, edit)
	c.mu.Unlock()
	c.struckCh <- edit
	return nil
}

func (c *fakeClient) waitStruck(t *testing.T, n int) []struckEdit {
	t.Helper()
	var edits []struckEdit
	for len(edits) < n {
		select {
		case e := <-c.struckCh:
			edits = append(edits, e)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %d expired messages, got %d", n, len(edits))
		}
	}
	return edits
}

// fakeStateStore — StateStore в памяти.
type fakeStateStore struct {
	mu     sync.Mutex
	states map[domain.AccountKey]*domain.MessageState
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[domain.AccountKey]*domain.MessageState)}
}

func (s *fakeStateStore) Get(ctx context.Context, key domain.AccountKey) (*domain.MessageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key], nil
}

func (s *fakeStateStore) Set(ctx context.Context, state *domain.MessageState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.Key()] = state
	return nil
}

var testKey = domain.AccountKey{PanelID: 1, Username: "alice"}

func TestDeliverer_FirstDelivery(t *testing.T) {
	client := newFakeClient()
	store := newFakeStateStore()
	d := NewDeliverer(client, store, nil)

	state, err := d.Deliver(context.Background(), testKey, 42, "hello *world*", []string{"btn"})
	if err != nil {
		t.Fatal(err)
	}

	if len(state.MessageIDs) != 1 {
		t.Fatalf("expected 1 message id, got %v", state.MessageIDs)
	}
	if len(client.sent) != 1 || client.sent[0].chatID != 42 {
		t.Fatalf("unexpected sends: %v", client.sent)
	}
	if len(client.sent[0].buttons) != 1 {
		t.Errorf("buttons not passed: %v", client.sent[0].buttons)
	}

	saved, _ := store.Get(context.Background(), testKey)
	if saved == nil || !saved.SameDelivery(42, state.MessageIDs) {
		t.Error("state not persisted")
	}
	if len(client.struck) != 0 {
		t.Errorf("nothing to expire on first delivery, got %v", client.struck)
	}
}

func TestDeliverer_ButtonsOnlyOnLastPart(t *testing.T) {
	client := newFakeClient()
	store := newFakeStateStore()
	d := NewDeliverer(client, store, nil)
	d.maxPartLen = 20

	text := strings.Repeat("a", 18) + "\n" + strings.Repeat("b", 18)
	state, err := d.Deliver(context.Background(), testKey, 42, text, []string{"btn"})
	if err != nil {
		t.Fatal(err)
	}
	if len(state.MessageIDs) != 2 {
		t.Fatalf("expected 2 parts, got %v", state.MessageIDs)
	}

	if client.sent[0].buttons != nil {
		t.Error("first part should have no buttons")
	}
	if len(client.sent[1].buttons) != 1 {
		t.Error("last part should carry the buttons")
	}
}

func TestDeliverer_ExpiresPreviousDelivery(t *testing.T) {
	client := newFakeClient()
	store := newFakeStateStore()
	d := NewDeliverer(client, store, nil)

	prev := &domain.MessageState{
		PanelID:      testKey.PanelID,
		Username:     testKey.Username,
		ChatID:       42,
		MessageIDs:   []int{7, 8},
		MessageTexts: []string{"*old part one*", "```old part two```"},
	}
	if err := store.Set(context.Background(), prev); err != nil {
		t.Fatal(err)
	}

	if _, err := d.Deliver(context.Background(), testKey, 42, "fresh", nil); err != nil {
		t.Fatal(err)
	}

	edits := client.waitStruck(t, 2)
	for _, e := range edits {
		if e.chatID != 42 {
			t.Errorf("expired in wrong chat: %d", e.chatID)
		}
		if strings.ContainsAny(e.text, "*`") {
			t.Errorf("markdown not stripped: %q", e.text)
		}
	}
}

func TestDeliverer_SameDeliveryNotExpired(t *testing.T) {
	client := newFakeClient()
	store := newFakeStateStore()
	d := NewDeliverer(client, store, nil)

	// Первая доставка определяет message_id.
	state, err := d.Deliver(context.Background(), testKey, 42, "hello", nil)
	if err != nil {
		t.Fatal(err)
	}

	// Подделываем повтор тех же id: фейк выдаёт те же значения,
	// если счётчик откатить.
	client.mu.Lock()
	client.nextID -= len(state.MessageIDs)
	client.mu.Unlock()

	if _, err := d.Deliver(context.Background(), testKey, 42, "hello again", nil); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-client.struckCh:
		t.Fatalf("unchanged delivery should not expire, got %v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDeliverer_EmptyTextAfterFallback(t *testing.T) {
	client := newFakeClient()
	store := newFakeStateStore()
	d := NewDeliverer(client, store, nil)

	prev := &domain.MessageState{
		PanelID:      testKey.PanelID,
		Username:     testKey.Username,
		ChatID:       42,
		MessageIDs:   []int{7},
		MessageTexts: []string{"***"},
	}
	store.Set(context.Background(), prev)

	if _, err := d.Deliver(context.Background(), testKey, 42, "fresh", nil); err != nil {
		t.Fatal(err)
	}

	edits := client.waitStruck(t, 1)
	if edits[0].text != expiredFallbackText {
		t.Errorf("expected fallback text, got %q", edits[0].text)
	}
}

func TestDeliverer_SendFailure(t *testing.T) {
	client := newFakeClient()
	client.sendErr = errors.New("network down")
	store := newFakeStateStore()
	d := NewDeliverer(client, store, nil)

	if _, err := d.Deliver(context.Background(), testKey, 42, "hello", nil); err == nil {
		t.Fatal("expected send error")
	}
	if got, _ := store.Get(context.Background(), testKey); got != nil {
		t.Error("state must not be saved on send failure")
	}
}

func TestDeliverer_WhitespaceOnlyMessage(t *testing.T) {
	d := NewDeliverer(newFakeClient(), newFakeStateStore(), nil)
	d.maxPartLen = 10

	_, err := d.Deliver(context.Background(), testKey, 42, strings.Repeat("\n", 25), nil)
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}
