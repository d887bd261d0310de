package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Rotor/internal/domain"
	"github.com/shaiso/Rotor/internal/link"
	"github.com/shaiso/Rotor/internal/panel"
	"github.com/shaiso/Rotor/internal/repo"
)

// --- Фейки хранилищ ---

type markCall struct {
	key       domain.AccountKey
	nextDue   time.Time
	lastRun   time.Time
	lastError string
}

type fakeScheduleStore struct {
	mu    sync.Mutex
	due   []domain.Schedule
	marks []markCall
}

func (s *fakeScheduleStore) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.due
	s.due = nil
	return out, nil
}

func (s *fakeScheduleStore) MarkResult(ctx context.Context, key domain.AccountKey, nextDue, lastRun time.Time, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = append(s.marks, markCall{key: key, nextDue: nextDue, lastRun: lastRun, lastError: lastError})
	return nil
}

func (s *fakeScheduleStore) lastMark(t *testing.T) markCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.marks) == 0 {
		t.Fatal("MarkResult was not called")
	}
	return s.marks[len(s.marks)-1]
}

type fakeSelectionStore struct {
	mu  sync.Mutex
	sel *domain.Selection
	set []*domain.Selection
}

func (s *fakeSelectionStore) Get(ctx context.Context, key domain.AccountKey) (*domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel == nil {
		return nil, repo.ErrNotFound
	}
	copied := *s.sel
	return &copied, nil
}

func (s *fakeSelectionStore) Set(ctx context.Context, sel *domain.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sel
	s.sel = &copied
	s.set = append(s.set, &copied)
	return nil
}

type fakePanelStore struct {
	panels map[int64]*domain.Panel
}

func (s *fakePanelStore) GetByID(ctx context.Context, id int64) (*domain.Panel, error) {
	p, ok := s.panels[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return p, nil
}

type fakeBindingStore struct {
	bindings map[domain.AccountKey]*domain.Binding
}

func (s *fakeBindingStore) Get(ctx context.Context, key domain.AccountKey) (*domain.Binding, error) {
	b, ok := s.bindings[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return b, nil
}

// --- Фейк клиента панели ---

type fakePanelClient struct {
	mu        sync.Mutex
	preUser   *panel.User
	postUser  *panel.User
	usage     *panel.Usage
	revokeErr error
	revoked   int
}

func (c *fakePanelClient) GetUser(ctx context.Context, username string) (*panel.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preUser, nil
}

func (c *fakePanelClient) RevokeSubscription(ctx context.Context, username string) (*panel.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revokeErr != nil {
		return nil, c.revokeErr
	}
	c.revoked++
	return c.postUser, nil
}

func (c *fakePanelClient) GetUserUsage(ctx context.Context, username string) (*panel.Usage, error) {
	usage := c.usage
	if usage == nil {
		usage = &panel.Usage{Username: username}
	}
	return usage, nil
}

func (c *fakePanelClient) FetchSubscription(ctx context.Context, subURL string) (string, error) {
	return "", nil
}

func (c *fakePanelClient) revokedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revoked
}

type fakeClientProvider struct {
	client *fakePanelClient
}

func (p fakeClientProvider) ClientFor(_ *domain.Panel) (PanelClient, error) {
	return p.client, nil
}

// --- Фейк доставки ---

type deliverCall struct {
	key     domain.AccountKey
	chatID  int64
	text    string
	buttons []string
}

type fakeDeliverer struct {
	mu    sync.Mutex
	calls []deliverCall
	err   error
}

func (d *fakeDeliverer) Deliver(ctx context.Context, key domain.AccountKey, chatID int64, text string, buttons []string) (*domain.MessageState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	d.calls = append(d.calls, deliverCall{key: key, chatID: chatID, text: text, buttons: buttons})
	return &domain.MessageState{
		PanelID:    key.PanelID,
		Username:   key.Username,
		ChatID:     chatID,
		MessageIDs: []int{len(d.calls)},
	}, nil
}

func (d *fakeDeliverer) lastCall(t *testing.T) deliverCall {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		t.Fatal("Deliver was not called")
	}
	return d.calls[len(d.calls)-1]
}

// --- Сборка тестового окружения ---

type env struct {
	schedules  *fakeScheduleStore
	selections *fakeSelectionStore
	panels     *fakePanelStore
	bindings   *fakeBindingStore
	client     *fakePanelClient
	deliverer  *fakeDeliverer
	sched      *Scheduler
}

func newEnv() *env {
	chat := int64(4242)
	e := &env{
		schedules:  &fakeScheduleStore{},
		selections: &fakeSelectionStore{},
		panels: &fakePanelStore{panels: map[int64]*domain.Panel{
			1: {ID: 1, Name: "main", DefaultChatID: &chat},
		}},
		bindings: &fakeBindingStore{bindings: map[domain.AccountKey]*domain.Binding{}},
		client: &fakePanelClient{
			preUser:  &panel.User{Username: "alice", Links: []string{"vless://u@h:443?type=ws#tag"}},
			postUser: &panel.User{Username: "alice", Links: []string{"vless://u@h:443?type=ws#tag"}},
		},
		deliverer: &fakeDeliverer{},
	}
	e.sched = New(Config{
		Schedules:  e.schedules,
		Selections: e.selections,
		Panels:     e.panels,
		Bindings:   e.bindings,
		Clients:    fakeClientProvider{client: e.client},
		Deliverer:  e.deliverer,
		Timezone:   "UTC",
	})
	return e
}

func dueSchedule(intervalMinutes int) domain.Schedule {
	now := time.Now().UTC()
	return domain.Schedule{
		PanelID:         1,
		Username:        "alice",
		IntervalMinutes: intervalMinutes,
		Timezone:        "UTC",
		Enabled:         true,
		NextDueAt:       &now,
	}
}

func runTick(t *testing.T, e *env) {
	t.Helper()
	if err := e.sched.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	e.sched.Wait()
}

// --- Тесты ---

func TestTick_SuccessfulRotation(t *testing.T) {
	e := newEnv()
	e.schedules.due = []domain.Schedule{dueSchedule(60)}

	runTick(t, e)

	if got := e.client.revokedCount(); got != 1 {
		t.Fatalf("revoke count = %d, want 1", got)
	}

	call := e.deliverer.lastCall(t)
	if call.chatID != 4242 {
		t.Errorf("delivered to chat %d, want panel default 4242", call.chatID)
	}
	if !strings.Contains(call.text, "alice") {
		t.Errorf("message does not mention the account: %q", call.text)
	}

	mark := e.schedules.lastMark(t)
	if mark.lastError != "" {
		t.Fatalf("unexpected error mark: %q", mark.lastError)
	}
	gap := mark.nextDue.Sub(mark.lastRun)
	if gap < 59*time.Minute || gap > 61*time.Minute {
		t.Errorf("next due gap = %v, want ~1h", gap)
	}

	if e.sched.claims.Len() != 0 {
		t.Error("claim not released after run")
	}
}

func TestTick_NoChatTargetIsConfigError(t *testing.T) {
	e := newEnv()
	e.panels.panels[1].DefaultChatID = nil
	e.schedules.due = []domain.Schedule{dueSchedule(60)}

	runTick(t, e)

	if got := e.client.revokedCount(); got != 0 {
		t.Fatal("rotation must not happen without a delivery target")
	}

	mark := e.schedules.lastMark(t)
	if !strings.Contains(mark.lastError, "chat") {
		t.Errorf("last error = %q", mark.lastError)
	}
	gap := mark.nextDue.Sub(mark.lastRun)
	if gap < ConfigBackoff-time.Minute || gap > ConfigBackoff+time.Minute {
		t.Errorf("config error backoff = %v, want ~%v", gap, ConfigBackoff)
	}
}

func TestTick_BindingOverridesPanelChat(t *testing.T) {
	e := newEnv()
	key := domain.AccountKey{PanelID: 1, Username: "alice"}
	e.bindings.bindings[key] = &domain.Binding{PanelID: 1, Username: "alice", ChatID: 777}
	e.schedules.due = []domain.Schedule{dueSchedule(60)}

	runTick(t, e)

	if call := e.deliverer.lastCall(t); call.chatID != 777 {
		t.Errorf("delivered to chat %d, want bound 777", call.chatID)
	}
}

func TestTick_TransientFailureBackoff(t *testing.T) {
	e := newEnv()
	e.client.revokeErr = errors.New("panel down")
	e.schedules.due = []domain.Schedule{dueSchedule(60)}

	runTick(t, e)

	mark := e.schedules.lastMark(t)
	if !strings.Contains(mark.lastError, "panel down") {
		t.Errorf("last error = %q", mark.lastError)
	}
	gap := mark.nextDue.Sub(mark.lastRun)
	if gap < TransientBackoff-time.Minute || gap > TransientBackoff+time.Minute {
		t.Errorf("transient backoff = %v, want ~%v", gap, TransientBackoff)
	}

	e.deliverer.mu.Lock()
	defer e.deliverer.mu.Unlock()
	if len(e.deliverer.calls) != 0 {
		t.Error("nothing must be delivered on rotation failure")
	}
}

func TestTick_HeldClaimSkipsRecord(t *testing.T) {
	e := newEnv()
	key := domain.AccountKey{PanelID: 1, Username: "alice"}
	e.sched.claims.TryAcquire(key)
	e.schedules.due = []domain.Schedule{dueSchedule(60)}

	runTick(t, e)

	e.schedules.mu.Lock()
	marks := len(e.schedules.marks)
	e.schedules.mu.Unlock()
	if marks != 0 {
		t.Error("held claim must skip the record entirely")
	}
	if got := e.client.revokedCount(); got != 0 {
		t.Error("held claim must prevent rotation")
	}
}

func TestTick_SelectionMigratedBeforeRotation(t *testing.T) {
	e := newEnv()

	// Одна и та же ссылка до и после ротации, но панель подменяет sni.
	pre := "vless://u@h:443?type=ws&path=%2Fws&sni=one.example#tag"
	post := "vless://u@h:443?type=ws&path=%2Fws&sni=two.example#tag"
	other := "trojan://u@other:443#second"
	e.client.preUser = &panel.User{Username: "alice", Links: []string{pre, other}}
	e.client.postUser = &panel.User{Username: "alice", Links: []string{post, other}}

	preItems := link.BuildItems([]string{pre, other})
	// Оператор когда-то сохранил compat-ключ первой ссылки.
	e.selections.sel = &domain.Selection{
		PanelID:          1,
		Username:         "alice",
		SelectedLinkKeys: []string{preItems[0].CompatKey},
	}

	e.schedules.due = []domain.Schedule{dueSchedule(60)}
	runTick(t, e)

	// Выборка переписана на stable-ключ.
	e.selections.mu.Lock()
	sel := e.selections.sel
	setCalls := len(e.selections.set)
	e.selections.mu.Unlock()
	if setCalls == 0 {
		t.Fatal("migrated selection was not persisted")
	}
	if len(sel.SelectedLinkKeys) != 1 || sel.SelectedLinkKeys[0] != preItems[0].StableKey {
		t.Fatalf("selection keys = %v, want [%s]", sel.SelectedLinkKeys, preItems[0].StableKey)
	}

	// Stable-ключ пережил подмену sni: доставлена только выбранная ссылка.
	call := e.deliverer.lastCall(t)
	if !strings.Contains(call.text, "two.example") {
		t.Errorf("post-rotation link missing from message: %q", call.text)
	}
	if strings.Contains(call.text, "other:443") {
		t.Errorf("unselected link leaked into message: %q", call.text)
	}
}

func TestTick_EmptyTemplateFallsBackToReport(t *testing.T) {
	e := newEnv()
	e.selections.sel = &domain.Selection{
		PanelID:         1,
		Username:        "alice",
		MessageTemplate: "{{unknown_placeholder}}",
	}
	e.client.usage = &panel.Usage{
		Username: "alice",
		Usages:   []panel.NodeUsage{{NodeName: "node-1", UsedTraffic: 1 << 30}},
	}

	e.schedules.due = []domain.Schedule{dueSchedule(60)}
	runTick(t, e)

	call := e.deliverer.lastCall(t)
	if strings.TrimSpace(call.text) == "" {
		t.Fatal("fallback report must not be empty")
	}
	if !strings.Contains(call.text, "node-1") {
		t.Errorf("report misses node breakdown: %q", call.text)
	}
}

func TestTick_DeliveryFailureMarked(t *testing.T) {
	e := newEnv()
	e.deliverer.err = errors.New("chat blocked")
	e.schedules.due = []domain.Schedule{dueSchedule(60)}

	runTick(t, e)

	mark := e.schedules.lastMark(t)
	if !strings.Contains(mark.lastError, "chat blocked") {
		t.Errorf("last error = %q", mark.lastError)
	}
}
