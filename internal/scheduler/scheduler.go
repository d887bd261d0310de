package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shaiso/Rotor/internal/domain"
	"github.com/shaiso/Rotor/internal/link"
	"github.com/shaiso/Rotor/internal/mq"
	"github.com/shaiso/Rotor/internal/panel"
	"github.com/shaiso/Rotor/internal/render"
	"github.com/shaiso/Rotor/internal/repo"
	"github.com/shaiso/Rotor/internal/telemetry"
)

// Default configuration values.
const (
	defaultBatchSize  = 100
	defaultClaimLease = 10 * time.Minute
)

// ScheduleStore — хранилище расписаний.
type ScheduleStore interface {
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.Schedule, error)
	MarkResult(ctx context.Context, key domain.AccountKey, nextDue, lastRun time.Time, lastError string) error
}

// SelectionStore — хранилище настроек уведомления.
// Отсутствие записи обозначается repo.ErrNotFound.
type SelectionStore interface {
	Get(ctx context.Context, key domain.AccountKey) (*domain.Selection, error)
	Set(ctx context.Context, s *domain.Selection) error
}

// PanelStore — хранилище панелей (только чтение).
type PanelStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Panel, error)
}

// BindingStore — хранилище привязок аккаунта к чату.
type BindingStore interface {
	Get(ctx context.Context, key domain.AccountKey) (*domain.Binding, error)
}

// PanelClient — клиент панели, нужный одному запуску.
type PanelClient interface {
	GetUser(ctx context.Context, username string) (*panel.User, error)
	RevokeSubscription(ctx context.Context, username string) (*panel.User, error)
	GetUserUsage(ctx context.Context, username string) (*panel.Usage, error)
	FetchSubscription(ctx context.Context, subURL string) (string, error)
}

// ClientProvider выдаёт клиент панели.
type ClientProvider interface {
	ClientFor(p *domain.Panel) (PanelClient, error)
}

// RegistryProvider адаптирует panel.Registry к ClientProvider.
type RegistryProvider struct {
	Registry *panel.Registry
}

func (p RegistryProvider) ClientFor(pl *domain.Panel) (PanelClient, error) {
	client, err := p.Registry.ClientFor(pl)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Deliverer доставляет уведомление и ведёт MessageState.
type Deliverer interface {
	Deliver(ctx context.Context, key domain.AccountKey, chatID int64, text string, buttons []string) (*domain.MessageState, error)
}

// Scheduler — планировщик ротаций подписок.
type Scheduler struct {
	schedules  ScheduleStore
	selections SelectionStore
	panels     PanelStore
	bindings   BindingStore
	clients    ClientProvider
	deliverer  Deliverer
	publisher  *mq.Publisher

	claims     *Claims
	logger     *slog.Logger
	timezone   string
	batchSize  int
	claimLease time.Duration

	wg sync.WaitGroup
}

// Config — конфигурация Scheduler.
type Config struct {
	Schedules  ScheduleStore
	Selections SelectionStore
	Panels     PanelStore
	Bindings   BindingStore
	Clients    ClientProvider
	Deliverer  Deliverer
	Publisher  *mq.Publisher // опционально
	Logger     *slog.Logger

	// Timezone — пояс календарных представлений в уведомлениях.
	Timezone string

	BatchSize  int           // записей за один тик (default: 100)
	ClaimLease time.Duration // срок lease в БД (default: 10m)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	claimLease := cfg.ClaimLease
	if claimLease <= 0 {
		claimLease = defaultClaimLease
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timezone := cfg.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	return &Scheduler{
		schedules:  cfg.Schedules,
		selections: cfg.Selections,
		panels:     cfg.Panels,
		bindings:   cfg.Bindings,
		clients:    cfg.Clients,
		deliverer:  cfg.Deliverer,
		publisher:  cfg.Publisher,
		claims:     NewClaims(),
		logger:     logger,
		timezone:   timezone,
		batchSize:  batchSize,
		claimLease: claimLease,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Забирает due-расписания с lease (ClaimDue)
// 2. Для каждого захватывает claim аккаунта и запускает
//    rotate-and-notify в отдельной горутине
// 3. Уже бегущие аккаунты пропускаются до следующего опроса
//
// Tick не ждёт завершения запусков: медленная запись не блокирует
// цикл опроса. Ошибка одного расписания не влияет на остальные.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now().UTC()
	telemetry.SchedulerTicks.Inc()

	schedules, err := s.schedules.ClaimDue(ctx, now, s.claimLease, s.batchSize)
	if err != nil {
		return fmt.Errorf("claim due schedules: %w", err)
	}
	if len(schedules) == 0 {
		return nil
	}

	s.logger.Debug("claimed due schedules", "count", len(schedules))

	started := 0
	for i := range schedules {
		sched := schedules[i]
		key := sched.Key()

		if !s.claims.TryAcquire(key) {
			// Запуск для этого аккаунта ещё в полёте. next_due не
			// сдвинулся, запись вернётся в следующей выборке.
			telemetry.ClaimSkips.Inc()
			s.logger.Debug("rotation already in flight, skipping", "account", key.String())
			continue
		}

		started++
		s.wg.Add(1)
		// Начатый запуск доезжает до конца даже при остановке цикла:
		// контекст тика от него отвязывается.
		runCtx := context.WithoutCancel(ctx)
		go func() {
			defer s.wg.Done()
			defer s.claims.Release(key)
			s.processSchedule(runCtx, &sched)
		}()
	}

	s.logger.Info("scheduler tick completed", "due", len(schedules), "started", started)
	return nil
}

// Wait дожидается завершения всех запусков в полёте.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// processSchedule выполняет rotate-and-notify для одного расписания.
//
// Любая ошибка ловится на границе записи: исход фиксируется через
// MarkResult и никогда не покидает горутину запуска.
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule) {
	key := sched.Key()
	logger := s.logger.With("account", key.String())
	startedAt := time.Now().UTC()

	markFailure := func(backoff time.Duration, cause error) {
		now := time.Now().UTC()
		telemetry.Rotations.WithLabelValues("failure").Inc()
		logger.Error("rotation failed", "error", cause, "retry_in", backoff)

		if err := s.schedules.MarkResult(ctx, key, now.Add(backoff), now, cause.Error()); err != nil {
			logger.Error("failed to mark schedule result", "error", err)
		}
		if s.publisher != nil {
			if err := s.publisher.PublishRotationFailed(ctx, key, cause.Error()); err != nil {
				logger.Warn("failed to publish rotation.failed", "error", err)
			}
		}
	}

	// 1. Панель и чат доставки. Их отсутствие — конфигурационная
	// ошибка: длинный backoff, панель не трогаем.
	pnl, err := s.panels.GetByID(ctx, sched.PanelID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			markFailure(ConfigBackoff, fmt.Errorf("panel %d not found", sched.PanelID))
		} else {
			markFailure(TransientBackoff, fmt.Errorf("load panel: %w", err))
		}
		return
	}

	chatID, err := s.resolveChat(ctx, key, pnl)
	if err != nil {
		if errors.Is(err, errNoChat) {
			markFailure(ConfigBackoff, err)
		} else {
			markFailure(TransientBackoff, err)
		}
		return
	}

	client, err := s.clients.ClientFor(pnl)
	if err != nil {
		markFailure(TransientBackoff, fmt.Errorf("panel client: %w", err))
		return
	}

	sel, err := s.loadSelection(ctx, key)
	if err != nil {
		markFailure(TransientBackoff, fmt.Errorf("load selection: %w", err))
		return
	}

	// 2. Best-effort миграция сохранённой выборки по ссылкам ДО
	// ротации: именно ротация меняет изменчивые части ссылок, которые
	// старые схемы ключей не переживают. Собственные ошибки миграции
	// глотаются и ротацию не блокируют.
	if sel.HasSelection() {
		s.migrateSelection(ctx, logger, client, sel)
	}

	// 3. Ротация: панель заменяет секрет подписки.
	user, err := client.RevokeSubscription(ctx, sched.Username)
	if err != nil {
		markFailure(TransientBackoff, fmt.Errorf("revoke subscription: %w", err))
		return
	}

	usage, err := client.GetUserUsage(ctx, sched.Username)
	if err != nil {
		markFailure(TransientBackoff, fmt.Errorf("fetch usage: %w", err))
		return
	}

	nextDue, err := NextDue(sched, time.Now())
	if err != nil {
		markFailure(ConfigBackoff, err)
		return
	}

	// 4. Свежие ссылки (уже после ротации) и фильтрация по выборке.
	// Пустой результат фильтра откатывается на полный список.
	items := link.BuildItems(s.resolveLinks(ctx, logger, client, user))
	selected := link.FilterBySelection(items, sel.SelectedLinkKeys)

	// 5. Рендеринг сообщения и кнопок.
	now := time.Now().UTC()
	vars := render.BuildContext(render.ContextParams{
		PanelName:    pnl.Name,
		Username:     firstNonEmpty(user.Username, sched.Username),
		InboundNames: user.InboundNames(),
		Now:          now,
		NextReset:    nextDue,
		Timezone:     s.timezone,
		UsedTraffic:  user.UsedTraffic,
		DataLimit:    user.DataLimit,
		Links:        selected,
	})

	template := sel.MessageTemplate
	if template == "" {
		template = render.DefaultMessageTemplate
	}
	message := strings.TrimSpace(render.Render(template, vars))
	if message == "" {
		message = buildFallbackReport(reportParams{
			User:      user,
			Usage:     usage,
			PanelName: pnl.Name,
			Timezone:  s.timezone,
			Now:       now,
			NextReset: nextDue,
		})
	}
	buttons := render.RenderButtons(sel.ButtonTemplates, vars)

	// 6. Доставка и фиксация исхода.
	state, err := s.deliverer.Deliver(ctx, key, chatID, message, buttons)
	if err != nil {
		markFailure(TransientBackoff, fmt.Errorf("deliver: %w", err))
		return
	}

	finishedAt := time.Now().UTC()
	if err := s.schedules.MarkResult(ctx, key, nextDue, finishedAt, ""); err != nil {
		logger.Error("failed to mark schedule result", "error", err)
		return
	}

	telemetry.Rotations.WithLabelValues("success").Inc()
	telemetry.NotificationParts.Add(float64(len(state.MessageIDs)))
	logger.Info("rotation completed",
		"links", len(selected),
		"parts", len(state.MessageIDs),
		"next_due", nextDue,
		"took", finishedAt.Sub(startedAt),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishRotationCompleted(ctx, key, len(state.MessageIDs), nextDue); err != nil {
			logger.Warn("failed to publish rotation.completed", "error", err)
		}
	}
}

// errNoChat — аккаунту некуда доставлять уведомления.
var errNoChat = errors.New("no chat_id (set panel default_chat_id or bind the account)")

// resolveChat выбирает чат доставки: явная привязка аккаунта,
// иначе чат панели по умолчанию.
func (s *Scheduler) resolveChat(ctx context.Context, key domain.AccountKey, pnl *domain.Panel) (int64, error) {
	binding, err := s.bindings.Get(ctx, key)
	if err == nil {
		return binding.ChatID, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return 0, fmt.Errorf("load binding: %w", err)
	}

	if pnl.DefaultChatID != nil {
		return *pnl.DefaultChatID, nil
	}
	return 0, errNoChat
}

// loadSelection читает настройки уведомления; отсутствие записи — не
// ошибка, аккаунт получает настройки по умолчанию.
func (s *Scheduler) loadSelection(ctx context.Context, key domain.AccountKey) (*domain.Selection, error) {
	sel, err := s.selections.Get(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return &domain.Selection{PanelID: key.PanelID, Username: key.Username}, nil
	}
	if err != nil {
		return nil, err
	}
	return sel, nil
}

// migrateSelection переписывает сохранённую выборку на stable-ключи
// по ссылкам, полученным до ротации. Строго best-effort.
func (s *Scheduler) migrateSelection(ctx context.Context, logger *slog.Logger, client PanelClient, sel *domain.Selection) {
	preUser, err := client.GetUser(ctx, sel.Username)
	if err != nil {
		logger.Warn("selection migration skipped: pre-rotation fetch failed", "error", err)
		return
	}

	items := link.BuildItems(s.resolveLinks(ctx, logger, client, preUser))
	migrated := link.MigrateSelection(sel.SelectedLinkKeys, items)
	if len(migrated) == 0 || link.Equal(migrated, sel.SelectedLinkKeys) {
		return
	}

	sel.SelectedLinkKeys = migrated
	if err := s.selections.Set(ctx, sel); err != nil {
		logger.Warn("failed to persist migrated selection", "error", err)
		return
	}
	telemetry.SelectionMigrations.Inc()
	logger.Info("selection migrated to stable keys", "keys", len(migrated))
}

// resolveLinks выбирает итоговый список сырых ссылок аккаунта:
// нагрузка подписки предпочитается списку из API. Ошибка скачивания
// подписки не фатальна — остаётся список из API.
func (s *Scheduler) resolveLinks(ctx context.Context, logger *slog.Logger, client PanelClient, user *panel.User) []string {
	var payload string
	if user.SubscriptionURL != "" {
		var err error
		payload, err = client.FetchSubscription(ctx, user.SubscriptionURL)
		if err != nil {
			logger.Debug("subscription fetch failed, falling back to api links", "error", err)
			payload = ""
		}
	}
	return link.ResolveLinks(user.Links, payload)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
