// Package notify выполняет фоновый опрос уведомлений активной сессии.
// Каждый успешный ответ целиком заменяет снимок; ответы не сливаются,
// поэтому опоздавший опрос безопасен. Ошибки опроса снимок не трогают.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/michaelberns/wtt/internal/apiclient"
	"github.com/michaelberns/wtt/models"
)

// DefaultInterval задаёт период опроса уведомлений
const DefaultInterval = 5 * time.Second

type Snapshot struct {
	UnreadCount   int
	Notifications []models.Notification
}

type Poller struct {
	api      *apiclient.Client
	userID   string
	interval time.Duration

	// OnUpdate, если задан, вызывается после каждой успешной замены снимка
	OnUpdate func(Snapshot)

	mu  sync.Mutex
	cur Snapshot
}

func NewPoller(api *apiclient.Client, userID string) *Poller {
	return &Poller{api: api, userID: userID, interval: DefaultInterval}
}

// NewPollerInterval создаёт поллер с собственным периодом опроса (для тестов)
func NewPollerInterval(api *apiclient.Client, userID string, interval time.Duration) *Poller {
	return &Poller{api: api, userID: userID, interval: interval}
}

// Snapshot возвращает текущий снимок уведомлений
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur
}

// Refresh выполняет один опрос. Успех заменяет снимок целиком,
// ошибка оставляет прежний.
func (p *Poller) Refresh(ctx context.Context) error {
	feed, err := p.api.GetNotifications(ctx, p.userID)
	if err != nil {
		return err
	}
	snap := Snapshot{UnreadCount: feed.UnreadCount, Notifications: feed.Notifications}
	p.mu.Lock()
	p.cur = snap
	p.mu.Unlock()
	if p.OnUpdate != nil {
		p.OnUpdate(snap)
	}
	return nil
}

// Run опрашивает сервер сразу и далее каждые interval, пока контекст жив.
// Ошибки отдельных опросов игнорируются.
func (p *Poller) Run(ctx context.Context) {
	_ = p.Refresh(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Refresh(ctx)
		}
	}
}

// MarkRead отмечает уведомление прочитанным на сервере и, только при
// успехе, в локальном снимке.
func (p *Poller) MarkRead(ctx context.Context, notificationID string) error {
	if err := p.api.MarkNotificationRead(ctx, notificationID, p.userID); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.cur.Notifications {
		if p.cur.Notifications[i].ID == notificationID && !p.cur.Notifications[i].Read {
			p.cur.Notifications[i].Read = true
			if p.cur.UnreadCount > 0 {
				p.cur.UnreadCount--
			}
		}
	}
	return nil
}
