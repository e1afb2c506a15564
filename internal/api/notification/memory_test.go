package notification

import (
	"context"
	"sort"
	"sync"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

type memoryStorage struct {
	mu    sync.Mutex
	items []*model.Notification
	err   error
}

func (m *memoryStorage) CreateNotification(ctx context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := *n
	m.items = append(m.items, &copied)
	return nil
}

func (m *memoryStorage) ListNotifications(ctx context.Context, toRole string, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Notification{}
	for _, n := range m.items {
		if n.ToRole == toRole {
			out = append(out, *n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStorage) CountUnreadNotifications(ctx context.Context, toRole string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, n := range m.items {
		if n.ToRole == toRole && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memoryStorage) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.items {
		if n.ID == id {
			n.Read = true
			copied := *n
			return &copied, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}
