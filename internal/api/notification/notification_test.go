package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *memoryStorage) *Service {
	s := NewService(store)
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestService_Record(t *testing.T) {
	store := &memoryStorage{}
	s := newTestService(store)

	n, err := s.Record(context.Background(), RecordInput{
		Type:     domain.EventFeedback,
		Message:  "love it",
		FromUser: "seek-1",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.NotifyRoleAdmin, n.ToRole)
	assert.False(t, n.Read)
	assert.Equal(t, model.Meta{}, n.Meta)
	require.NotNil(t, n.FromUser)
	assert.Equal(t, "seek-1", *n.FromUser)
	_, err = uuid.Parse(n.ID)
	assert.NoError(t, err)
}

func TestService_Record_Errors(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		s := newTestService(&memoryStorage{})
		_, err := s.Record(context.Background(), RecordInput{Type: "feedback"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		dbErr := errors.New("db down")
		s := newTestService(&memoryStorage{err: dbErr})

		_, err := s.Record(context.Background(), RecordInput{Type: "feedback", Message: "x"})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestService_UnreadCountTracksMarkRead(t *testing.T) {
	store := &memoryStorage{}
	s := newTestService(store)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := s.Record(ctx, RecordInput{Type: domain.EventJobApproved, Message: "approved"})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	count, err := s.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	read, err := s.MarkRead(ctx, ids[1])
	require.NoError(t, err)
	assert.True(t, read.Read)

	count, err = s.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// marking again keeps the count stable
	_, err = s.MarkRead(ctx, ids[1])
	require.NoError(t, err)
	count, err = s.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_MarkRead_NotFound(t *testing.T) {
	s := newTestService(&memoryStorage{})

	_, err := s.MarkRead(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.MarkRead(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ListForAdmin(t *testing.T) {
	store := &memoryStorage{}
	s := newTestService(store)
	ctx := context.Background()

	for i := 0; i < 105; i++ {
		_, err := s.Record(ctx, RecordInput{Type: "t", Message: "m"})
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, 100},
		{"capped", 500, 100},
		{"explicit", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.ListForAdmin(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
			assert.True(t, items[0].CreatedAt.After(items[len(items)-1].CreatedAt) || len(items) == 1)
		})
	}
}
