package notify

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type fakeNotificationStore struct {
	byID      map[string]*domain.Notification
	markReadOK bool
	deleteErr  error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{byID: make(map[string]*domain.Notification)}
}

func (f *fakeNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	f.byID[n.ID] = n
	return nil
}

func (f *fakeNotificationStore) List(ctx context.Context, recipientID string, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error) {
	return nil, int64(len(f.byID)), nil
}

func (f *fakeNotificationStore) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	return f.markReadOK, nil
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationStore) Delete(ctx context.Context, id, recipientID string) error {
	return f.deleteErr
}

type fakePusher struct {
	events []string
}

func (f *fakePusher) PushToUser(userID, event string, payload interface{}) {
	f.events = append(f.events, event)
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestEmit_PushesWhenPusherWired(t *testing.T) {
	store := newFakeNotificationStore()
	pusher := &fakePusher{}
	svc := New(store, pusher, testLogger())

	n, err := svc.Emit(context.Background(), EmitInput{Recipient: "user-1", Type: domain.NotificationContractInvitation, Title: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", n.RecipientID)
	assert.Contains(t, pusher.events, "notification:new")
}

func TestEmit_DegradesToLogOnlyWithoutPusher(t *testing.T) {
	store := newFakeNotificationStore()
	svc := New(store, nil, testLogger())

	n, err := svc.Emit(context.Background(), EmitInput{Recipient: "user-1", Type: domain.NotificationContractInvitation, Title: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
}

func TestMarkRead_IsIdempotent(t *testing.T) {
	store := newFakeNotificationStore()
	store.markReadOK = false
	svc := New(store, nil, testLogger())

	assert.NoError(t, svc.MarkRead(context.Background(), "already-read-id", "user-1"))
}

func TestDelete_SwallowsNotFound(t *testing.T) {
	store := newFakeNotificationStore()
	store.deleteErr = apperr.New(apperr.KindNotFound, "not found")
	svc := New(store, nil, testLogger())

	assert.NoError(t, svc.Delete(context.Background(), "missing-id", "user-1"))
}

func TestDelete_PropagatesOtherErrors(t *testing.T) {
	store := newFakeNotificationStore()
	store.deleteErr = apperr.New(apperr.KindInternal, "boom")
	svc := New(store, nil, testLogger())

	err := svc.Delete(context.Background(), "some-id", "user-1")
	assert.Error(t, err)
}
