package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/realtime"
	"github.com/yukikurage/agency-hub/internal/utils"
)

func TestNotificationService_NotifyPersistsAndEmits(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	member := f.user("member@example.com", models.RoleMember, agency.ID, nil)

	n := f.notifications.Notify(context.Background(), NotifyInput{
		RecipientID: member.ID,
		SenderID:    &owner.ID,
		Type:        models.NotificationGeneral,
		Title:       "Hello",
		Message:     "World",
	})
	require.NotNil(t, n)
	assert.NotZero(t, n.ID)
	assert.False(t, n.IsRead)

	events := f.emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.UserRoom(member.ID), events[0].Room)
	assert.Equal(t, realtime.EventNotification, events[0].Event)
}

func TestNotificationService_MarkAllReadIsolatesRecipients(t *testing.T) {
	f := newFixture(t)
	_, agency := f.agency("Studio", "owner@example.com")
	alice := f.user("alice@example.com", models.RoleMember, agency.ID, nil)
	bob := f.user("bob@example.com", models.RoleMember, agency.ID, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.notifications.Notify(ctx, NotifyInput{RecipientID: alice.ID, Type: models.NotificationGeneral, Title: "a", Message: "a"})
	}
	f.notifications.Notify(ctx, NotifyInput{RecipientID: bob.ID, Type: models.NotificationGeneral, Title: "b", Message: "b"})

	n, err := f.notifications.MarkAllRead(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for _, note := range f.notificationsFor(alice.ID) {
		assert.True(t, note.IsRead)
	}
	bobs := f.notificationsFor(bob.ID)
	require.Len(t, bobs, 1)
	assert.False(t, bobs[0].IsRead)
}

func TestNotificationService_MarkReadOnlyOwnNotification(t *testing.T) {
	f := newFixture(t)
	_, agency := f.agency("Studio", "owner@example.com")
	alice := f.user("alice@example.com", models.RoleMember, agency.ID, nil)
	bob := f.user("bob@example.com", models.RoleMember, agency.ID, nil)

	note := f.notifications.Notify(context.Background(), NotifyInput{RecipientID: alice.ID, Type: models.NotificationGeneral, Title: "a", Message: "a"})
	require.NotNil(t, note)

	_, err := f.notifications.MarkRead(note.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	read, err := f.notifications.MarkRead(note.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
}

func TestNotificationService_ListPaginates(t *testing.T) {
	f := newFixture(t)
	_, agency := f.agency("Studio", "owner@example.com")
	alice := f.user("alice@example.com", models.RoleMember, agency.ID, nil)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.notifications.Notify(ctx, NotifyInput{RecipientID: alice.ID, Type: models.NotificationGeneral, Title: "t", Message: "m"})
	}

	page, total, err := f.notifications.List(alice.ID, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)
}
