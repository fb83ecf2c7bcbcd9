package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/realtime"
)

func TestChatService_SendEmitsToReceiverOnly(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	member := f.user("member@example.com", models.RoleMember, agency.ID, nil)

	msg, err := f.chat.Send(context.Background(), principalOf(owner), SendMessageInput{ReceiverID: member.ID, Content: " hi there "})
	require.NoError(t, err)
	assert.Equal(t, "hi there", msg.Content)
	assert.False(t, msg.IsRead)

	events := f.emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.UserRoom(member.ID), events[0].Room)
	assert.Equal(t, realtime.EventReceiveMessage, events[0].Event)
}

func TestChatService_SendValidation(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.agency("Studio", "owner@example.com")
	_, otherAgency := f.agency("Other", "other@example.com")
	stranger := f.user("stranger@example.com", models.RoleMember, otherAgency.ID, nil)
	ctx := context.Background()
	p := principalOf(owner)

	_, err := f.chat.Send(ctx, p, SendMessageInput{ReceiverID: stranger.ID, Content: "   "})
	assert.ErrorIs(t, err, ErrMessageRequired)

	_, err = f.chat.Send(ctx, p, SendMessageInput{ReceiverID: owner.ID, Content: "me"})
	assert.ErrorIs(t, err, ErrCannotMessageSelf)

	_, err = f.chat.Send(ctx, p, SendMessageInput{ReceiverID: stranger.ID, Content: "hello"})
	assert.ErrorIs(t, err, ErrChatPeerNotFound)
}

func TestChatService_UnreadCountsAndMarkRead(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	member := f.user("member@example.com", models.RoleMember, agency.ID, nil)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.chat.Send(ctx, principalOf(member), SendMessageInput{ReceiverID: owner.ID, Content: text})
		require.NoError(t, err)
	}
	_, err := f.chat.Send(ctx, principalOf(owner), SendMessageInput{ReceiverID: member.ID, Content: "reply"})
	require.NoError(t, err)

	contacts, err := f.chat.ChatUsers(principalOf(owner))
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, member.ID, contacts[0].ID)
	assert.Equal(t, int64(3), contacts[0].UnreadCount)

	conversation, err := f.chat.Conversation(principalOf(owner), member.ID)
	require.NoError(t, err)
	require.Len(t, conversation, 4)
	assert.Equal(t, "one", conversation[0].Content)
	assert.Equal(t, "reply", conversation[3].Content)

	n, err := f.chat.MarkRead(principalOf(owner), member.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	contacts, err = f.chat.ChatUsers(principalOf(owner))
	require.NoError(t, err)
	assert.Zero(t, contacts[0].UnreadCount)

	var unreadForMember int64
	f.db.Model(&models.Message{}).Where("receiver_id = ? AND is_read = ?", member.ID, false).Count(&unreadForMember)
	assert.Equal(t, int64(1), unreadForMember)
}

func TestChatService_ClientSeesOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	acme := f.client("acme", agency.ID)
	globex := f.client("globex", agency.ID)
	f.user("member@example.com", models.RoleMember, agency.ID, nil)
	contact := f.user("contact@acme.example.com", models.RoleClient, agency.ID, &acme.ID)
	f.user("contact@globex.example.com", models.RoleClient, agency.ID, &globex.ID)

	contacts, err := f.chat.ChatUsers(principalOf(contact))
	require.NoError(t, err)

	require.Len(t, contacts, 1)
	assert.Equal(t, owner.ID, contacts[0].ID)
	assert.Equal(t, models.RoleOwner, contacts[0].Role)
}
