package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/agency-hub/internal/models"
)

func TestTaskService_CreateNotifiesEachAssigneeOnce(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	client := f.client("acme", agency.ID)
	project := f.project("Website", client.ID, agency.ID)
	alice := f.user("alice@example.com", models.RoleMember, agency.ID, nil)
	bob := f.user("bob@example.com", models.RoleMember, agency.ID, nil)

	task, err := f.tasks.CreateTask(context.Background(), principalOf(owner), CreateTaskInput{
		Title:      "Launch",
		ProjectID:  project.ID,
		AssignedTo: []uint64{alice.ID, bob.ID, alice.ID},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{alice.ID, bob.ID}, task.AssigneeIDs())

	assert.Len(t, f.notificationsFor(alice.ID), 1)
	assert.Len(t, f.notificationsFor(bob.ID), 1)
	assert.Len(t, f.emitter.Events(), 2)
}

func TestTaskService_UpdateNotifiesOtherAssignees(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	client := f.client("acme", agency.ID)
	project := f.project("Website", client.ID, agency.ID)
	alice := f.user("alice@example.com", models.RoleMember, agency.ID, nil)
	bob := f.user("bob@example.com", models.RoleMember, agency.ID, nil)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, principalOf(owner), CreateTaskInput{
		Title:      "Launch",
		ProjectID:  project.ID,
		AssignedTo: []uint64{alice.ID, bob.ID},
	})
	require.NoError(t, err)

	done := models.TaskStatusDone
	updated, err := f.tasks.UpdateTask(ctx, principalOf(alice), task.ID, UpdateTaskInput{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, updated.Status)

	aliceNotes := f.notificationsFor(alice.ID)
	require.Len(t, aliceNotes, 1)
	assert.Equal(t, models.NotificationTaskAssigned, aliceNotes[0].Type)

	bobNotes := f.notificationsFor(bob.ID)
	require.Len(t, bobNotes, 2)
	assert.Equal(t, models.NotificationTaskUpdated, bobNotes[1].Type)
}

func TestTaskService_MemberCannotSeeUnassignedTask(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	client := f.client("acme", agency.ID)
	project := f.project("Website", client.ID, agency.ID)
	alice := f.user("alice@example.com", models.RoleMember, agency.ID, nil)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, principalOf(owner), CreateTaskInput{Title: "Private", ProjectID: project.ID})
	require.NoError(t, err)

	_, err = f.tasks.GetTask(principalOf(alice), task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = f.tasks.AddComment(ctx, principalOf(alice), task.ID, "hello")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_ClientIsReadOnly(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	client := f.client("acme", agency.ID)
	project := f.project("Website", client.ID, agency.ID)
	contact := f.user("contact@acme.example.com", models.RoleClient, agency.ID, &client.ID)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, principalOf(owner), CreateTaskInput{Title: "Visible", ProjectID: project.ID})
	require.NoError(t, err)

	visible, err := f.tasks.GetTask(principalOf(contact), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Visible", visible.Title)

	title := "Renamed"
	_, err = f.tasks.UpdateTask(ctx, principalOf(contact), task.ID, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrTaskReadOnly)
}

func TestTaskService_GenerateWithoutAI(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.agency("Studio", "owner@example.com")

	_, err := f.tasks.GenerateTasks(context.Background(), principalOf(owner), GenerateTasksInput{Text: "plan", ProjectID: 1})
	assert.ErrorIs(t, err, ErrAIServiceNotConfigured)
}
