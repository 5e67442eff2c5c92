package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
)

func newMessageService(repo *MockMessageRepository, n *fakeNotifier) *MessageService {
	svc := NewMessageService(repo, auth.NewGuard(nil), n, zerolog.Nop())
	syncDispatch(&svc.notify)
	return svc
}

func TestMessageService_Submit(t *testing.T) {
	tests := []struct {
		name    string
		input   SubmitMessageInput
		wantErr string
	}{
		{
			name:  "valid",
			input: SubmitMessageInput{Name: "Ann", Email: "ann@example.com", Subject: "Hi", Message: "Hello there"},
		},
		{
			name:    "malformed email",
			input:   SubmitMessageInput{Name: "Ann", Email: "not-an-email", Subject: "Hi", Message: "Hello"},
			wantErr: "Invalid email address",
		},
		{
			name:    "missing subject",
			input:   SubmitMessageInput{Name: "Ann", Email: "ann@example.com", Message: "Hello"},
			wantErr: "All fields are required",
		},
		{
			name:    "markup only body",
			input:   SubmitMessageInput{Name: "Ann", Email: "ann@example.com", Subject: "Hi", Message: "<script></script>"},
			wantErr: "All fields are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockMessageRepository()
			notifier := &fakeNotifier{}
			svc := newMessageService(repo, notifier)

			msg, err := svc.Submit(context.Background(), tt.input)

			if tt.wantErr != "" {
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Equal(t, tt.wantErr, domain.PublicMessage(err))
				assert.Empty(t, repo.messages, "no record may be persisted")
				assert.Empty(t, notifier.contacts)
				return
			}
			require.NoError(t, err)
			assert.False(t, msg.IsRead)
			assert.Contains(t, repo.messages, msg.ID)
			require.Len(t, notifier.contacts, 1)
			assert.Equal(t, msg.ID, notifier.contacts[0].ID)
		})
	}
}

func TestMessageService_SubmitStripsMarkup(t *testing.T) {
	repo := NewMockMessageRepository()
	svc := newMessageService(repo, &fakeNotifier{})

	msg, err := svc.Submit(context.Background(), SubmitMessageInput{
		Name:    "<b>Ann</b>",
		Email:   " ann@example.com ",
		Subject: "Tom & Jerry",
		Message: `Click <a href="javascript:alert(1)">here</a>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", msg.Name)
	assert.Equal(t, "ann@example.com", msg.Email)
	assert.Equal(t, "Tom & Jerry", msg.Subject)
	assert.Equal(t, "Click here", msg.Body)
}

func TestMessageService_NotificationFailureIsSilent(t *testing.T) {
	repo := NewMockMessageRepository()
	notifier := &fakeNotifier{err: errStoreDown}
	svc := newMessageService(repo, notifier)

	msg, err := svc.Submit(context.Background(), SubmitMessageInput{
		Name: "Ann", Email: "ann@example.com", Subject: "Hi", Message: "Hello",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.messages, msg.ID)
	assert.Len(t, notifier.contacts, 1)
}

func TestMessageService_SubmitWithoutNotifier(t *testing.T) {
	svc := NewMessageService(NewMockMessageRepository(), auth.NewGuard(nil), nil, zerolog.Nop())

	_, err := svc.Submit(context.Background(), SubmitMessageInput{
		Name: "Ann", Email: "ann@example.com", Subject: "Hi", Message: "Hello",
	})
	assert.NoError(t, err)
}

func TestMessageService_SubmitStoreFailure(t *testing.T) {
	repo := NewMockMessageRepository()
	repo.createErr = errStoreDown
	notifier := &fakeNotifier{}
	svc := newMessageService(repo, notifier)

	_, err := svc.Submit(context.Background(), SubmitMessageInput{
		Name: "Ann", Email: "ann@example.com", Subject: "Hi", Message: "Hello",
	})
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Empty(t, notifier.contacts)
}

func TestMessageService_AdminOperations(t *testing.T) {
	ctx := context.Background()

	sessions := []struct {
		name    string
		session *auth.Session
		wantErr error
	}{
		{"anonymous", nil, domain.ErrUnauthorized},
		{"user", userSession("u1"), domain.ErrForbidden},
	}

	for _, s := range sessions {
		t.Run(s.name, func(t *testing.T) {
			repo := NewMockMessageRepository()
			msg := domain.NewContactMessage("Ann", "ann@example.com", "Hi", "Hello")
			repo.messages[msg.ID] = msg
			svc := newMessageService(repo, nil)

			_, err := svc.List(ctx, s.session)
			assert.ErrorIs(t, err, s.wantErr)

			_, err = svc.MarkRead(ctx, s.session, msg.ID, true)
			assert.ErrorIs(t, err, s.wantErr)
			assert.False(t, repo.messages[msg.ID].IsRead)

			err = svc.Delete(ctx, s.session, msg.ID)
			assert.ErrorIs(t, err, s.wantErr)
			assert.Contains(t, repo.messages, msg.ID)
		})
	}

	t.Run("admin", func(t *testing.T) {
		repo := NewMockMessageRepository()
		msg := domain.NewContactMessage("Ann", "ann@example.com", "Hi", "Hello")
		repo.messages[msg.ID] = msg
		svc := newMessageService(repo, nil)
		admin := adminSession("root")

		messages, err := svc.List(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, messages, 1)

		updated, err := svc.MarkRead(ctx, admin, msg.ID, true)
		require.NoError(t, err)
		assert.True(t, updated.IsRead)

		_, err = svc.MarkRead(ctx, admin, "missing", true)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		require.NoError(t, svc.Delete(ctx, admin, msg.ID))
		assert.ErrorIs(t, svc.Delete(ctx, admin, msg.ID), domain.ErrNotFound)
	})
}
