package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/projecthub/internal/domain"
)

func validRequest() domain.CustomProjectRequest {
	return domain.CustomProjectRequest{
		Name:        "Ann",
		Email:       "ann@example.com",
		ProjectType: "Web App",
		Budget:      "$5k",
		Timeline:    "1 month",
		Description: "A booking site",
		Features:    "Calendar, payments",
	}
}

func TestInquiryService_Submit(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.CustomProjectRequest)
		wantMsg string
	}{
		{name: "valid", mutate: func(*domain.CustomProjectRequest) {}},
		{name: "missing budget", mutate: func(r *domain.CustomProjectRequest) { r.Budget = "" }, wantMsg: "budget is required"},
		{name: "missing features", mutate: func(r *domain.CustomProjectRequest) { r.Features = "  " }, wantMsg: "features is required"},
		{name: "bad email", mutate: func(r *domain.CustomProjectRequest) { r.Email = "ann" }, wantMsg: "Invalid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			svc := NewInquiryService(notifier, zerolog.Nop())
			syncDispatch(&svc.notify)

			req := validRequest()
			tt.mutate(&req)
			err := svc.Submit(context.Background(), req)

			if tt.wantMsg != "" {
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Equal(t, tt.wantMsg, domain.PublicMessage(err))
				assert.Empty(t, notifier.requests)
				return
			}
			require.NoError(t, err)
			require.Len(t, notifier.requests, 1)
			assert.Equal(t, "Web App", notifier.requests[0].ProjectType)
		})
	}
}

func TestInquiryService_MailFailureIsSilent(t *testing.T) {
	notifier := &fakeNotifier{err: errStoreDown}
	svc := NewInquiryService(notifier, zerolog.Nop())
	syncDispatch(&svc.notify)

	assert.NoError(t, svc.Submit(context.Background(), validRequest()))
	assert.Len(t, notifier.requests, 1)
}
