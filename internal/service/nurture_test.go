package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// MockSender is a mock implementation of mailer.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func TestNurtureService_Run_SendsAndMarks(t *testing.T) {
	leads := new(MockLeadRepository)
	sender := new(MockSender)

	leads.On("FindNurturable", mock.Anything, mock.Anything, nurtureBatchSize).
		Return([]domain.Lead{
			{ID: "l1", Name: "Anna", Email: "anna@web.de"},
			{ID: "l2", Name: "Ben", Email: "ben@web.de"},
		}, nil)
	sender.On("Send", "anna@web.de", mock.Anything, mock.Anything).Return(nil)
	sender.On("Send", "ben@web.de", mock.Anything, mock.Anything).Return(nil)
	leads.On("MarkNurtured", mock.Anything, "l1", mock.Anything).Return(nil)
	leads.On("MarkNurtured", mock.Anything, "l2", mock.Anything).Return(nil)

	service := NewNurtureService(leads, sender, zap.NewNop())

	resp, err := service.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, resp.Sent)
	assert.Equal(t, 0, resp.Failed)
	leads.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestNurtureService_Run_PartialFailureContinues(t *testing.T) {
	leads := new(MockLeadRepository)
	sender := new(MockSender)

	leads.On("FindNurturable", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Lead{
			{ID: "l1", Name: "Anna", Email: "anna@web.de"},
			{ID: "l2", Name: "Ben", Email: "ben@web.de"},
		}, nil)
	sender.On("Send", "anna@web.de", mock.Anything, mock.Anything).Return(errors.New("smtp timeout"))
	sender.On("Send", "ben@web.de", mock.Anything, mock.Anything).Return(nil)
	leads.On("MarkNurtured", mock.Anything, "l2", mock.Anything).Return(nil)

	service := NewNurtureService(leads, sender, zap.NewNop())

	resp, err := service.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Sent)
	assert.Equal(t, 1, resp.Failed)
	leads.AssertNotCalled(t, "MarkNurtured", mock.Anything, "l1", mock.Anything)
}

func TestNurtureService_Run_RepositoryError(t *testing.T) {
	leads := new(MockLeadRepository)
	sender := new(MockSender)

	leads.On("FindNurturable", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	service := NewNurtureService(leads, sender, zap.NewNop())

	resp, err := service.Run(context.Background())

	assert.Error(t, err)
	assert.Nil(t, resp)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestNurtureService_Run_NothingToDo(t *testing.T) {
	leads := new(MockLeadRepository)
	sender := new(MockSender)

	leads.On("FindNurturable", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Lead{}, nil)

	service := NewNurtureService(leads, sender, zap.NewNop())

	resp, err := service.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, resp.Sent)
	assert.Equal(t, 0, resp.Failed)
}
