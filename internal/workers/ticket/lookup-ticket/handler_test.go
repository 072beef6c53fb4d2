// internal/workers/ticket/lookup-ticket/handler_test.go
package lookupticket

import (
	"context"
	"testing"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) Find(ctx context.Context, ticketNumber string) (*models.TicketLookup, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketLookup), args.Error(1)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_PrefillsGeneralInfo(t *testing.T) {
	finder := new(MockFinder)
	finder.On("Find", mock.Anything, "4521").Return(&models.TicketLookup{
		TicketNumber: "4521",
		TicketLink:   "https://acme.zendesk.com/agent/tickets/4521",
		Ticket: &models.Ticket{
			ID:               4521,
			Tags:             []string{"pix", "estorno"},
			OrganizationName: "Casa Norte",
			AssigneeName:     "Rafael",
		},
	}, nil)

	output, err := NewHandler(&Config{}, finder, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{TicketNumber: " 4521 "})

	require.NoError(t, err)
	assert.Equal(t, "4521", output.GeneralInfo.TicketNumber)
	assert.Equal(t, "Casa Norte", output.GeneralInfo.Casa)
	assert.Equal(t, "pix, estorno", output.GeneralInfo.Tabulacao)
	assert.Equal(t, "Rafael", output.GeneralInfo.Analista)
	assert.Equal(t, "https://acme.zendesk.com/agent/tickets/4521", output.GeneralInfo.TicketLink)
	finder.AssertExpectations(t)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_RequiresTicketNumber(t *testing.T) {
	finder := new(MockFinder)

	_, err := NewHandler(&Config{}, finder, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{TicketNumber: "   "})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeTicketNumberRequired))
	finder.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestHandler_Execute_NotFound(t *testing.T) {
	finder := new(MockFinder)
	finder.On("Find", mock.Anything, "999").Return(nil, commonerrors.NewTicketNotFoundError("999"))

	_, err := NewHandler(&Config{}, finder, logger.NewTestLogger(t)).
		Execute(context.Background(), &Input{TicketNumber: "999"})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeTicketNotFound))
}
