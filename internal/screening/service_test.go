package screening

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"onboard/internal/domain"
	"onboard/internal/matching"
	"onboard/pkg/logger"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, result *domain.ScreeningResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockRepository) FindLatestByClientID(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScreeningResult), args.Error(1)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

type nopAuditor struct{}

func (nopAuditor) Record(action, entityType, entityID, actor string, eventData map[string]interface{}) {
}

func newTestClient(id uuid.UUID, name string) *domain.Client {
	return &domain.Client{
		ID:          id,
		FullName:    name,
		DateOfBirth: time.Date(1985, 2, 10, 0, 0, 0, 0, time.UTC),
	}
}

// --- Tests ---

func TestScreen_ExactSanctionsHit(t *testing.T) {
	mockResults := new(MockRepository)
	mockClients := new(MockClientRepository)
	service := NewService(NewSeededListProvider(), mockResults, mockClients, nopAuditor{}, nil, logger.NewNop())
	ctx := context.Background()

	clientID := uuid.New()
	mockClients.On("FindByID", ctx, clientID).Return(newTestClient(clientID, "Amara Diallo"), nil)
	mockResults.On("Create", ctx, mock.AnythingOfType("*domain.ScreeningResult")).Return(nil)

	result, err := service.Screen(ctx, clientID)

	require.NoError(t, err)
	assert.True(t, result.HasSanctionsHit)
	assert.False(t, result.IsPep)
	assert.Equal(t, 100, result.MatchConfidence)
	assert.Equal(t, string(matching.MatchTypeExact), result.MatchType)
	assert.Equal(t, "AMARA DIALLO", result.MatchedName)
	assert.Equal(t, "High", result.RiskLevel)
	assert.True(t, result.Complete)
	mockResults.AssertExpectations(t)
}

func TestScreen_AliasHit(t *testing.T) {
	mockResults := new(MockRepository)
	mockClients := new(MockClientRepository)
	service := NewService(NewSeededListProvider(), mockResults, mockClients, nopAuditor{}, nil, logger.NewNop())
	ctx := context.Background()

	clientID := uuid.New()
	mockClients.On("FindByID", ctx, clientID).Return(newTestClient(clientID, "joe phiri"), nil)
	mockResults.On("Create", ctx, mock.AnythingOfType("*domain.ScreeningResult")).Return(nil)

	result, err := service.Screen(ctx, clientID)

	require.NoError(t, err)
	assert.True(t, result.IsPep)
	assert.Equal(t, 98, result.MatchConfidence)
	assert.Equal(t, string(matching.MatchTypeExactAlias), result.MatchType)
	assert.Equal(t, "JOE PHIRI", result.MatchedName, "alias that matched replaces the primary name")
}

func TestScreen_NoMatchStillComplete(t *testing.T) {
	mockResults := new(MockRepository)
	mockClients := new(MockClientRepository)
	service := NewService(NewSeededListProvider(), mockResults, mockClients, nopAuditor{}, nil, logger.NewNop())
	ctx := context.Background()

	clientID := uuid.New()
	mockClients.On("FindByID", ctx, clientID).Return(newTestClient(clientID, "Bwalya Chanda"), nil)
	mockResults.On("Create", ctx, mock.AnythingOfType("*domain.ScreeningResult")).Return(nil)

	result, err := service.Screen(ctx, clientID)

	require.NoError(t, err)
	assert.False(t, result.IsPep)
	assert.False(t, result.HasSanctionsHit)
	assert.Equal(t, string(matching.MatchTypeNoMatch), result.MatchType)
	assert.Equal(t, "Low", result.RiskLevel)
	assert.True(t, result.Complete, "a clean screening is still a completed screening")
}

func TestScreen_KeepsHighestConfidenceCandidate(t *testing.T) {
	provider := NewStaticListProvider([]ListedPerson{
		{Name: "JON SMITH", IsPep: true, RiskLevel: "Medium"},
		{Name: "JOHN SMITH", IsSanctioned: true, RiskLevel: "High"},
	})
	mockResults := new(MockRepository)
	mockClients := new(MockClientRepository)
	service := NewService(provider, mockResults, mockClients, nopAuditor{}, nil, logger.NewNop())
	ctx := context.Background()

	clientID := uuid.New()
	mockClients.On("FindByID", ctx, clientID).Return(newTestClient(clientID, "John Smith"), nil)
	mockResults.On("Create", ctx, mock.AnythingOfType("*domain.ScreeningResult")).Return(nil)

	result, err := service.Screen(ctx, clientID)

	require.NoError(t, err)
	assert.Equal(t, 100, result.MatchConfidence)
	assert.True(t, result.HasSanctionsHit, "the exact match outranks the near match")
	assert.False(t, result.IsPep)
}

func TestStaticListProvider_FiltersByToken(t *testing.T) {
	provider := NewSeededListProvider()
	ctx := context.Background()

	candidates, err := provider.Find(ctx, "amara chanda")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "AMARA DIALLO", candidates[0].Name)

	candidates, err = provider.Find(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
