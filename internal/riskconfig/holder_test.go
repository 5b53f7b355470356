package riskconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/domain"
	"onboard/internal/rules"
	"onboard/pkg/errors"
	"onboard/pkg/logger"
)

type stubStore struct {
	cfg   *domain.ScoringConfig
	err   error
	loads int
}

func (s *stubStore) LoadActive(ctx context.Context) (*domain.ScoringConfig, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	// Return a copy so the holder owns its snapshot
	cp := *s.cfg
	return &cp, nil
}

func testConfig(version string) *domain.ScoringConfig {
	return &domain.ScoringConfig{
		Version:  version,
		MaxScore: 100,
		Rules: []domain.RiskRule{
			{Name: "PepFlag", Condition: "IsPep == true", Points: 50, Enabled: true},
		},
		Thresholds: []domain.RatingThreshold{
			{Min: 0, Max: 100, Rating: domain.RiskRatingLow},
		},
	}
}

func TestHolderLoadsOnFirstUse(t *testing.T) {
	store := &stubStore{cfg: testConfig("v1")}
	holder := NewHolder(store, nil, 0, logger.NewNop())

	cfg, err := holder.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "v1", cfg.Version)
	assert.NotEmpty(t, cfg.Checksum)
	assert.Equal(t, 1, store.loads)

	// Subsequent reads serve the snapshot without touching the store
	_, err = holder.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads)
}

func TestHolderCurrentFailsWhenStoreUnavailable(t *testing.T) {
	store := &stubStore{err: errors.ErrNoActiveConfig}
	holder := NewHolder(store, nil, 0, logger.NewNop())

	_, err := holder.Current(context.Background())
	assert.Error(t, err)
}

func TestHolderRefreshSwapsSnapshot(t *testing.T) {
	store := &stubStore{cfg: testConfig("v1")}
	holder := NewHolder(store, nil, 0, logger.NewNop())

	first, err := holder.Current(context.Background())
	require.NoError(t, err)

	store.cfg = testConfig("v2")
	second, err := holder.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "v1", first.Version)
	assert.Equal(t, "v2", second.Version)

	current, err := holder.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2", current.Version)
}

func TestHolderNotifiesSubscribers(t *testing.T) {
	store := &stubStore{cfg: testConfig("v1")}
	holder := NewHolder(store, nil, 0, logger.NewNop())

	var seen []string
	holder.OnChange(func(cfg *rules.Config) {
		seen = append(seen, cfg.Version)
	})

	_, err := holder.Current(context.Background())
	require.NoError(t, err)

	store.cfg = testConfig("v2")
	_, err = holder.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"v1", "v2"}, seen)
}

func TestFallbackConfigIsUsable(t *testing.T) {
	store := &stubStore{err: errors.ErrNoActiveConfig}
	holder := NewHolder(store, nil, 0, logger.NewNop())

	cfg := holder.Fallback()
	require.NotNil(t, cfg)
	assert.Equal(t, FallbackVersion, cfg.Version)
	assert.NotEmpty(t, cfg.Checksum)

	// Every built-in rule must compile
	for _, rule := range cfg.Rules {
		assert.NoError(t, rule.ParseErr, rule.Name)
	}

	total, _ := rules.Evaluate(cfg, domain.InputFactors{HasSanctionsHit: true, AmlComplete: true})
	assert.Equal(t, 80, total)
}

func TestChecksumIsStableAndContentSensitive(t *testing.T) {
	a := Checksum(testConfig("v1"))
	b := Checksum(testConfig("v1"))
	c := Checksum(testConfig("v2"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
