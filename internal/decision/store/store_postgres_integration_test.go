//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"remitguard/internal/decision"
	"remitguard/internal/decision/store"
	"remitguard/pkg/domain"
	"remitguard/pkg/platform/sentinel"
	"remitguard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	record := &decision.Record{
		ID:                domain.NewDecisionID(),
		Status:            decision.StatusReview,
		Reasons:           []string{"Amount 5000 USD exceeds threshold 1000"},
		Sender:            "11111111-1111-4111-8111-111111111111",
		Receiver:          "22222222-2222-4222-8222-222222222222",
		Amount:            "5000",
		Currency:          "USD",
		InputSnapshotHash: "abc123",
		CreatedAt:         time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Save(ctx, record))

	got, err := s.store.FindByID(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.Status, got.Status)
	s.Equal(record.Reasons, got.Reasons)
	s.Equal("5000", got.Amount)
	s.True(record.CreatedAt.Equal(got.CreatedAt))
}

func (s *PostgresStoreSuite) TestEmptyReasonsRoundTrip() {
	ctx := context.Background()
	record := &decision.Record{ID: domain.NewDecisionID(), Status: decision.StatusAllow, Amount: "1", Currency: "EUR", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.store.Save(ctx, record))

	got, err := s.store.FindByID(ctx, record.ID)
	s.Require().NoError(err)
	s.NotNil(got.Reasons)
	s.Empty(got.Reasons)
}

func (s *PostgresStoreSuite) TestFindUnknown() {
	_, err := s.store.FindByID(context.Background(), domain.NewDecisionID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
