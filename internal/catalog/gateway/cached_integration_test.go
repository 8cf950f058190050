//go:build integration

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"refurb/internal/catalog/models"
	"refurb/pkg/testutil/containers"
)

type CachedIntegrationSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backend *countingGateway
	cached  *Cached
}

func TestCachedIntegrationSuite(t *testing.T) {
	suite.Run(t, new(CachedIntegrationSuite))
}

func (s *CachedIntegrationSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CachedIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backend = &countingGateway{Simulated: newTestSimulated()}
	cached, err := NewCached(s.backend, s.redis.Client, WithCacheTTL(time.Minute))
	s.Require().NoError(err)
	s.cached = cached
}

func (s *CachedIntegrationSuite) TestRepeatedPageIsServedFromRedis() {
	ctx := context.Background()
	first, err := s.cached.ListProducts(ctx, models.DefaultFilter(), models.DefaultPagination())
	s.Require().NoError(err)
	second, err := s.cached.ListProducts(ctx, models.DefaultFilter(), models.DefaultPagination())
	s.Require().NoError(err)

	s.Equal(int32(1), s.backend.lists.Load())
	s.Equal(first.Total, second.Total)
	s.Require().Len(second.Products, len(first.Products))
	s.Equal(first.Products[0].ID, second.Products[0].ID)
	s.True(first.Products[0].Price.Equal(second.Products[0].Price))
}

func (s *CachedIntegrationSuite) TestMutationInvalidatesPages() {
	ctx := context.Background()
	_, err := s.cached.ListProducts(ctx, models.Filter{Status: "pending"}, models.DefaultPagination())
	s.Require().NoError(err)

	s.Require().NoError(s.cached.SetProductStatus(ctx, SeedProductID(1), models.StatusApproved, ""))

	res, err := s.cached.ListProducts(ctx, models.Filter{Status: "pending"}, models.DefaultPagination())
	s.Require().NoError(err)
	s.Equal(int32(2), s.backend.lists.Load())
	s.Equal(1, res.Total)
}

func (s *CachedIntegrationSuite) TestFailedMutationKeepsPages() {
	ctx := context.Background()
	_, err := s.cached.ListProducts(ctx, models.DefaultFilter(), models.DefaultPagination())
	s.Require().NoError(err)

	s.Error(s.cached.SetProductStatus(ctx, SeedProductID(2), models.StatusRejected, ""))

	_, err = s.cached.ListProducts(ctx, models.DefaultFilter(), models.DefaultPagination())
	s.Require().NoError(err)
	s.Equal(int32(1), s.backend.lists.Load())
}
