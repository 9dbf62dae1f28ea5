package redislock_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/redislock"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// LockerIntegrationTestSuite runs the lease against a real Redis container.
type LockerIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	locker    *redislock.Locker
}

func (suite *LockerIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	host, err := container.Host(ctx)
	suite.Require().NoError(err)
	port, err := container.MappedPort(ctx, "6379")
	suite.Require().NoError(err)

	suite.client = redislock.NewClient(fmt.Sprintf("%s:%s", host, port.Port()), "", 0)
	suite.locker = redislock.NewLocker(suite.client)
}

func (suite *LockerIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushAll(context.Background()).Err())
}

func (suite *LockerIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		_ = suite.client.Close()
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *LockerIntegrationTestSuite) TestTryLock_SecondHolderIsRefused() {
	ctx := context.Background()

	release, ok, err := suite.locker.TryLock(ctx, "expiry_watchdog", time.Minute)
	suite.Require().NoError(err)
	suite.Require().True(ok)

	_, ok, err = suite.locker.TryLock(ctx, "expiry_watchdog", time.Minute)
	suite.Require().NoError(err)
	suite.False(ok)

	suite.Require().NoError(release(ctx))

	_, ok, err = suite.locker.TryLock(ctx, "expiry_watchdog", time.Minute)
	suite.Require().NoError(err)
	suite.True(ok)
}

func (suite *LockerIntegrationTestSuite) TestRelease_KeepsLeaseTakenOverAfterExpiry() {
	ctx := context.Background()

	staleRelease, ok, err := suite.locker.TryLock(ctx, "geocode_retry", 50*time.Millisecond)
	suite.Require().NoError(err)
	suite.Require().True(ok)

	suite.Eventually(func() bool {
		_, ok, err := suite.locker.TryLock(ctx, "geocode_retry", time.Minute)
		return err == nil && ok
	}, 2*time.Second, 20*time.Millisecond)

	suite.Require().NoError(staleRelease(ctx))

	exists, err := suite.client.Exists(ctx, fmt.Sprintf(redislock.KeyJobLock, "geocode_retry")).Result()
	suite.Require().NoError(err)
	suite.Equal(int64(1), exists)
}

func (suite *LockerIntegrationTestSuite) TestTryLock_IndependentNames() {
	ctx := context.Background()

	_, ok, err := suite.locker.TryLock(ctx, "courier_assignment", time.Minute)
	suite.Require().NoError(err)
	suite.True(ok)

	_, ok, err = suite.locker.TryLock(ctx, "expiry_watchdog", time.Minute)
	suite.Require().NoError(err)
	suite.True(ok)
}

func TestLockerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(LockerIntegrationTestSuite))
}
