package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/druglike/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
	desc   *DescriptorCache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock

	cfg := &RedisConfig{KeyPrefix: "test:", TTL: time.Hour}
	s.client = &Client{rdb: db, config: cfg, logger: logging.NewNopLogger()}
	s.cache = NewRedisCache(s.client, nil, WithPrefix("test:"), WithJitter(0))
	s.desc = NewDescriptorCache(s.client, nil, 0, WithJitter(0))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type entry struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	val := entry{Name: "drugs.txt", Rows: 1500}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:k").SetVal(string(raw))

	var got entry
	s.Require().NoError(s.cache.Get(context.Background(), "k", &got))
	s.Equal(val, got)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:k").RedisNil()

	var got entry
	err := s.cache.Get(context.Background(), "k", &got)
	s.Equal(ErrCacheMiss, err)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:k").SetErr(errors.New("connection reset"))

	var got entry
	err := s.cache.Get(context.Background(), "k", &got)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:k").SetVal("{not json")

	var got entry
	err := s.cache.Get(context.Background(), "k", &got)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_UsesDefaultTTL() {
	val := entry{Name: "x", Rows: 1}
	raw, _ := json.Marshal(val)
	s.mock.ExpectSet("test:k", raw, DefaultDescriptorTTL).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "k", val, 0))
}

func (s *CacheTestSuite) TestSet_Unserialisable() {
	err := s.cache.Set(context.Background(), "k", make(chan int), time.Minute)
	s.Equal(ErrSerializationFailed, err)
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "a", "b"))
	s.NoError(s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:a").SetVal(1)
	ok, err := s.cache.Exists(context.Background(), "a")
	s.NoError(err)
	s.True(ok)
}

func (s *CacheTestSuite) TestDescriptors_Miss() {
	s.mock.ExpectGet("test:" + DescriptorKey("CCO")).RedisNil()

	_, ok, err := s.desc.GetDescriptors(context.Background(), "CCO")
	s.NoError(err)
	s.False(ok)
}

func (s *CacheTestSuite) TestDescriptors_RoundTripValues() {
	want := molecule.Descriptors{MolWt: 46.0419, LogP: -0.0014, HBondDonors: 1, HBondAcceptors: 1, RotatableBonds: 0}
	raw, _ := json.Marshal([]float64{46.0419, -0.0014, 1, 1, 0})
	key := "test:" + DescriptorKey("CCO")

	s.mock.ExpectSet(key, raw, time.Hour).SetVal("OK")
	s.mock.ExpectGet(key).SetVal(string(raw))

	s.Require().NoError(s.desc.SetDescriptors(context.Background(), "CCO", want))
	got, ok, err := s.desc.GetDescriptors(context.Background(), "CCO")
	s.NoError(err)
	s.True(ok)
	s.Equal(want, got)
}

func (s *CacheTestSuite) TestDescriptors_MissingNeverWritten() {
	s.NoError(s.desc.SetDescriptors(context.Background(), "C1CC", molecule.Missing()))
}

func (s *CacheTestSuite) TestDescriptors_MalformedEntryIsMiss() {
	s.mock.ExpectGet("test:" + DescriptorKey("CCO")).SetVal("[1,2]")

	_, ok, err := s.desc.GetDescriptors(context.Background(), "CCO")
	s.NoError(err)
	s.False(ok)
}

func (s *CacheTestSuite) TestDescriptors_BackendErrorSurfaces() {
	s.mock.ExpectGet("test:" + DescriptorKey("CCO")).SetErr(errors.New("timeout"))

	_, ok, err := s.desc.GetDescriptors(context.Background(), "CCO")
	s.Error(err)
	s.False(ok)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestDescriptorKey(t *testing.T) {
	a := DescriptorKey("CCO")
	assert.Equal(t, a, DescriptorKey("CCO"))
	assert.NotEqual(t, a, DescriptorKey("OCC"))
	assert.Regexp(t, `^desc:v1:[0-9a-f]{64}$`, a)
}

func TestJitterTTL(t *testing.T) {
	c := newRedisCache(nil, nil)
	for i := 0; i < 100; i++ {
		got := c.jitterTTL(time.Hour)
		require.GreaterOrEqual(t, got, 54*time.Minute)
		require.LessOrEqual(t, got, 66*time.Minute)
	}
	assert.Equal(t, time.Duration(0), c.jitterTTL(0))

	WithJitter(0)(c)
	assert.Equal(t, time.Hour, c.jitterTTL(time.Hour))
}
