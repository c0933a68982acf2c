package minio

import (
	"context"
	stderrors "errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/errors"
)

// MockObjectAPI implements ObjectAPI with testify/mock.
type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]minio.BucketInfo), args.Error(1)
}

func (m *MockObjectAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockObjectAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return m.Called(ctx, bucketName, opts).Get(0).(<-chan minio.ObjectInfo)
}

func (m *MockObjectAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockObjectAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockObjectAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expiry, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*url.URL), args.Error(1)
}

type ClientTestSuite struct {
	suite.Suite
	api *MockObjectAPI
	log logging.Logger
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(MockObjectAPI)
	s.log = logging.NewNopLogger()
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := &MinIOConfig{}
	applyDefaults(cfg)
	s.Equal("us-east-1", cfg.Region)
	s.Equal("druglike-datasets", cfg.Bucket)
	s.Equal(time.Hour, cfg.PresignExpiry)
	s.Equal(10*time.Second, cfg.ConnectTimeout)
}

func (s *ClientTestSuite) TestNew_CreatesMissingBucket() {
	s.api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil)
	s.api.On("BucketExists", mock.Anything, "compounds").Return(false, nil)
	s.api.On("MakeBucket", mock.Anything, "compounds", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)

	c, err := newWithAPI(context.Background(), s.api, &MinIOConfig{Bucket: "compounds"}, s.log)
	s.Require().NoError(err)
	s.Equal("compounds", c.Bucket())
	s.api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestNew_ExistingBucket() {
	s.api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{{Name: "druglike-datasets"}}, nil)
	s.api.On("BucketExists", mock.Anything, "druglike-datasets").Return(true, nil)

	_, err := newWithAPI(context.Background(), s.api, &MinIOConfig{}, s.log)
	s.Require().NoError(err)
	s.api.AssertNotCalled(s.T(), "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientTestSuite) TestNew_Unreachable() {
	s.api.On("ListBuckets", mock.Anything).Return(nil, stderrors.New("connection refused"))
	_, err := newWithAPI(context.Background(), s.api, &MinIOConfig{}, s.log)
	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func (s *ClientTestSuite) TestHealthCheck() {
	s.api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil)
	s.api.On("BucketExists", mock.Anything, "druglike-datasets").Return(true, nil)
	c := &MinIOClient{client: s.api, config: &MinIOConfig{Bucket: "druglike-datasets"}, logger: s.log}

	status, err := c.HealthCheck(context.Background())
	s.Require().NoError(err)
	s.True(status.Healthy)
	s.True(status.BucketExists)
}

func (s *ClientTestSuite) TestPresignedGetURL() {
	u, _ := url.Parse("http://minio:9000/druglike-datasets/drugs.tsv?X-Amz-Signature=abc")
	s.api.On("PresignedGetObject", mock.Anything, "druglike-datasets", "drugs.tsv", time.Hour, url.Values(nil)).Return(u, nil)
	c := &MinIOClient{client: s.api, config: &MinIOConfig{Bucket: "druglike-datasets", PresignExpiry: time.Hour}, logger: s.log}

	got, err := c.PresignedGetURL(context.Background(), "drugs.tsv", 0)
	s.Require().NoError(err)
	s.Contains(got, "X-Amz-Signature")
}

func (s *ClientTestSuite) TestClosedClient() {
	c := &MinIOClient{client: s.api, config: &MinIOConfig{}, logger: s.log}
	s.Require().NoError(c.Close())
	_, err := c.HealthCheck(context.Background())
	s.True(errors.IsCode(err, errors.ErrCodeServiceUnavailable))
	s.api.AssertNotCalled(s.T(), "ListBuckets", mock.Anything)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestSDKAdapterSatisfiesObjectAPI(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{Region: "us-east-1"})
	require.NoError(t, err)
	var api ObjectAPI = sdkAPI{client}
	assert.NotNil(t, api)
}
