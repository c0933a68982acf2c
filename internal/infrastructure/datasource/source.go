package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/internal/infrastructure/storage/minio"
	"github.com/turtacn/druglike/pkg/errors"
)

// DefaultURL is the FDA approved drug list with generic names and SMILES.
const DefaultURL = "https://www.cureffi.org/wp-content/uploads/2013/10/drugs.txt"

// Kind selects a source implementation.
type Kind string

const (
	KindHTTP  Kind = "http"
	KindFile  Kind = "file"
	KindMinIO Kind = "minio"
)

// Config is the dataset section of the configuration.
type Config struct {
	Source    Kind          `mapstructure:"source"`
	URL       string        `mapstructure:"url"`
	Path      string        `mapstructure:"path"`
	ObjectKey string        `mapstructure:"object_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// HTTPSource downloads the dataset.
type HTTPSource struct {
	URL       string
	UserAgent string
	Client    *http.Client
	Logger    logging.Logger
}

// Name implements screening.Source.
func (s *HTTPSource) Name() string { return string(KindHTTP) }

// Fetch implements screening.Source.
func (s *HTTPSource) Fetch(ctx context.Context) (*compound.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetSourceInvalid, "invalid dataset url").WithDetail("url=" + s.URL)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetFetchFailed, "dataset download failed").WithDetail("url=" + s.URL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.New(errors.ErrCodeDatasetFetchFailed, "unexpected status from dataset url").
			WithDetail(fmt.Sprintf("url=%s status=%d", s.URL, resp.StatusCode))
	}
	return parse(resp.Body, s.Name(), s.Logger)
}

// FileSource reads the dataset from disk.
type FileSource struct {
	Path   string
	Logger logging.Logger
}

// Name implements screening.Source.
func (s *FileSource) Name() string { return string(KindFile) }

// Fetch implements screening.Source.
func (s *FileSource) Fetch(ctx context.Context) (*compound.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetFetchFailed, "failed to open dataset file").WithDetail("path=" + s.Path)
	}
	defer f.Close()
	return parse(f, s.Name(), s.Logger)
}

// ObjectSource reads the dataset from the object store.
type ObjectSource struct {
	Repo   minio.DatasetRepository
	Key    string
	Logger logging.Logger
}

// Name implements screening.Source.
func (s *ObjectSource) Name() string { return string(KindMinIO) }

// Fetch implements screening.Source.
func (s *ObjectSource) Fetch(ctx context.Context) (*compound.Dataset, error) {
	rc, err := s.Repo.Open(ctx, s.Key)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetFetchFailed, "failed to open dataset object").WithDetail("key=" + s.Key)
	}
	defer rc.Close()
	return parse(rc, s.Name(), s.Logger)
}

func parse(r io.Reader, source string, logger logging.Logger) (*compound.Dataset, error) {
	ds, stats, err := ParseTSV(r)
	if err != nil {
		return nil, err
	}
	logging.OrNop(logger).Debug("dataset parsed",
		logging.String("source", source),
		logging.Int("rows", stats.Rows),
		logging.Int("dropped", stats.Dropped))
	return ds, nil
}

// Options carries the collaborators New may need.
type Options struct {
	HTTPClient *http.Client
	Objects    minio.DatasetRepository
	Logger     logging.Logger
}

// New builds the source selected by cfg.
func New(cfg Config, opts Options) (Source, error) {
	switch cfg.Source {
	case KindHTTP, "":
		url := cfg.URL
		if url == "" {
			url = DefaultURL
		}
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: cfg.Timeout}
		}
		return &HTTPSource{URL: url, UserAgent: cfg.UserAgent, Client: client, Logger: opts.Logger}, nil
	case KindFile:
		if cfg.Path == "" {
			return nil, errors.New(errors.ErrCodeDatasetSourceInvalid, "dataset.path is required for file source")
		}
		return &FileSource{Path: cfg.Path, Logger: opts.Logger}, nil
	case KindMinIO:
		if opts.Objects == nil {
			return nil, errors.New(errors.ErrCodeDatasetSourceInvalid, "minio source requires an object store")
		}
		if cfg.ObjectKey == "" {
			return nil, errors.New(errors.ErrCodeDatasetSourceInvalid, "dataset.object_key is required for minio source")
		}
		return &ObjectSource{Repo: opts.Objects, Key: cfg.ObjectKey, Logger: opts.Logger}, nil
	}
	return nil, errors.New(errors.ErrCodeDatasetSourceInvalid, "unknown dataset source").WithDetail("source=" + string(cfg.Source))
}

// Source matches screening.Source without importing the application layer.
type Source interface {
	Fetch(ctx context.Context) (*compound.Dataset, error)
	Name() string
}
