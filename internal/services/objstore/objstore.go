// Package objstore contains the thin client used against the S3 compatible
// object store, wrapping object upload and the whole configuration
// lifecycle rule operations.
package objstore

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/pkg/errors"
	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/pkg/model"
)

// ErrNoLifecycle is returned by GetRules if the bucket has no lifecycle
// configuration at all. Callers treat this as an empty rule set, never as a
// fatal condition.
var ErrNoLifecycle = errors.New("no lifecycle configuration present")

const noSuchLifecycleCode = "NoSuchLifecycleConfiguration"

// Storage service for storing backup files into a S3 compatible storage
type Storage struct {
	Endpoint    string
	Insecure    bool
	Bucket      string
	AccessKey   string
	SecretKey   string
	minioClient minio.Client
	usetls      bool
}

// NewStorage creates the storage from the service configuration
func NewStorage(cfn config.Storage) *Storage {
	return &Storage{
		Endpoint:  cfn.Endpoint,
		Insecure:  cfn.Insecure,
		Bucket:    cfn.Bucket,
		AccessKey: cfn.AccessKey,
		SecretKey: cfn.SecretKey,
	}
}

// Init initialise this service, checking the bucket and trying to create it
func (s *Storage) Init() error {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return err
	}
	endpoint := u.Host + u.Path
	s.usetls = u.Scheme == "https"
	var options *minio.Options
	if s.Insecure {
		options = &minio.Options{
			Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
			Secure: s.usetls,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: true,
				TLSClientConfig:    &tls.Config{InsecureSkipVerify: true},
			},
		}
	} else {
		options = &minio.Options{
			Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
			Secure: s.usetls,
		}
	}
	client, err := minio.New(endpoint, options)
	if err != nil {
		return err
	}
	s.minioClient = *client

	ctx := context.Background()
	ok, err := s.minioClient.BucketExists(ctx, s.Bucket)
	if err != nil {
		return errors.Wrapf(err, "checking bucket %s", s.Bucket)
	}
	if !ok {
		err := s.minioClient.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{Region: "us-east-1", ObjectLocking: false})
		if err != nil {
			return errors.Wrapf(err, "creating bucket %s", s.Bucket)
		}
	}
	return nil
}

// Online reports whether the store answers requests, used by the health system
func (s *Storage) Online() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.minioClient.BucketExists(ctx, s.Bucket)
	return err == nil
}

// Upload puts a local file under the given key into the bucket
func (s *Storage) Upload(ctx context.Context, localPath, remoteKey string) error {
	_, err := s.minioClient.FPutObject(ctx, s.Bucket, remoteKey, localPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return errors.Wrapf(err, "uploading %s to %s", localPath, remoteKey)
	}
	return nil
}

// Remove deletes a single object from the bucket
func (s *Storage) Remove(ctx context.Context, remoteKey string) error {
	err := s.minioClient.RemoveObject(ctx, s.Bucket, remoteKey, minio.RemoveObjectOptions{})
	if err != nil {
		return errors.Wrapf(err, "removing %s", remoteKey)
	}
	return nil
}

// GetRules reads the whole lifecycle configuration of the bucket. A bucket
// without any configuration yields ErrNoLifecycle.
func (s *Storage) GetRules(ctx context.Context) (model.RuleSet, error) {
	cfg, err := s.minioClient.GetBucketLifecycle(ctx, s.Bucket)
	if err != nil {
		if minio.ToErrorResponse(err).Code == noSuchLifecycleCode {
			return nil, ErrNoLifecycle
		}
		return nil, errors.Wrap(err, "reading lifecycle configuration")
	}
	return fromLifecycle(cfg), nil
}

// ReplaceRules overwrites the whole lifecycle configuration of the bucket
func (s *Storage) ReplaceRules(ctx context.Context, rules model.RuleSet) error {
	err := s.minioClient.SetBucketLifecycle(ctx, s.Bucket, toLifecycle(rules))
	if err != nil {
		return errors.Wrap(err, "writing lifecycle configuration")
	}
	return nil
}

// ClearRules removes the lifecycle configuration entirely. This is the store
// side delete, not a rewrite with an empty rule list: a following GetRules
// yields ErrNoLifecycle.
func (s *Storage) ClearRules(ctx context.Context) error {
	// an empty configuration makes the client issue the lifecycle delete
	err := s.minioClient.SetBucketLifecycle(ctx, s.Bucket, &lifecycle.Configuration{})
	if err != nil {
		return errors.Wrap(err, "clearing lifecycle configuration")
	}
	return nil
}

func toLifecycle(rules model.RuleSet) *lifecycle.Configuration {
	cfg := lifecycle.Configuration{}
	for _, r := range rules {
		cfg.Rules = append(cfg.Rules, lifecycle.Rule{
			ID:     r.ID,
			Status: r.Status,
			RuleFilter: lifecycle.Filter{
				Prefix: r.Prefix,
			},
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(r.Days),
			},
		})
	}
	return &cfg
}

func fromLifecycle(cfg *lifecycle.Configuration) model.RuleSet {
	if cfg == nil {
		return nil
	}
	rules := make(model.RuleSet, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		prefix := r.RuleFilter.Prefix
		if prefix == "" {
			prefix = r.Prefix
		}
		rules = append(rules, model.ExpirationRule{
			ID:     r.ID,
			Status: r.Status,
			Prefix: prefix,
			Days:   int(r.Expiration.Days),
		})
	}
	return rules
}
