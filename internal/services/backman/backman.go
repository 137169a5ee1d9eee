// Package backman orchestrates the backup pipeline, dump, upload and
// expiration rule registration per granularity.
package backman

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/internal/logging"
	"github.com/willie68/GoBackupStore/internal/services/dump"
	"github.com/willie68/GoBackupStore/internal/services/lifecycle"
	"github.com/willie68/GoBackupStore/pkg/model"
)

var logger = logging.New().WithName("backman")

// Uploader the slice of the object store the pipeline needs
type Uploader interface {
	Upload(ctx context.Context, localPath, remoteKey string) error
}

// BackupManager runs the backup pipeline for all configured granularities
type BackupManager struct {
	Producer *dump.Producer
	Sweeper  *dump.Sweeper
	Store    Uploader
	Engine   *lifecycle.Engine

	cfn config.Backup
	// Now the clock source, defaults to time.Now
	Now func() time.Time
}

// New creates the backup manager
func New(cfn config.Backup, producer *dump.Producer, sweeper *dump.Sweeper, store Uploader, engine *lifecycle.Engine) *BackupManager {
	return &BackupManager{
		Producer: producer,
		Sweeper:  sweeper,
		Store:    store,
		Engine:   engine,
		cfn:      cfn,
	}
}

// Backup produces a dump for the granularity and uploads it
func (b *BackupManager) Backup(ctx context.Context, g model.Granularity) error {
	t, err := b.Producer.Prepare(g)
	if err != nil {
		return err
	}
	if err := b.Producer.Dump(t); err != nil {
		return err
	}
	key := t.RemoteKey(b.cfn.RemoteRoot)
	if err := b.Store.Upload(ctx, t.DumpPath(), key); err != nil {
		return err
	}
	logger.Infof("backup %s uploaded to %s", t.DumpPath(), key)
	return nil
}

// RegisterRetention attaches the expiration rule for the granularity's
// current date prefix
func (b *BackupManager) RegisterRetention(ctx context.Context, g model.Granularity) error {
	gcfn, ok := b.cfn.Granularity(string(g))
	if !ok {
		return fmt.Errorf("granularity %s not configured", g)
	}
	t := model.NewBackupTarget(g, b.cfn.RootPath, b.now())
	return b.Engine.RegisterPrefix(ctx, t.RemotePrefix(b.cfn.RemoteRoot), gcfn.Days)
}

// Run runs the full pipeline for one granularity, dump, upload and rule
// registration, used by the admin api
func (b *BackupManager) Run(ctx context.Context, g model.Granularity) error {
	if err := b.Backup(ctx, g); err != nil {
		return err
	}
	return b.RegisterRetention(ctx, g)
}

// SweepLocal removes the outdated local date directories of one granularity
func (b *BackupManager) SweepLocal(g model.Granularity) error {
	return b.Sweeper.Sweep(filepath.Join(b.cfn.RootPath, string(g)))
}

// Granularities lists the configured backup series
func (b *BackupManager) Granularities() []config.Granularity {
	return b.cfn.Granularities
}

func (b *BackupManager) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}
