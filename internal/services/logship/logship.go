// Package logship uploads the compressed log bundles the rotating logger
// leaves behind. Local retention of the bundles stays with the logging
// subsystem itself, the shipper only copies them out.
package logship

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/internal/logging"
	"github.com/willie68/GoBackupStore/pkg/model"
)

var logger = logging.New().WithName("logship")

// bundleStampFormat is the date part of the rotated bundle names
const bundleStampFormat = "2006-01-02"

// Uploader the slice of the object store the shipper needs
type Uploader interface {
	Upload(ctx context.Context, localPath, remoteKey string) error
}

// Shipper uploads today's compressed log bundles below a date scoped
// store prefix.
type Shipper struct {
	Folder     string
	RemoteRoot string
	Store      Uploader
	// Now the clock source, defaults to time.Now
	Now func() time.Time
}

// NewShipper creates a log shipper from the logship configuration
func NewShipper(cfn config.Logship, store Uploader) *Shipper {
	return &Shipper{
		Folder:     cfn.Folder,
		RemoteRoot: cfn.RemoteRoot,
		Store:      store,
	}
}

// ShipToday uploads every compressed bundle of the current day to
// <remoteroot>/<date>/<bundle>. The matching prefix is also the scope of
// the logs expiration rule registered separately.
func (s *Shipper) ShipToday(ctx context.Context) error {
	now := s.now()
	entries, err := os.ReadDir(s.Folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	stamp := now.Format(bundleStampFormat)
	prefix := s.RemotePrefix(now)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".gz") || !strings.Contains(name, stamp) {
			continue
		}
		local := filepath.Join(s.Folder, name)
		key := prefix + "/" + name
		if err := s.Store.Upload(ctx, local, key); err != nil {
			return err
		}
		logger.Infof("shipped log bundle %s to %s", name, key)
	}
	return nil
}

// RemotePrefix the store path prefix of the given day's bundles
func (s *Shipper) RemotePrefix(now time.Time) string {
	return s.RemoteRoot + "/" + now.Format(model.PrefixDateFormat)
}

// TodayPrefix the store path prefix of the current day's bundles, the
// scope of the logs expiration rule
func (s *Shipper) TodayPrefix() string {
	return s.RemotePrefix(s.now())
}

func (s *Shipper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
