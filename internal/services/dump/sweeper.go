package dump

import (
	"os"
	"path/filepath"
	"time"

	"github.com/willie68/GoBackupStore/pkg/model"
)

// Sweeper bounds local disk usage by deleting date bucketed directories
// that are not "today". Every granularity folder is swept independently.
type Sweeper struct {
	// Now the clock source, defaults to time.Now
	Now func() time.Time
}

// Sweep removes all immediate children of dir whose name is not today's
// formatted date. A missing dir is nothing to do.
func (s *Sweeper) Sweep(dir string) error {
	today := s.now().Format(model.PrefixDateFormat)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.Name() == today {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
