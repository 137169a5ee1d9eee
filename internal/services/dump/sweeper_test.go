package dump

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSweepKeepsToday(t *testing.T) {
	ast := assert.New(t)
	dir := t.TempDir()

	for _, name := range []string{"03.05.2024", "04.05.2024", "05.05.2024"} {
		ast.Nil(os.MkdirAll(filepath.Join(dir, name), os.ModePerm))
		ast.Nil(os.WriteFile(filepath.Join(dir, name, "10:00:00_backup.dump"), []byte("dump"), 0o644))
	}

	s := &Sweeper{Now: func() time.Time {
		return time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC)
	}}
	ast.Nil(s.Sweep(dir))

	entries, err := os.ReadDir(dir)
	ast.Nil(err)
	ast.Equal(1, len(entries))
	ast.Equal("04.05.2024", entries[0].Name())
	// the kept directory must stay intact
	_, err = os.Stat(filepath.Join(dir, "04.05.2024", "10:00:00_backup.dump"))
	ast.Nil(err)
}

func TestSweepMissingDir(t *testing.T) {
	ast := assert.New(t)

	s := &Sweeper{}
	ast.Nil(s.Sweep(filepath.Join(t.TempDir(), "not-there")))
}

func TestSweepEmptyDir(t *testing.T) {
	ast := assert.New(t)

	s := &Sweeper{}
	ast.Nil(s.Sweep(t.TempDir()))
}
