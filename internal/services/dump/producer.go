// Package dump contains the local side of the backup pipeline, producing
// point in time database dumps into date bucketed directories and bounding
// the local disk usage of those directories.
package dump

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/internal/logging"
	"github.com/willie68/GoBackupStore/pkg/model"
)

var logger = logging.New().WithName("dump")

// Producer creates database dump files below a local root directory.
type Producer struct {
	RootPath string
	Database config.Database
	// Command the dump executable, defaults to pg_dump
	Command string
	// Now the clock source, defaults to time.Now
	Now func() time.Time
}

// NewProducer creates a dump producer from the backup configuration
func NewProducer(cfn config.Backup) *Producer {
	return &Producer{
		RootPath: cfn.RootPath,
		Database: cfn.Database,
	}
}

// Init makes sure the local root is present
func (p *Producer) Init() error {
	return os.MkdirAll(p.RootPath, os.ModePerm)
}

// Prepare captures the wall clock time and derives the date bucketed target
// for the granularity, creating the local directory. An already present
// directory is success, not an error.
func (p *Producer) Prepare(g model.Granularity) (model.BackupTarget, error) {
	t := model.NewBackupTarget(g, p.RootPath, p.now())
	if err := os.MkdirAll(t.Dir, os.ModePerm); err != nil {
		return model.BackupTarget{}, fmt.Errorf("creating folder %s: %w", t.Dir, err)
	}
	return t, nil
}

// Dump invokes the dump command, writing the dump file of the target. The
// exit status of the command is logged but not inspected further, the dump
// is fire and forget by contract.
func (p *Producer) Dump(t model.BackupTarget) error {
	file, err := os.Create(t.DumpPath())
	if err != nil {
		return fmt.Errorf("creating dump file %s: %w", t.DumpPath(), err)
	}
	defer file.Close()

	command := p.Command
	if command == "" {
		command = "pg_dump"
	}
	cmd := exec.Command(command, p.Database.URL())
	cmd.Stdout = file
	if err := cmd.Run(); err != nil {
		logger.Errorf("dump command for %s finished with: %v", t.DumpPath(), err)
	}
	return nil
}

func (p *Producer) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
