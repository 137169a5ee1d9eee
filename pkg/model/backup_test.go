package model

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseGranularity(t *testing.T) {
	ast := assert.New(t)

	g, err := ParseGranularity("hour")
	ast.Nil(err)
	ast.Equal(GranularityHour, g)

	g, err = ParseGranularity("Week")
	ast.Nil(err)
	ast.Equal(GranularityWeek, g)

	_, err = ParseGranularity("month")
	ast.NotNil(err)

	_, err = ParseGranularity("")
	ast.NotNil(err)
}

func TestNewBackupTarget(t *testing.T) {
	ast := assert.New(t)

	now := time.Date(2024, 1, 3, 14, 7, 9, 0, time.UTC)
	tgt := NewBackupTarget(GranularityHour, "/var/backups", now)

	ast.Equal(GranularityHour, tgt.Granularity)
	ast.Equal("03.01.2024", tgt.Date)
	ast.Equal("14:07:09", tgt.Time)
	ast.Equal(filepath.Join("/var/backups", "hour", "03.01.2024"), tgt.Dir)
}

func TestBackupTargetPaths(t *testing.T) {
	ast := assert.New(t)

	now := time.Date(2024, 1, 3, 14, 7, 9, 0, time.UTC)
	tgt := NewBackupTarget(GranularityDay, "/var/backups", now)

	ast.Equal("14:07:09_backup.dump", tgt.DumpFilename())
	ast.Equal(filepath.Join(tgt.Dir, "14:07:09_backup.dump"), tgt.DumpPath())
	ast.Equal("backup_database/day/03.01.2024", tgt.RemotePrefix("backup_database"))
	ast.Equal("backup_database/day/03.01.2024/14:07:09_backup.dump", tgt.RemoteKey("backup_database"))
}
