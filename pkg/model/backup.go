package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DumpTimeFormat is the time of day layout used for naming dump files.
const DumpTimeFormat = "15:04:05"

// Granularity is the time bucketing of a backup series.
type Granularity string

const (
	// GranularityHour hourly backups
	GranularityHour Granularity = "hour"
	// GranularityDay daily backups
	GranularityDay Granularity = "day"
	// GranularityWeek weekly backups
	GranularityWeek Granularity = "week"
)

// ParseGranularity converts a string into a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(s)) {
	case GranularityHour:
		return GranularityHour, nil
	case GranularityDay:
		return GranularityDay, nil
	case GranularityWeek:
		return GranularityWeek, nil
	}
	return "", fmt.Errorf("unknown granularity: %s", s)
}

// BackupTarget describes one backup bucket, a single granularity on a single
// calendar date, captured at a single time of day.
type BackupTarget struct {
	Granularity Granularity `yaml:"granularity" json:"granularity"`
	// Dir is the date bucketed local directory the dump is written to.
	Dir string `yaml:"dir" json:"dir"`
	// Date is the capture date, formatted as PrefixDateFormat.
	Date string `yaml:"date" json:"date"`
	// Time is the capture time of day, formatted as DumpTimeFormat.
	Time string `yaml:"time" json:"time"`
}

// NewBackupTarget derives the target for a granularity under the given local
// root at the given wall clock time.
func NewBackupTarget(g Granularity, localRoot string, now time.Time) BackupTarget {
	date := now.Format(PrefixDateFormat)
	return BackupTarget{
		Granularity: g,
		Dir:         filepath.Join(localRoot, string(g), date),
		Date:        date,
		Time:        now.Format(DumpTimeFormat),
	}
}

// DumpFilename the name of the dump file inside Dir.
func (t BackupTarget) DumpFilename() string {
	return t.Time + "_backup.dump"
}

// DumpPath the full local path of the dump file.
func (t BackupTarget) DumpPath() string {
	return filepath.Join(t.Dir, t.DumpFilename())
}

// RemoteKey the object key the dump is uploaded to, below the remote root.
func (t BackupTarget) RemoteKey(remoteRoot string) string {
	return t.RemotePrefix(remoteRoot) + "/" + t.DumpFilename()
}

// RemotePrefix the store path prefix governing all dumps of this bucket,
// used as the scope of the bucket's expiration rule.
func (t BackupTarget) RemotePrefix(remoteRoot string) string {
	return fmt.Sprintf("%s/%s/%s", remoteRoot, t.Granularity, t.Date)
}
