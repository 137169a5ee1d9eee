package backman

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/internal/services/dump"
	"github.com/willie68/GoBackupStore/internal/services/lifecycle"
	"github.com/willie68/GoBackupStore/internal/services/objstore"
	"github.com/willie68/GoBackupStore/pkg/model"
)

type fakeUploader struct {
	uploads map[string]string
}

func (f *fakeUploader) Upload(_ context.Context, localPath, remoteKey string) error {
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	f.uploads[remoteKey] = localPath
	return nil
}

type memRuleStore struct {
	rules    model.RuleSet
	hasRules bool
}

func (m *memRuleStore) GetRules(_ context.Context) (model.RuleSet, error) {
	if !m.hasRules {
		return nil, objstore.ErrNoLifecycle
	}
	return m.rules, nil
}

func (m *memRuleStore) ReplaceRules(_ context.Context, rules model.RuleSet) error {
	m.rules = rules
	m.hasRules = true
	return nil
}

func (m *memRuleStore) ClearRules(_ context.Context) error {
	m.rules = nil
	m.hasRules = false
	return nil
}

func testManager(t *testing.T) (*BackupManager, *fakeUploader, *memRuleStore) {
	now := func() time.Time {
		return time.Date(2024, 1, 3, 14, 7, 9, 0, time.UTC)
	}
	cfn := config.Backup{
		RootPath:   t.TempDir(),
		RemoteRoot: "backup_database",
		Database: config.Database{
			Host: "localhost", Port: 5432, User: "tester", Password: "secret", Name: "app",
		},
		Granularities: []config.Granularity{
			{Name: "hour", Days: 3},
			{Name: "day", Days: 5},
		},
	}
	producer := dump.NewProducer(cfn)
	producer.Command = "echo"
	producer.Now = now
	store := &fakeUploader{}
	rules := &memRuleStore{}
	engine := lifecycle.NewEngine(rules)
	bm := New(cfn, producer, &dump.Sweeper{Now: now}, store, engine)
	bm.Now = now
	return bm, store, rules
}

func TestBackup(t *testing.T) {
	ast := assert.New(t)
	bm, store, _ := testManager(t)

	ast.Nil(bm.Backup(context.Background(), model.GranularityHour))
	ast.Equal(1, len(store.uploads))

	local, ok := store.uploads["backup_database/hour/03.01.2024/14:07:09_backup.dump"]
	ast.True(ok)
	_, err := os.Stat(local)
	ast.Nil(err, "the uploaded dump must exist locally")
}

func TestRegisterRetention(t *testing.T) {
	ast := assert.New(t)
	bm, _, rules := testManager(t)

	ast.Nil(bm.RegisterRetention(context.Background(), model.GranularityHour))
	ast.Equal(1, len(rules.rules))
	ast.Equal("backup_database/hour/03.01.2024", rules.rules[0].Prefix)
	ast.Equal(3, rules.rules[0].Days)
}

func TestRegisterRetentionUnknownGranularity(t *testing.T) {
	ast := assert.New(t)
	bm, _, rules := testManager(t)

	ast.NotNil(bm.RegisterRetention(context.Background(), model.GranularityWeek))
	ast.Empty(rules.rules)
}

func TestRun(t *testing.T) {
	ast := assert.New(t)
	bm, store, rules := testManager(t)

	ast.Nil(bm.Run(context.Background(), model.GranularityDay))
	ast.Equal(1, len(store.uploads))
	ast.Equal(1, len(rules.rules))
	ast.Equal(5, rules.rules[0].Days)
}

func TestSweepLocal(t *testing.T) {
	ast := assert.New(t)
	bm, _, _ := testManager(t)

	old := filepath.Join(bm.Producer.RootPath, "hour", "01.01.2024")
	ast.Nil(os.MkdirAll(old, os.ModePerm))
	today := filepath.Join(bm.Producer.RootPath, "hour", "03.01.2024")
	ast.Nil(os.MkdirAll(today, os.ModePerm))

	ast.Nil(bm.SweepLocal(model.GranularityHour))

	_, err := os.Stat(old)
	ast.True(os.IsNotExist(err))
	_, err = os.Stat(today)
	ast.Nil(err)
}
