package objstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/pkg/model"
)

func TestRuleConversion(t *testing.T) {
	ast := assert.New(t)

	rules := model.RuleSet{
		{ID: "a", Prefix: "backup_database/hour/01.01.2024", Status: model.RuleStatusEnabled, Days: 3},
		{ID: "b", Prefix: "backup_database/day/01.01.2024", Status: model.RuleStatusEnabled, Days: 5},
	}

	cfg := toLifecycle(rules)
	ast.Equal(2, len(cfg.Rules))
	ast.Equal("backup_database/hour/01.01.2024", cfg.Rules[0].RuleFilter.Prefix)
	ast.Equal(lifecycle.ExpirationDays(3), cfg.Rules[0].Expiration.Days)
	ast.Equal("Enabled", cfg.Rules[0].Status)

	back := fromLifecycle(cfg)
	ast.Equal(rules, back)
}

func TestFromLifecycleLegacyPrefix(t *testing.T) {
	ast := assert.New(t)

	// older configurations carry the prefix on the rule, not the filter
	cfg := &lifecycle.Configuration{
		Rules: []lifecycle.Rule{
			{ID: "a", Status: "Enabled", Prefix: "backup_database/hour/01.01.2024", Expiration: lifecycle.Expiration{Days: 3}},
		},
	}
	rules := fromLifecycle(cfg)
	ast.Equal(1, len(rules))
	ast.Equal("backup_database/hour/01.01.2024", rules[0].Prefix)
}

func TestFromLifecycleNil(t *testing.T) {
	ast := assert.New(t)
	ast.Nil(fromLifecycle(nil))
}

// integration test against a local minio, start one with
// docker run -p 9000:9000 minio/minio server /data
func TestStorageLifecycle(t *testing.T) {
	t.SkipNow()
	ast := assert.New(t)

	stg := NewStorage(config.Storage{
		Endpoint:  "http://127.0.0.1:9000",
		Bucket:    "backups",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	ast.Nil(stg.Init())
	ast.True(stg.Online())
	ctx := context.Background()

	ast.Nil(stg.ClearRules(ctx))
	_, err := stg.GetRules(ctx)
	ast.ErrorIs(err, ErrNoLifecycle)

	rules := model.RuleSet{
		{ID: "a", Prefix: "backup_database/hour/01.01.2024", Status: model.RuleStatusEnabled, Days: 3},
	}
	ast.Nil(stg.ReplaceRules(ctx, rules))
	got, err := stg.GetRules(ctx)
	ast.Nil(err)
	ast.Equal(rules, got)

	file := filepath.Join(t.TempDir(), "10:00:00_backup.dump")
	ast.Nil(os.WriteFile(file, []byte("dump"), 0o644))
	ast.Nil(stg.Upload(ctx, file, "backup_database/hour/01.01.2024/10:00:00_backup.dump"))
	ast.Nil(stg.Remove(ctx, "backup_database/hour/01.01.2024/10:00:00_backup.dump"))

	ast.Nil(stg.ClearRules(ctx))
	_, err = stg.GetRules(ctx)
	ast.ErrorIs(err, ErrNoLifecycle)
}
