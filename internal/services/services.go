package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/do"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/internal/health"
	"github.com/willie68/GoBackupStore/internal/logging"
	"github.com/willie68/GoBackupStore/internal/services/backman"
	"github.com/willie68/GoBackupStore/internal/services/dump"
	"github.com/willie68/GoBackupStore/internal/services/lifecycle"
	"github.com/willie68/GoBackupStore/internal/services/logship"
	"github.com/willie68/GoBackupStore/internal/services/objstore"
	"github.com/willie68/GoBackupStore/internal/services/scheduler"
	"github.com/willie68/GoBackupStore/pkg/model"
)

var logger = logging.New().WithName("services")

// service names in the di registry
const (
	DoStorage  = "storage"
	DoEngine   = "engine"
	DoBackMan  = "backman"
	DoShipper  = "shipper"
	DoSchedule = "schedule"
	DoHealth   = "health"
)

// check interface compatibility
var _ lifecycle.RuleStore = &objstore.Storage{}
var _ logship.Uploader = &objstore.Storage{}
var _ backman.Uploader = &objstore.Storage{}

var (
	storage   *objstore.Storage
	engine    *lifecycle.Engine
	backMan   *backman.BackupManager
	shipper   *logship.Shipper
	schedule  *scheduler.Scheduler
	healthSys *health.SHealth
)

// Init builds and wires all services from the configuration and starts the
// schedule
func Init(cfg config.Config) error {
	var err error
	healthSys, err = health.NewHealthSystem(cfg.HealthCheck)
	if err != nil {
		return err
	}
	do.ProvideNamedValue[*health.SHealth](nil, DoHealth, healthSys)

	storage = objstore.NewStorage(cfg.Storage)
	if err := storage.Init(); err != nil {
		return fmt.Errorf("could not initialise object storage: %w", err)
	}
	do.ProvideNamedValue[*objstore.Storage](nil, DoStorage, storage)

	engine = lifecycle.NewEngine(storage)
	do.ProvideNamedValue[*lifecycle.Engine](nil, DoEngine, engine)

	producer := dump.NewProducer(cfg.Backup)
	if err := producer.Init(); err != nil {
		return fmt.Errorf("could not initialise dump producer: %w", err)
	}
	sweeper := &dump.Sweeper{}

	backMan = backman.New(cfg.Backup, producer, sweeper, storage, engine)
	do.ProvideNamedValue[*backman.BackupManager](nil, DoBackMan, backMan)

	shipper = logship.NewShipper(cfg.Backup.Logship, storage)
	do.ProvideNamedValue[*logship.Shipper](nil, DoShipper, shipper)

	registerHealthChecks(cfg)

	schedule = scheduler.New()
	if err := addJobs(cfg.Backup); err != nil {
		return err
	}
	do.ProvideNamedValue[*scheduler.Scheduler](nil, DoSchedule, schedule)
	schedule.Start()
	return nil
}

// addJobs registers every scheduled operation. The specs are staggered by
// configuration, that staggering is the only guard against concurrent rule
// writes, see the default config.
func addJobs(cfn config.Backup) error {
	for _, g := range cfn.Granularities {
		gran, err := model.ParseGranularity(g.Name)
		if err != nil {
			return err
		}
		gcfn := g
		err = schedule.AddJob("backup_"+g.Name, gcfn.BackupSpec, func() error {
			return backMan.Backup(context.Background(), gran)
		})
		if err != nil {
			return err
		}
		err = schedule.AddJob("register_"+g.Name, gcfn.RegisterSpec, func() error {
			return backMan.RegisterRetention(context.Background(), gran)
		})
		if err != nil {
			return err
		}
		err = schedule.AddJob("sweep_"+g.Name, gcfn.SweepSpec, func() error {
			return backMan.SweepLocal(gran)
		})
		if err != nil {
			return err
		}
	}
	err := schedule.AddJob("ship_logs", cfn.Logship.ShipSpec, func() error {
		return shipper.ShipToday(context.Background())
	})
	if err != nil {
		return err
	}
	err = schedule.AddJob("register_logs", cfn.Logship.RegisterSpec, func() error {
		return engine.RegisterPrefix(context.Background(), shipper.TodayPrefix(), cfn.Logship.Days)
	})
	if err != nil {
		return err
	}
	return schedule.AddJob("prune_rules", cfn.PruneSpec, func() error {
		return engine.PruneExpired(context.Background())
	})
}

func registerHealthChecks(cfg config.Config) {
	healthSys.Register(health.CheckFunc{
		CheckName: "objectstore",
		Fn: func() error {
			if !storage.Online() {
				return errors.New("object store not reachable")
			}
			return nil
		},
	})
	healthSys.Register(health.CheckFunc{
		CheckName: "diskspace",
		Fn: func() error {
			usage, err := disk.Usage(cfg.Backup.RootPath)
			if err != nil {
				return err
			}
			if usage.Free < cfg.HealthCheck.MinFreeSpace {
				return fmt.Errorf("backup root low on space: %d bytes free", usage.Free)
			}
			return nil
		},
	})
}

// GetBackupManager returning the backup manager
func GetBackupManager() (*backman.BackupManager, error) {
	if backMan == nil {
		return nil, errors.New("no backup manager present")
	}
	return backMan, nil
}

// GetEngine returning the lifecycle rule engine
func GetEngine() (*lifecycle.Engine, error) {
	if engine == nil {
		return nil, errors.New("no rule engine present")
	}
	return engine, nil
}

// GetStorage returning the object storage
func GetStorage() (*objstore.Storage, error) {
	if storage == nil {
		return nil, errors.New("no object storage present")
	}
	return storage, nil
}

// GetHealthSystem returning the health system
func GetHealthSystem() (*health.SHealth, error) {
	if healthSys == nil {
		return nil, errors.New("no health system present")
	}
	return healthSys, nil
}

// Close shuts down the schedule and the health system
func Close() {
	if schedule != nil {
		schedule.Stop()
	}
	if healthSys != nil {
		healthSys.Close()
	}
}
