package service

import (
	"github.com/nsvirk/bhavapi/internal/config"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
	"github.com/robfig/cron/v3"
)

// Pruner drops expired cache entries
type Pruner interface {
	PruneCache() int
}

// CronService runs the scheduled maintenance jobs
type CronService struct {
	cfg     *config.Config
	c       *cron.Cron
	pruners map[string]Pruner
}

// NewCronService creates a new CronService pruning the given caches
func NewCronService(cfg *config.Config, pruners map[string]Pruner) *CronService {
	return &CronService{
		cfg:     cfg,
		c:       cron.New(cron.WithLocation(cfg.GetLocation())),
		pruners: pruners,
	}
}

// Start starts the cron service
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	// ------------------------------------------------------------
	// Add your SCHEDULED jobs here
	// ------------------------------------------------------------
	cs.addScheduledJob("Cache PRUNE Job", cs.cachePruneJob, cs.cfg.CachePruneSchedule)

	cs.c.Start()
}

// Stop stops the scheduler and waits for running jobs
func (cs *CronService) Stop() {
	<-cs.c.Stop().Done()
}

func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, func() {
		zaplogger.Debug("STARTED SCHEDULED JOB", zaplogger.Fields{
			"job": name,
		})
		job()
		zaplogger.Debug("COMPLETED SCHEDULED JOB", zaplogger.Fields{
			"job": name,
		})
	})
	if err != nil {
		zaplogger.Error("FAILED TO QUEUE SCHEDULED JOB", zaplogger.Fields{
			"job":      name,
			"schedule": schedule,
			"error":    err.Error(),
		})
		return
	}
	zaplogger.Info("QUEUED SCHEDULED job", zaplogger.Fields{
		"job":      name,
		"schedule": schedule,
	})
}

// cachePruneJob removes expired entries from every cache
func (cs *CronService) cachePruneJob() {
	jobName := "Cache PRUNE Job "
	for name, p := range cs.pruners {
		removed := p.PruneCache()
		if removed > 0 {
			zaplogger.Info(jobName, zaplogger.Fields{
				"cache":   name,
				"removed": removed,
			})
		}
	}
}
