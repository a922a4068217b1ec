package pagecache

import (
	"context"
	"errors"

	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
)

const sweepJobName = "page_cache_sweep"

// SweepJob removes expired pages on the cron cadence.
type SweepJob struct {
	cache Cache
	logg  *logger.Logger
}

func NewSweepJob(cache Cache, logg *logger.Logger) (*SweepJob, error) {
	if cache == nil {
		return nil, errors.New("page cache required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &SweepJob{cache: cache, logg: logg}, nil
}

func (j *SweepJob) Name() string { return sweepJobName }

func (j *SweepJob) Run(ctx context.Context) error {
	removed, err := j.cache.Sweep(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "expired pages swept")
	}
	return nil
}
