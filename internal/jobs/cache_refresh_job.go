package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"risk-register-service/internal/cache"
	"risk-register-service/internal/repository"
	"risk-register-service/internal/workflow"
)

// CacheRefreshJob periodically rewrites the org-prefix cache from the
// employee directory, so prefix changes from HR imports propagate without
// waiting for cache entries to expire.
type CacheRefreshJob struct {
	repo     *repository.DirectoryRepository
	orgCache *cache.OrgPrefixCache
	logger   *logrus.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCacheRefreshJob creates a new cache refresh job
func NewCacheRefreshJob(repo *repository.DirectoryRepository, orgCache *cache.OrgPrefixCache, logger *logrus.Logger) *CacheRefreshJob {
	return &CacheRefreshJob{
		repo:     repo,
		orgCache: orgCache,
		logger:   logger,
		interval: 15 * time.Minute,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the refresh loop
func (j *CacheRefreshJob) Start(ctx context.Context) {
	j.logger.Info("Org cache refresh job started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// Run immediately on start
	j.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			j.refresh(ctx)
		case <-j.stopCh:
			j.logger.Info("Org cache refresh job stopped")
			return
		case <-ctx.Done():
			j.logger.Info("Org cache refresh job context cancelled")
			return
		}
	}
}

// Stop signals the job to stop
func (j *CacheRefreshJob) Stop() {
	close(j.stopCh)
}

func (j *CacheRefreshJob) refresh(ctx context.Context) {
	if !j.orgCache.IsAvailable() {
		j.logger.Debug("Org cache unavailable, skipping refresh")
		return
	}

	const batchSize = 500
	offset := 0
	refreshed := 0

	for {
		employees, err := j.repo.ListEmployees(ctx, batchSize, offset)
		if err != nil {
			j.logger.Errorf("Failed to list employees for cache refresh: %v", err)
			return
		}
		if len(employees) == 0 {
			break
		}

		for _, emp := range employees {
			prefix := workflow.NormalizeOrgPrefix(emp.OrganizationName)
			if prefix == "" {
				continue
			}
			if err := j.orgCache.Set(ctx, emp.UserID, prefix); err != nil {
				j.logger.Warnf("Failed to cache org prefix for user %d: %v", emp.UserID, err)
				continue
			}
			refreshed++
		}

		if len(employees) < batchSize {
			break
		}
		offset += batchSize
	}

	j.logger.Infof("Org cache refresh completed, %d entries written", refreshed)
}
