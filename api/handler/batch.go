package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/newsgrab/batch"
	"github.com/use-agent/newsgrab/cache"
	"github.com/use-agent/newsgrab/models"
	"github.com/use-agent/newsgrab/webhook"
)

// jobTTL is how long finished jobs stay queryable.
const jobTTL = time.Hour

// Jobs owns batch jobs and the goroutines that run them.
type Jobs struct {
	runner   *batch.Runner
	cache    *cache.Cache
	notifier *webhook.Notifier

	mu   sync.Mutex
	jobs map[string]*models.BatchJob

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJobs creates a job store running batches with runner. cc and notifier
// may be nil.
func NewJobs(runner *batch.Runner, cc *cache.Cache, notifier *webhook.Notifier) *Jobs {
	ctx, cancel := context.WithCancel(context.Background())
	j := &Jobs{
		runner:   runner,
		cache:    cc,
		notifier: notifier,
		jobs:     make(map[string]*models.BatchJob),
		ctx:      ctx,
		cancel:   cancel,
	}
	j.wg.Add(1)
	go j.cleanupLoop(5 * time.Minute)
	return j
}

// Close cancels running batches and waits for them to stop.
func (j *Jobs) Close() {
	j.cancel()
	j.wg.Wait()
}

// Wait blocks until job id has finished or the store is closed.
func (j *Jobs) Wait(id string) {
	for {
		snap, ok := j.Snapshot(id)
		if !ok || snap.Status != "processing" {
			return
		}
		select {
		case <-j.ctx.Done():
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Start registers a job for urls and runs it in the background.
func (j *Jobs) Start(urls []string, webhookURL, webhookSecret string) *models.BatchJob {
	job := &models.BatchJob{
		ID:        "batch-" + uuid.NewString(),
		Status:    "processing",
		Total:     len(urls),
		Results:   make([]*models.BatchItem, len(urls)),
		CreatedAt: time.Now().Unix(),
	}

	j.mu.Lock()
	j.jobs[job.ID] = job
	j.mu.Unlock()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.run(job, urls, webhookURL, webhookSecret)
	}()
	return job
}

// Snapshot returns a copy of job id safe to serialize.
func (j *Jobs) Snapshot(id string) (*models.BatchStatusResponse, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	job, ok := j.jobs[id]
	if !ok {
		return nil, false
	}
	results := make([]*models.BatchItem, 0, len(job.Results))
	for _, r := range job.Results {
		if r != nil {
			results = append(results, r)
		}
	}
	return &models.BatchStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Completed: job.Completed,
		Total:     job.Total,
		Results:   results,
	}, true
}

func (j *Jobs) run(job *models.BatchJob, urls []string, webhookURL, webhookSecret string) {
	results := j.runner.Run(j.ctx, urls, func(i int, r *batch.Result) {
		item := toBatchItem(r)
		if r.OK() && j.cache != nil {
			j.cache.Set(r.URL, item.Article)
		}

		j.mu.Lock()
		job.Results[i] = item
		job.Completed++
		j.mu.Unlock()
	})

	summary := batch.Summarize(results)
	j.mu.Lock()
	job.Status = summary.Status()
	j.mu.Unlock()

	slog.Info("batch job finished",
		"id", job.ID,
		"status", summary.Status(),
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"withImage", summary.WithImage,
		"total", summary.Total,
	)

	if webhookURL != "" && j.notifier != nil {
		snap, _ := j.Snapshot(job.ID)
		event := webhook.NewEvent(webhook.EventBatchCompleted, job.ID, snap)
		if err := j.notifier.DeliverWithRetry(j.ctx, webhookURL, webhookSecret, event); err != nil {
			slog.Warn("batch webhook not delivered", "id", job.ID, "error", err)
		}
	}
}

func (j *Jobs) cleanupLoop(interval time.Duration) {
	defer j.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-jobTTL).Unix()
			j.mu.Lock()
			for id, job := range j.jobs {
				if job.Status != "processing" && job.CreatedAt < cutoff {
					delete(j.jobs, id)
				}
			}
			j.mu.Unlock()
		}
	}
}

func toBatchItem(r *batch.Result) *models.BatchItem {
	item := &models.BatchItem{URL: r.URL, Success: r.OK()}
	if r.OK() {
		item.Article = models.Summarize(r.Capture.Record, r.Capture.Dir)
	} else {
		item.Error = models.AsCaptureError(r.Err).ToDetail()
	}
	return item
}

// PostBatch returns a handler for POST /api/v1/batch. URLs are captured
// one after another in the background; poll GET /api/v1/batch/:id.
func PostBatch(jobs *Jobs) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		job := jobs.Start(req.URLs, req.WebhookURL, req.WebhookSecret)
		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     job.ID,
			Status: "processing",
			Total:  job.Total,
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch(jobs *Jobs) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, ok := jobs.Snapshot(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch job not found",
				},
			})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
