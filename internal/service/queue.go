package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/model"
)

// QueueService fronts the dispatcher with fire-and-forget job semantics.
// Each enqueue spawns one goroutine; there is no persistent job store, so
// in-flight jobs do not survive a restart.
type QueueService struct {
	dispatcher *Dispatcher

	mu   sync.Mutex
	jobs map[string]*DispatchJob
	wg   sync.WaitGroup
}

// DispatchJob is the in-memory record of one queued campaign run.
type DispatchJob struct {
	ID         string                `json:"id"`
	CampaignID string                `json:"campaignId"`
	EnqueuedAt time.Time             `json:"enqueuedAt"`
	FinishedAt *time.Time            `json:"finishedAt,omitempty"`
	Result     *model.DispatchResult `json:"result,omitempty"`
	Err        string                `json:"error,omitempty"`
}

func NewQueueService(dispatcher *Dispatcher) *QueueService {
	return &QueueService{
		dispatcher: dispatcher,
		jobs:       make(map[string]*DispatchJob),
	}
}

// Enqueue starts the campaign in the background and returns immediately with
// a snapshot of the job handle. The stored record is only touched under q.mu.
func (q *QueueService) Enqueue(campaignID string) DispatchJob {
	job := &DispatchJob{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	snapshot := *job
	q.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		result, err := q.dispatcher.Dispatch(context.Background(), campaignID)

		q.mu.Lock()
		defer q.mu.Unlock()
		now := time.Now()
		job.FinishedAt = &now
		job.Result = result
		if err != nil {
			job.Err = err.Error()
			log.Error().Err(err).Str("campaignId", campaignID).Str("jobId", job.ID).Msg("background dispatch failed")
		}
	}()

	return snapshot
}

// DispatchNow runs the campaign synchronously. The run is detached from the
// caller's deadline so a request timeout cannot abort a campaign the server
// already accepted; only request-scoped values carry over.
func (q *QueueService) DispatchNow(ctx context.Context, campaignID string) (*model.DispatchResult, error) {
	return q.dispatcher.Dispatch(context.WithoutCancel(ctx), campaignID)
}

// Job returns a snapshot of the record for a job id. The second return is
// false when the id is unknown.
func (q *QueueService) Job(id string) (DispatchJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return DispatchJob{}, false
	}
	return *job, true
}

// Wait blocks until all background jobs have finished. Used on shutdown.
func (q *QueueService) Wait() {
	q.wg.Wait()
}
