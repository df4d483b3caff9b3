package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/agrimart/internal/service"
)

type Worker struct {
	store  service.ObjectStorage
	client *asynq.Client
}

func NewWorker(store service.ObjectStorage, client *asynq.Client) *Worker {
	return &Worker{store: store, client: client}
}

// HandleReclaimAssetTask retries a remote delete that failed inline. Retries
// stop after MaxReclaimRetries; the asset stays orphaned at that point and
// only the log knows about it.
func (w *Worker) HandleReclaimAssetTask(ctx context.Context, task *asynq.Task) error {
	var payload ReclaimAssetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	err := w.store.Delete(ctx, payload.ObjectKey)
	if err == nil {
		return nil
	}

	log.Printf("Reclaim retry %d failed for %s: %v", payload.Attempt, payload.ObjectKey, err)

	if payload.Attempt >= MaxReclaimRetries {
		log.Printf("Giving up on reclaiming %s after %d attempts", payload.ObjectKey, payload.Attempt)
		return nil
	}

	payload.Attempt++
	return EnqueueReclaim(w.client, payload, ReclaimRetryDelay)
}
