package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

const TaskTypeReclaimAsset = "reclaim:asset"

// Retry pacing for remote deletes that failed inline.
const (
	ReclaimRetryDelay = 5 * time.Minute
	MaxReclaimRetries = 5
)

type ReclaimAssetPayload struct {
	ObjectKey    string `json:"object_key"`
	ResourceKind string `json:"resource_kind"`
	Attempt      int    `json:"attempt"`
}

func EnqueueReclaim(asynqClient *asynq.Client, payload ReclaimAssetPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeReclaimAsset, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	log.Printf("Reclaim retry scheduled: %+v", payload)
	return nil
}

// Enqueuer adapts the asynq client to what the media pipeline needs when a
// remote delete fails.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueReclaim(objectKey, resourceKind string) error {
	return EnqueueReclaim(e.client, ReclaimAssetPayload{
		ObjectKey:    objectKey,
		ResourceKind: resourceKind,
		Attempt:      1,
	}, ReclaimRetryDelay)
}
