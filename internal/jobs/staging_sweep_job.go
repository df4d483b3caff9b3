package jobs

import (
	"log"
	"time"

	"github.com/maheshrc27/agrimart/internal/service"
)

// StagingSweepJob removes staged files left behind when local cleanup after
// a publish attempt failed.
type StagingSweepJob struct {
	stager *service.Stager
	ttl    time.Duration
}

func NewStagingSweepJob(stager *service.Stager, ttl time.Duration) *StagingSweepJob {
	return &StagingSweepJob{stager: stager, ttl: ttl}
}

func (j *StagingSweepJob) Sweep() {
	removed, err := j.stager.Sweep(j.ttl)
	if err != nil {
		log.Printf("Staging sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Staging sweep removed %d stale files", removed)
	}
}
