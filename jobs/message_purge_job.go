// File: /jobs/message_purge_job.go
package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"wavelink-api/services"
)

// MessagePurgeJob periodically removes messages both participants have
// deleted, along with their stored images.
type MessagePurgeJob struct {
	messageService *services.MessageService
	ticker         *time.Ticker
	done           chan bool
}

func NewMessagePurgeJob(messageService *services.MessageService, interval time.Duration) *MessagePurgeJob {
	return &MessagePurgeJob{
		messageService: messageService,
		ticker:         time.NewTicker(interval),
		done:           make(chan bool),
	}
}

// Start begins the purge job
func (j *MessagePurgeJob) Start() {
	logrus.Info("Message purge job started")

	go func() {
		// Run immediately on start
		j.sweep()

		// Then run on schedule
		for {
			select {
			case <-j.ticker.C:
				j.sweep()
			case <-j.done:
				logrus.Info("Message purge job stopped")
				return
			}
		}
	}()
}

// Stop stops the purge job
func (j *MessagePurgeJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *MessagePurgeJob) sweep() {
	count, err := j.messageService.SweepPurgeable(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Message purge sweep failed")
		return
	}
	if count > 0 {
		logrus.WithField("purged", count).Info("Message purge sweep completed")
	}
}
