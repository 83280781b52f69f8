// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"maritime-intake/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes or fails the job itself; a returned error is only logged.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type WorkerConfig struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func NewWorker(client zbc.Client, config WorkerConfig, handler JobHandler, log logger.Logger) *CamundaWorker {
	log = logger.ForComponent(log, "zeebe-worker")

	step := client.NewJobWorker().
		JobType(config.TaskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			if err := handler.Handle(client, job); err != nil {
				log.Error("handler returned error", map[string]interface{}{
					"taskType": config.TaskType,
					"jobKey":   job.Key,
					"error":    err.Error(),
				})
			}
		})

	if config.MaxJobsActive > 0 {
		step = step.MaxJobsActive(config.MaxJobsActive)
	}
	if config.Timeout > 0 {
		step = step.Timeout(config.Timeout)
	}

	w := &CamundaWorker{
		worker:   step.Open(),
		logger:   log,
		taskType: config.TaskType,
	}
	log.Info("worker started", map[string]interface{}{"taskType": config.TaskType})
	return w
}

// Stop closes the job stream and waits for in-flight handlers.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
