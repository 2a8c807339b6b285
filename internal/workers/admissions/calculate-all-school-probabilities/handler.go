// internal/workers/admissions/calculate-all-school-probabilities/handler.go
package calculateallschoolprobabilities

import (
	"context"
	"fmt"
	"time"

	"medadmit-workers/internal/admissions"
	"medadmit-workers/internal/common/camunda"
	"medadmit-workers/internal/common/config"
	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/common/metrics"
	"medadmit-workers/internal/common/observability"
	"medadmit-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-all-school-probabilities"

type Handler struct {
	config       *Config
	logger       logger.Logger
	service      *admissions.Service
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Service       *admissions.Service
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := opts.CustomConfig
	if workerConfig == nil {
		workerConfig = createConfigFromAppConfig(opts.AppConfig)
	}
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Service == nil {
		return nil, fmt.Errorf("%s: admissions service is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       workerConfig,
		logger:       log,
		service:      opts.Service,
		errorHandler: errors.NewErrorHandler(log),
		obs:          opts.Observability,
	}, nil
}

// Config returns the effective worker configuration.
func (h *Handler) Config() *Config {
	return h.config
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err, startTime)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err, startTime)
		return
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		h.fail(ctx, client, job, err, startTime)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, "success")
	h.obs.RecordJobDuration(ctx, time.Since(startTime), "success")
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	normalized, err := h.service.NormalizeDocument(ctx, input.Applicant)
	if err != nil {
		return nil, err
	}

	results, err := h.service.AllSchoolProbabilities(ctx, normalized.Applicant)
	if err != nil {
		return nil, err
	}

	counts := map[models.Category]int{
		models.CategoryReach:  0,
		models.CategoryTarget: 0,
		models.CategorySafety: 0,
	}
	for _, r := range results {
		counts[r.Category]++
	}

	h.logger.Info("school probabilities calculated", map[string]interface{}{
		"schoolCount": len(results),
		"reach":       counts[models.CategoryReach],
		"target":      counts[models.CategoryTarget],
		"safety":      counts[models.CategorySafety],
	})

	warnings := normalized.Warnings
	if warnings == nil {
		warnings = []models.NormalizationWarning{}
	}

	return &Output{
		SchoolProbabilities:   results,
		SchoolCount:           len(results),
		CategoryCounts:        counts,
		NormalizationWarnings: warnings,
	}, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	return &Input{Applicant: variables["applicant"]}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("create complete job command: %w", err))
	}
	if _, err := cmd.Send(ctx); err != nil {
		return camunda.MapZeebeError(err, "complete job")
	}
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	stdErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(startTime), "failed")
}
