// internal/workers/application/submit-application/handler.go
package submitapplication

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/metrics"
	"maritime-intake/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Submitter is the single entry point the transports call.
type Submitter interface {
	Submit(ctx context.Context, form *models.ApplicationFormInput) *Outcome
}

// JobFile is an attachment carried inline in process variables.
type JobFile struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"contentType"`
	ContentBase64 string `json:"contentBase64"`
}

type JobFiles struct {
	Passport        *JobFile  `json:"passport,omitempty"`
	PersonalPicture *JobFile  `json:"personalPicture,omitempty"`
	AdditionalDocs  []JobFile `json:"additionalDocs,omitempty"`
}

type Input struct {
	Application models.ApplicationFormInput `json:"application"`
	Files       JobFiles                    `json:"files"`
}

type Output struct {
	TrackingNumber string   `json:"trackingNumber"`
	Status         string   `json:"status"`
	Warnings       []string `json:"warnings"`
	Simulated      bool     `json:"simulated"`
}

// Form decodes the inline files into the form value handed to the orchestrator.
func (in *Input) Form() (*models.ApplicationFormInput, error) {
	form := in.Application

	var err error
	if form.Files.Passport, err = decodeFile("files.passport", in.Files.Passport); err != nil {
		return nil, err
	}
	if form.Files.PersonalPicture, err = decodeFile("files.personalPicture", in.Files.PersonalPicture); err != nil {
		return nil, err
	}
	form.Files.AdditionalDocs = make([]models.Attachment, 0, len(in.Files.AdditionalDocs))
	for i := range in.Files.AdditionalDocs {
		doc, err := decodeFile(fmt.Sprintf("files.additionalDocs[%d]", i), &in.Files.AdditionalDocs[i])
		if err != nil {
			return nil, err
		}
		form.Files.AdditionalDocs = append(form.Files.AdditionalDocs, *doc)
	}
	return &form, nil
}

func decodeFile(field string, f *JobFile) (*models.Attachment, error) {
	if f == nil {
		return nil, nil
	}
	content, err := base64.StdEncoding.DecodeString(f.ContentBase64)
	if err != nil {
		return nil, commonerrors.NewApplicationValidationFailedError(fmt.Sprintf("%s: invalid base64 content: %v", field, err))
	}
	return &models.Attachment{Filename: f.Filename, ContentType: f.ContentType, Content: content}, nil
}

type Handler struct {
	config       *Config
	submitter    Submitter
	errorHandler *commonerrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, submitter Submitter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		submitter:    submitter,
		errorHandler: commonerrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx := context.Background()
	if h.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.JobTimeout)
		defer cancel()
	}

	output, err := h.execute(ctx, job.Variables)
	if err != nil {
		return h.fail(ctx, client, job, err)
	}
	return h.completeJob(ctx, client, job, output)
}

// execute decodes the job variables and submits the application. A rejection
// is returned as a StandardError carrying the reason in its metadata.
func (h *Handler) execute(ctx context.Context, variables string) (*Output, error) {
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, commonerrors.NewApplicationValidationFailedError(fmt.Sprintf("parse variables: %v", err))
	}

	form, err := input.Form()
	if err != nil {
		return nil, err
	}

	outcome := h.submitter.Submit(ctx, form)
	if !outcome.Accepted() {
		stdErr, ok := commonerrors.AsStandardError(outcome.Err)
		if !ok {
			stdErr = commonerrors.NewInternalError(outcome.Err)
		}
		return nil, stdErr.WithMetadata("reason", outcome.Reason)
	}

	output := &Output{
		TrackingNumber: outcome.TrackingCode,
		Status:         string(outcome.Status),
		Warnings:       outcome.Warnings,
		Simulated:      outcome.Simulated,
	}
	if output.Warnings == nil {
		output.Warnings = []string{}
	}
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":         job.Key,
		"trackingNumber": output.TrackingNumber,
	})
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	code := commonerrors.ErrCodeInternalError
	if stdErr, ok := commonerrors.AsStandardError(err); ok {
		code = stdErr.Code
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
	return nil
}
