// internal/api/routes.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	commonhttp "maritime-intake/internal/common/http"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/models"
	submitapplication "maritime-intake/internal/workers/application/submit-application"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	notificationSent     = "sent"
	notificationDegraded = "degraded"
	notificationPending  = "pending"
	notificationSkipped  = "skipped"

	readyTimeout = 3 * time.Second
)

type API struct {
	config    *Config
	submitter submitapplication.Submitter
	catalog   *models.Catalog
	checks    map[string]Check
	backend   string
	logger    logger.Logger
}

type submissionResponse struct {
	Status         string   `json:"status"`
	TrackingNumber string   `json:"trackingNumber,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	Notification   string   `json:"notification,omitempty"`
	Simulated      bool     `json:"simulated,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Code           string   `json:"code,omitempty"`
	Fields         any      `json:"fields,omitempty"`
}

func registerRoutes(r *gin.Engine, api *API, limiter *RateLimiter) {
	r.GET("/health", api.handleHealth)
	r.GET("/ready", api.handleReady)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/catalog", api.handleCatalog)
		v1.POST("/applications",
			limiter.Middleware(),
			MaxBodySize(api.config.MaxUploadBytes),
			api.handleSubmit,
		)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": a.backend})
}

func (a *API) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(a.checks))
		ready   = true
	)
	for name, check := range a.checks {
		wg.Add(1)
		go func(name string, check Check) {
			defer wg.Done()
			status := "ok"
			if err := check(ctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			if status != "ok" {
				ready = false
			}
		}(name, check)
	}
	wg.Wait()

	code := http.StatusOK
	status := "ready"
	if !ready {
		code = http.StatusServiceUnavailable
		status = "not_ready"
		a.logger.Warn("readiness check failed", map[string]interface{}{"checks": results})
	}
	c.JSON(code, gin.H{"status": status, "backend": a.backend, "checks": results})
}

func (a *API) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, a.catalog)
}

func (a *API) handleSubmit(c *gin.Context) {
	form, err := a.readForm(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondMessage(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds %d bytes", a.config.MaxUploadBytes))
			return
		}
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	outcome := a.submitter.Submit(c.Request.Context(), form)
	if !outcome.Accepted() {
		a.respondRejected(c, outcome)
		return
	}

	c.JSON(http.StatusCreated, submissionResponse{
		Status:         string(outcome.Status),
		TrackingNumber: outcome.TrackingCode,
		Warnings:       outcome.Warnings,
		Notification:   a.awaitNotification(c.Request.Context(), outcome),
		Simulated:      outcome.Simulated,
	})
}

// awaitNotification gives the dispatcher a short window to finish so the
// response can say whether the confirmation email went out.
func (a *API) awaitNotification(ctx context.Context, outcome *submitapplication.Outcome) string {
	if outcome.Notification == nil {
		return notificationPending
	}

	timer := time.NewTimer(a.config.NotificationWait)
	defer timer.Stop()

	select {
	case report, ok := <-outcome.Notification:
		switch {
		case !ok || report == nil:
			return notificationDegraded
		case report.Status == models.NotificationStatusSkipped:
			return notificationSkipped
		case report.Degraded():
			return notificationDegraded
		default:
			return notificationSent
		}
	case <-timer.C:
		return notificationPending
	case <-ctx.Done():
		return notificationPending
	}
}

func (a *API) respondRejected(c *gin.Context, outcome *submitapplication.Outcome) {
	code := outcome.Code()
	body := submissionResponse{
		Status: string(submitapplication.StatusRejected),
		Reason: outcome.Reason,
		Code:   string(code),
	}
	if stdErr, ok := commonerrors.AsStandardError(outcome.Err); ok {
		body.Fields = stdErr.Metadata["fields"]
	}
	c.JSON(commonerrors.HTTPStatus(code), body)
}

// readForm accepts either a JSON "application" part or one form field per
// input, plus the attachment parts.
func (a *API) readForm(c *gin.Context) (*models.ApplicationFormInput, error) {
	if err := c.Request.ParseMultipartForm(a.config.MaxUploadBytes); err != nil {
		return nil, err
	}
	mf := c.Request.MultipartForm

	var form models.ApplicationFormInput
	if raw := c.PostForm("application"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form); err != nil {
			return nil, fmt.Errorf("application is not valid JSON: %w", err)
		}
	} else {
		form = models.ApplicationFormInput{
			ProgramType:           models.ProgramType(c.PostForm("program_type")),
			CoCProgram:            c.PostForm("coc_program"),
			ShortCourses:          c.PostFormArray("short_courses"),
			IntakeDate:            c.PostForm("intake_date"),
			StudyMode:             c.PostForm("study_mode"),
			DeliveryMode:          c.PostForm("delivery_mode"),
			FirstName:             c.PostForm("first_name"),
			MiddleName:            c.PostForm("middle_name"),
			LastName:              c.PostForm("last_name"),
			DOB:                   c.PostForm("dob"),
			Nationality:           c.PostForm("nationality"),
			Email:                 c.PostForm("email"),
			Phone:                 c.PostForm("phone"),
			WhatsApp:              c.PostForm("whatsapp"),
			PassportNumber:        c.PostForm("passport_number"),
			PassportExpiry:        c.PostForm("passport_expiry"),
			CountryOfResidence:    c.PostForm("country_of_residence"),
			HighestEducation:      c.PostForm("highest_education"),
			ExistingCertificates:  c.PostForm("existing_certificates"),
			HasSeaService:         parseBool(c.PostForm("has_sea_service")),
			SeaServiceDescription: c.PostForm("sea_service_description"),
		}
	}

	var err error
	if form.Files.Passport, err = a.readFile(mf, "passport"); err != nil {
		return nil, err
	}
	if form.Files.PersonalPicture, err = a.readFile(mf, "personal_picture"); err != nil {
		return nil, err
	}
	for _, fh := range mf.File["additional_docs"] {
		doc, err := a.readHeader(fh)
		if err != nil {
			return nil, err
		}
		form.Files.AdditionalDocs = append(form.Files.AdditionalDocs, *doc)
	}

	return &form, nil
}

func (a *API) readFile(mf *multipart.Form, field string) (*models.Attachment, error) {
	headers := mf.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	return a.readHeader(headers[0])
}

func (a *API) readHeader(fh *multipart.FileHeader) (*models.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := commonhttp.ReadAllStrict(f, a.config.MaxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	return &models.Attachment{
		Filename:    fh.Filename,
		ContentType: contentType,
		Content:     content,
	}, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "yes", "1":
		return true
	}
	return false
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}
