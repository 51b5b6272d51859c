package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/engine"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
	"github.com/edumon/forms-api/pkg/export"
	"github.com/edumon/forms-api/pkg/jobs"
)

type exportSubmissionReader interface {
	ListByForm(ctx context.Context, formID string, filter dto.SubmissionFilter) ([]models.FormSubmission, int, error)
}

type artifactStore interface {
	Write(name string, data []byte) error
	Open(name string) (*os.File, error)
	Remove(name string) error
	Sweep(ttl time.Duration) (int, error)
}

type downloadSigner interface {
	Sign(artifact string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type formPDFRenderer interface {
	RenderForm(doc export.FormDocument) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix   string
	ArtifactTTL time.Duration
	Workers     int
	MaxRetries  int
}

const (
	exportStatusQueued     = "queued"
	exportStatusProcessing = "processing"
	exportStatusCompleted  = "completed"
	exportStatusFailed     = "failed"
)

type exportJob struct {
	ID        string
	FormID    string
	Format    dto.ExportFormat
	Status    string
	Artifact  string
	URL       string
	ExpiresAt *time.Time
	Error     string
	CreatedAt time.Time
}

// ExportService generates downloadable artifacts in the background: the
// submission table of a form as CSV, or the blank form as a printable PDF.
// Job state lives in memory; artifacts on disk are the durable output and
// download links are signed so they work without a session.
type ExportService struct {
	templates   submissionTemplateReader
	submissions exportSubmissionReader
	store       artifactStore
	signer      downloadSigner
	csv         csvRenderer
	pdf         formPDFRenderer
	queue       *jobs.Queue
	logger      *zap.Logger
	cfg         ExportConfig

	mu   sync.RWMutex
	jobs map[string]*exportJob
}

// NewExportService constructs an ExportService. Call Start before enqueueing.
func NewExportService(templates submissionTemplateReader, submissions exportSubmissionReader, store artifactStore, signer downloadSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ArtifactTTL <= 0 {
		cfg.ArtifactTTL = 24 * time.Hour
	}
	s := &ExportService{
		templates:   templates,
		submissions: submissions,
		store:       store,
		signer:      signer,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
		cfg:         cfg,
		jobs:        make(map[string]*exportJob),
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules artifact generation for a template.
func (s *ExportService) Enqueue(ctx context.Context, formID string, format dto.ExportFormat) (*dto.ExportJobStatus, error) {
	if format != dto.ExportCSV && format != dto.ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if _, err := s.templates.FindByID(ctx, formID); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "form template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch template")
	}

	job := &exportJob{
		ID:        uuid.NewString(),
		FormID:    formID,
		Format:    format,
		Status:    exportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(format)}); err != nil {
		s.setFailed(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.Status(job.ID)
}

// Status reports an export job's progress.
func (s *ExportService) Status(jobID string) (*dto.ExportJobStatus, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	status := &dto.ExportJobStatus{
		ID:          job.ID,
		FormID:      job.FormID,
		Format:      job.Format,
		Status:      job.Status,
		DownloadURL: job.URL,
		ExpiresAt:   job.ExpiresAt,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
	}
	return status, nil
}

// OpenDownload validates a signed token and returns the artifact handle.
func (s *ExportService) OpenDownload(token string) (*os.File, error) {
	artifact, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.store.Open(artifact)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export artifact no longer available")
	}
	return file, nil
}

// Cleanup sweeps artifacts older than the configured TTL.
func (s *ExportService) Cleanup() (int, error) {
	return s.store.Sweep(s.cfg.ArtifactTTL)
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	s.setStatus(job.ID, exportStatusProcessing)

	s.mu.RLock()
	record, ok := s.jobs[job.ID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("export job %s missing from registry", job.ID)
	}

	tpl, err := s.templates.FindByID(ctx, record.FormID)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	var payload []byte
	switch record.Format {
	case dto.ExportCSV:
		payload, err = s.renderSubmissionsCSV(ctx, tpl)
	case dto.ExportPDF:
		payload, err = s.renderBlankFormPDF(tpl)
	default:
		err = fmt.Errorf("unsupported export format %s", record.Format)
	}
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	artifact := exportArtifactName(tpl.ID, record.Format)
	if err := s.store.Write(artifact, payload); err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Sign(artifact)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}
	url := strings.TrimRight(s.cfg.APIPrefix, "/")
	if url == "" {
		url = "/api/v1"
	}
	url = fmt.Sprintf("%s/exports/download/%s", url, token)

	s.mu.Lock()
	record.Status = exportStatusCompleted
	record.Artifact = artifact
	record.URL = url
	record.ExpiresAt = &expiresAt
	record.Error = ""
	s.mu.Unlock()

	s.logger.Info("export completed",
		zap.String("job_id", job.ID),
		zap.String("form_id", record.FormID),
		zap.String("format", string(record.Format)))
	return nil
}

func (s *ExportService) renderSubmissionsCSV(ctx context.Context, tpl *models.FormTemplate) ([]byte, error) {
	names := make([]string, 0)
	labels := make(map[string]string)
	for _, section := range tpl.Sections {
		for _, field := range section.Fields {
			if !field.Type.CarriesValue() {
				continue
			}
			names = append(names, field.Name)
			labels[field.Name] = field.Label.Text
		}
	}

	headers := []string{"Submission ID", "Status", "Submitted By", "Submitted At"}
	for _, name := range names {
		label := labels[name]
		if label == "" {
			label = name
		}
		headers = append(headers, label)
	}

	var dataRows []map[string]string
	filter := dto.SubmissionFilter{Page: 1, PerPage: 500}
	for {
		subs, total, err := s.submissions.ListByForm(ctx, tpl.ID, filter)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			values, err := sub.Values()
			if err != nil {
				return nil, fmt.Errorf("decode submission %s payload: %w", sub.ID, err)
			}
			row := map[string]string{
				"Submission ID": sub.ID,
				"Status":        string(sub.Status),
				"Submitted By":  derefString(sub.SubmittedBy),
				"Submitted At":  sub.CreatedAt.UTC().Format(time.RFC3339),
			}
			for _, name := range names {
				label := labels[name]
				if label == "" {
					label = name
				}
				if value, ok := values[name]; ok {
					row[label] = fmt.Sprintf("%v", value)
				}
			}
			dataRows = append(dataRows, row)
		}
		if filter.Page*filter.PerPage >= total || len(subs) == 0 {
			break
		}
		filter.Page++
	}

	return s.csv.Render(export.Dataset{Headers: headers, Rows: dataRows})
}

func (s *ExportService) renderBlankFormPDF(tpl *models.FormTemplate) ([]byte, error) {
	rendered := engine.Render(tpl, nil, nil)

	doc := export.FormDocument{Title: rendered.Name}
	for _, section := range rendered.Sections {
		docSection := export.FormDocumentSection{Title: section.Title}
		for _, field := range section.Fields {
			question := export.FormDocumentQuestion{
				Label:  field.Label,
				Widget: string(field.Widget),
			}
			if field.Constraints != nil {
				question.Required = field.Constraints.Required
			}
			for _, option := range field.Options {
				question.Options = append(question.Options, option.Label)
			}
			docSection.Questions = append(docSection.Questions, question)
		}
		doc.Sections = append(doc.Sections, docSection)
	}
	return s.pdf.RenderForm(doc)
}

func (s *ExportService) setStatus(jobID, status string) {
	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = status
	}
	s.mu.Unlock()
}

func (s *ExportService) setFailed(jobID string, err error) {
	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = exportStatusFailed
		job.Error = err.Error()
	}
	s.mu.Unlock()
}

func exportArtifactName(formID string, format dto.ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s/%s_%s.%s", formID, formID, timestamp, format)
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
