package service

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/models"
	appErrors "github.com/edumon/forms-api/pkg/errors"
	"github.com/edumon/forms-api/pkg/storage"
)

func newExportService(t *testing.T, templates *templateRepoStub, submissions *submissionRepoStub) *ExportService {
	t.Helper()
	store, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("test-secret", time.Hour)
	svc := NewExportService(templates, submissions, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func waitForJob(t *testing.T, svc *ExportService, jobID string) *dto.ExportJobStatus {
	t.Helper()
	var status *dto.ExportJobStatus
	require.Eventually(t, func() bool {
		current, err := svc.Status(jobID)
		if err != nil {
			return false
		}
		status = current
		return status.Status == exportStatusCompleted || status.Status == exportStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestExportServiceCSVRoundTrip(t *testing.T) {
	templates := newTemplateRepoStub(publishedTemplate("form-1"))
	submissions := newSubmissionRepoStub()
	payload, _ := json.Marshal(map[string]interface{}{"can_read_letters": "yes"})
	require.NoError(t, submissions.Create(context.Background(), &models.FormSubmission{
		ID:      "sub-1",
		FormID:  "form-1",
		Status:  models.SubmissionApproved,
		Payload: payload,
	}))
	svc := newExportService(t, templates, submissions)

	job, err := svc.Enqueue(context.Background(), "form-1", dto.ExportCSV)
	require.NoError(t, err)

	status := waitForJob(t, svc, job.ID)
	require.Equal(t, exportStatusCompleted, status.Status)
	assert.Contains(t, status.DownloadURL, "/api/v1/exports/download/")
	require.NotNil(t, status.ExpiresAt)

	token := status.DownloadURL[len("/api/v1/exports/download/"):]
	file, err := svc.OpenDownload(token)
	require.NoError(t, err)
	defer file.Close()

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Submission ID")
	assert.Contains(t, string(content), "sub-1")
	assert.Contains(t, string(content), "yes")
}

func TestExportServicePDFBlankForm(t *testing.T) {
	templates := newTemplateRepoStub(publishedTemplate("form-1"))
	svc := newExportService(t, templates, newSubmissionRepoStub())

	job, err := svc.Enqueue(context.Background(), "form-1", dto.ExportPDF)
	require.NoError(t, err)

	status := waitForJob(t, svc, job.ID)
	require.Equal(t, exportStatusCompleted, status.Status)

	token := status.DownloadURL[len("/api/v1/exports/download/"):]
	file, err := svc.OpenDownload(token)
	require.NoError(t, err)
	defer file.Close()

	header := make([]byte, 4)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestExportServiceRejectsUnknownTemplate(t *testing.T) {
	svc := newExportService(t, newTemplateRepoStub(), newSubmissionRepoStub())

	_, err := svc.Enqueue(context.Background(), "missing", dto.ExportCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRejectsBadToken(t *testing.T) {
	svc := newExportService(t, newTemplateRepoStub(), newSubmissionRepoStub())

	_, err := svc.OpenDownload("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
