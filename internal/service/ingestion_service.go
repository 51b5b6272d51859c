package service

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/edumon/forms-api/internal/dto"
	"github.com/edumon/forms-api/internal/engine"
	"github.com/edumon/forms-api/internal/models"
	"github.com/edumon/forms-api/pkg/config"
	appErrors "github.com/edumon/forms-api/pkg/errors"
)

type templateBulkWriter interface {
	BulkUpsert(ctx context.Context, tpls []*models.FormTemplate) error
}

// IngestionService turns the tabular question export into form templates.
// The whole batch lands in one transaction: a single malformed row rejects
// the upload and leaves previously ingested templates untouched, which also
// makes re-uploading a corrected file idempotent.
type IngestionService struct {
	repo    templateBulkWriter
	cache   renderCacheInvalidator
	metrics *MetricsService
	opts    engine.TransformOptions
	logger  *zap.Logger
}

// NewIngestionService constructs an IngestionService with transform
// conventions taken from configuration.
func NewIngestionService(repo templateBulkWriter, cache renderCacheInvalidator, metrics *MetricsService, forms config.FormsConfig, logger *zap.Logger) *IngestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := engine.TransformOptions{}
	if forms.DefaultFieldType != "" {
		if t, ok := models.ParseFieldType(forms.DefaultFieldType); ok {
			opts.DefaultFieldType = t
		}
	}
	if forms.YesLabel != "" && forms.NoLabel != "" {
		yes := models.FieldOption{Label: models.Literal(forms.YesLabel), Value: forms.YesValue}
		no := models.FieldOption{Label: models.Literal(forms.NoLabel), Value: forms.NoValue}
		opts.DefaultOptionsFor = func(t models.FieldType) []models.FieldOption {
			if t != models.FieldTypeRadio {
				return nil
			}
			return []models.FieldOption{yes, no}
		}
	}
	return &IngestionService{repo: repo, cache: cache, metrics: metrics, opts: opts, logger: logger}
}

// IngestRows transforms pre-parsed rows and persists the resulting templates.
func (s *IngestionService) IngestRows(ctx context.Context, rows []engine.SourceRow) (*dto.IngestionSummary, error) {
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no rows to ingest")
	}

	templates, err := engine.Transform(rows, s.opts)
	if err != nil {
		return nil, err
	}

	if err := s.repo.BulkUpsert(ctx, templates); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist ingested templates")
	}

	summary := &dto.IngestionSummary{RowCount: len(rows)}
	for _, tpl := range templates {
		fields := 0
		for _, section := range tpl.Sections {
			fields += len(section.Fields)
		}
		summary.Templates = append(summary.Templates, dto.IngestedTemplate{
			ID:       tpl.ID,
			Name:     tpl.Name,
			Sections: len(tpl.Sections),
			Fields:   fields,
		})
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, renderCachePattern(tpl.ID)); err != nil {
				s.logger.Warn("render cache invalidation failed", zap.String("template_id", tpl.ID), zap.Error(err))
			}
		}
	}

	s.metrics.RecordIngestedRows(len(rows))
	s.logger.Info("ingestion batch applied",
		zap.Int("rows", len(rows)),
		zap.Int("templates", len(templates)))
	return summary, nil
}

// IngestCSV parses a CSV stream and ingests its rows. The header row maps
// columns by name, so column order in the export does not matter.
func (s *IngestionService) IngestCSV(ctx context.Context, r io.Reader) (*dto.IngestionSummary, error) {
	rows, err := ParseSourceCSV(r)
	if err != nil {
		return nil, err
	}
	return s.IngestRows(ctx, rows)
}

// csvColumns maps header names (lowercased) to row field setters.
var csvColumns = map[string]func(*engine.SourceRow, string){
	"id":               func(r *engine.SourceRow, v string) { r.ID = v },
	"order":            func(r *engine.SourceRow, v string) { r.Order = v },
	"subject":          func(r *engine.SourceRow, v string) { r.Subject = v },
	"grade":            func(r *engine.SourceRow, v string) { r.Grade = v },
	"level":            func(r *engine.SourceRow, v string) { r.Level = v },
	"field_type_one":   func(r *engine.SourceRow, v string) { r.FieldTypeOne = v },
	"field_type_two":   func(r *engine.SourceRow, v string) { r.FieldTypeTwo = v },
	"field_type_three": func(r *engine.SourceRow, v string) { r.FieldTypeThree = v },
	"field_type_four":  func(r *engine.SourceRow, v string) { r.FieldTypeFour = v },
	"label_type":       func(r *engine.SourceRow, v string) { r.LabelType = v },
	"text_label":       func(r *engine.SourceRow, v string) { r.TextLabel = v },
	"indicator":        func(r *engine.SourceRow, v string) { r.Indicator = v },
	"response":         func(r *engine.SourceRow, v string) { r.Response = v },
}

// ParseSourceCSV reads the question export into source rows.
func ParseSourceCSV(r io.Reader) ([]engine.SourceRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, appErrors.Clone(appErrors.ErrValidation, "empty csv upload")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read csv header")
	}

	setters := make([]func(*engine.SourceRow, string), len(header))
	known := 0
	for i, name := range header {
		if setter, ok := csvColumns[strings.ToLower(strings.TrimSpace(name))]; ok {
			setters[i] = setter
			known++
		}
	}
	if known == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv header has no recognised columns")
	}

	var rows []engine.SourceRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read csv row")
		}
		var row engine.SourceRow
		for i, value := range record {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, strings.TrimSpace(value))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
