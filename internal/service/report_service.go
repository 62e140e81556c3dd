package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"medrec-llm/internal/domain"
	"medrec-llm/internal/llm"
	"medrec-llm/internal/repository"
)

// ReportService procesa estudios medicos: interpreta los hallazgos con el
// LLM, extrae biomarcadores y persiste todo.
type ReportService struct {
	llmClient    llm.LLMClient
	embedder     llm.EmbeddingClient
	reports      repository.ReportRepository
	observations repository.ObservationRepository
	extractor    FindingsExtractor
	logger       *zap.Logger
}

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrInvalidCategory = errors.New("invalid report category")
	ErrEmptyFindings   = errors.New("empty findings")
)

func NewReportService(
	llmClient llm.LLMClient,
	embedder llm.EmbeddingClient,
	reports repository.ReportRepository,
	observations repository.ObservationRepository,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		llmClient:    llmClient,
		embedder:     embedder,
		reports:      reports,
		observations: observations,
		extractor:    DefaultFindingsExtractor,
		logger:       logger,
	}
}

// IngestReport guarda el estudio con su interpretacion y las observaciones
// extraidas. La interpretacion y el embedding son best-effort: si el LLM
// falla el estudio se guarda igual, sin interpretacion.
func (s *ReportService) IngestReport(ctx context.Context, patientID string, category domain.ReportCategory, findings string) (domain.Report, []domain.BiomarkerObservation, error) {
	if !category.IsValid() {
		return domain.Report{}, nil, ErrInvalidCategory
	}
	if strings.TrimSpace(findings) == "" {
		return domain.Report{}, nil, ErrEmptyFindings
	}

	now := time.Now().UTC()
	report := domain.Report{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Category:  category,
		Findings:  findings,
		CreatedAt: now,
	}

	if s.embedder != nil {
		embedding, err := s.embedder.CreateEmbedding(ctx, findings)
		if err != nil {
			s.logger.Warn("report embedding failed", zap.Error(err), zap.String("patient_id", patientID))
		} else {
			report.Embedding = pgvector.NewVector(embedding)
		}
	}

	interpretation, err := s.interpret(ctx, report)
	if err != nil {
		s.logger.Warn("report interpretation failed", zap.Error(err), zap.String("patient_id", patientID))
	} else {
		report.Interpretation = interpretation
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return domain.Report{}, nil, fmt.Errorf("create report: %w", err)
	}

	observations := s.extractor.ExtractAt(findings, category, now)
	for i := range observations {
		observations[i].ID = uuid.NewString()
		observations[i].PatientID = patientID
		observations[i].SourceReportID = &report.ID
		observations[i].CreatedAt = now
	}

	if err := s.observations.CreateBatch(ctx, observations); err != nil {
		return domain.Report{}, nil, fmt.Errorf("create observations: %w", err)
	}

	s.logger.Info("report ingested",
		zap.String("report_id", report.ID),
		zap.String("patient_id", patientID),
		zap.String("category", string(category)),
		zap.Int("observations", len(observations)),
	)

	return report, observations, nil
}

func (s *ReportService) GetReport(ctx context.Context, id string) (domain.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Report{}, ErrReportNotFound
	}
	return report, err
}

func (s *ReportService) ListReports(ctx context.Context, patientID string) ([]domain.Report, error) {
	return s.reports.ListByPatient(ctx, patientID)
}

func (s *ReportService) interpret(ctx context.Context, report domain.Report) (string, error) {
	if s.llmClient == nil {
		return "", errors.New("llm client not configured")
	}

	var sb strings.Builder
	sb.WriteString(`You are a physician writing a short plain-language summary of a medical report for the patient.
Explain the findings below in 2-4 sentences, in neutral, non-alarming language.
Do not diagnose, do not prescribe, and recommend discussing results with a doctor when values look abnormal.

Report category: `)
	sb.WriteString(string(report.Category))
	sb.WriteString("\nFindings:\n")
	sb.WriteString(report.Findings)

	// Estudios previos similares del mismo paciente como contexto.
	if len(report.Embedding.Slice()) > 0 {
		similar, err := s.reports.SearchSimilar(ctx, report.PatientID, report.Embedding, 3)
		if err != nil {
			s.logger.Warn("similar report search failed", zap.Error(err), zap.String("patient_id", report.PatientID))
		} else if len(similar) > 0 {
			sb.WriteString("\n\nEarlier reports from the same patient, for context:\n")
			for _, prev := range similar {
				sb.WriteString(fmt.Sprintf("- [%s, %s] %s\n", prev.Category, prev.CreatedAt.Format("2006-01-02"), firstLine(prev.Findings)))
			}
		}
	}

	raw, err := s.llmClient.Generate(ctx, sb.String())
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	const max = 200
	if len(s) > max {
		s = s[:max]
	}
	return strings.TrimSpace(s)
}
