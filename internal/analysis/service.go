package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gnegDev/path/constants"
	"github.com/gnegDev/path/internal/common"
	"github.com/gnegDev/path/internal/entity"
	"github.com/gnegDev/path/internal/extract"
	"github.com/gnegDev/path/internal/llm"
	"github.com/gnegDev/path/internal/repository"
	"github.com/gnegDev/path/internal/storage"
)

// Service runs the re-runnable treatment-optimality analysis for a
// completed document. Unlike upload, failures here propagate to the
// caller and the previously stored result (if any) stays untouched.
type Service struct {
	docs      repository.DocumentRepository
	analyses  repository.AnalysisRepository
	store     storage.ObjectStore
	extractor *extract.Extractor
	gateway   llm.Gateway
	endpoint  llm.EndpointConfig
	log       *slog.Logger
}

func NewService(
	docs repository.DocumentRepository,
	analyses repository.AnalysisRepository,
	store storage.ObjectStore,
	extractor *extract.Extractor,
	gateway llm.Gateway,
	endpoint llm.EndpointConfig,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		docs:      docs,
		analyses:  analyses,
		store:     store,
		extractor: extractor,
		gateway:   gateway,
		endpoint:  endpoint,
		log:       log,
	}
}

// Analyze re-extracts the original texts from storage, calls the analysis
// endpoint, and destructively replaces any existing result in one
// transaction.
func (s *Service) Analyze(ctx context.Context, docID uuid.UUID, owner string) (*entity.AnalysisResult, error) {
	doc, err := s.docs.GetByIDAndOwner(ctx, docID, owner)
	if err != nil {
		return nil, err
	}
	if doc.Status != constants.StatusCompleted {
		return nil, fmt.Errorf("%w: document %s has status %s", common.ErrInvalidState, docID, doc.Status)
	}

	historyText, err := s.fetchText(ctx, doc.MedicalHistoryKey, doc.MedicalHistoryContentType, doc.MedicalHistoryFilename)
	if err != nil {
		return nil, err
	}
	var planText string
	if doc.TreatmentPlanKey != nil {
		planText, err = s.fetchText(ctx, *doc.TreatmentPlanKey, deref(doc.TreatmentPlanContentType), deref(doc.TreatmentPlanFilename))
		if err != nil {
			return nil, err
		}
	}

	input := llm.BuildAnalysisPrompt(historyText, planText)
	raw, err := s.gateway.Call(ctx, s.endpoint.Request(input))
	if err != nil {
		return nil, err
	}

	payload, err := llm.DecodeAnalysis(raw)
	if err != nil {
		return nil, err
	}

	result := buildResult(docID, payload)
	if err := s.analyses.Replace(ctx, result); err != nil {
		return nil, err
	}
	s.log.Info("analysis.ok", "document_id", docID, "mismatches", len(result.Mismatches))
	return result, nil
}

// Get returns the stored analysis for a document, scoped to owner.
func (s *Service) Get(ctx context.Context, docID uuid.UUID, owner string) (*entity.AnalysisResult, error) {
	if _, err := s.docs.GetByIDAndOwner(ctx, docID, owner); err != nil {
		return nil, err
	}
	return s.analyses.GetByDocumentID(ctx, docID)
}

func (s *Service) fetchText(ctx context.Context, key, contentType, filename string) (string, error) {
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", &common.StorageError{Key: key, Cause: err}
	}
	return s.extractor.ExtractText(data, contentType, filename)
}

func buildResult(docID uuid.UUID, p *llm.AnalysisPayload) *entity.AnalysisResult {
	result := &entity.AnalysisResult{
		ID:              uuid.New(),
		DocumentID:      docID,
		Optimal:         p.Optimal,
		Mismatches:      make([]entity.MismatchEntry, 0, len(p.Mismatches)),
		Recommendations: p.Recommendations,
		Sources:         p.Sources,
		AnalyzedAt:      time.Now().UTC(),
	}
	for i, m := range p.Mismatches {
		result.Mismatches = append(result.Mismatches, entity.MismatchEntry{
			ID:               uuid.New(),
			AnalysisResultID: result.ID,
			Seq:              i,
			Type:             m.Type,
			Current:          m.Current,
			Recommended:      m.Recommended,
		})
	}
	return result
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
