package document

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gnegDev/path/constants"
	"github.com/gnegDev/path/internal/entity"
	"github.com/gnegDev/path/internal/extract"
	"github.com/gnegDev/path/internal/llm"
	"github.com/gnegDev/path/internal/repository"
	"github.com/gnegDev/path/internal/storage"
)

// FileUpload is one uploaded blob.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Service owns the document lifecycle: it stores the blobs, creates the
// document in PROCESSING, runs the extraction sub-pipeline, and settles
// the status exactly once.
type Service struct {
	docs      repository.DocumentRepository
	store     storage.ObjectStore
	extractor *extract.Extractor
	gateway   llm.Gateway
	endpoint  llm.EndpointConfig
	log       *slog.Logger
}

func NewService(
	docs repository.DocumentRepository,
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
		store:     store,
		extractor: extractor,
		gateway:   gateway,
		endpoint:  endpoint,
		log:       log,
	}
}

// Submit stores the blobs, creates the document, and runs extraction.
// Pipeline failures are absorbed: the document comes back FAILED with an
// error message and Submit itself returns without error. Only failures
// persisting the document row propagate.
func (s *Service) Submit(ctx context.Context, owner string, history FileUpload, plan *FileUpload) (*entity.Document, error) {
	doc := &entity.Document{
		ID:                        uuid.New(),
		Owner:                     owner,
		MedicalHistoryFilename:    history.Filename,
		MedicalHistoryContentType: history.ContentType,
		Status:                    constants.StatusProcessing,
		CreatedAt:                 time.Now().UTC(),
	}

	var pipeErr error

	key, err := s.storeBlob(ctx, owner, constants.BlobMedicalHistory, history)
	if err != nil {
		pipeErr = err
	} else {
		doc.MedicalHistoryKey = key
	}

	if plan != nil && pipeErr == nil {
		planKey, err := s.storeBlob(ctx, owner, constants.BlobTreatmentPlan, *plan)
		if err != nil {
			pipeErr = err
		} else {
			doc.TreatmentPlanKey = &planKey
			doc.TreatmentPlanFilename = &plan.Filename
			doc.TreatmentPlanContentType = &plan.ContentType
		}
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	var data *entity.PatientData
	if pipeErr == nil {
		data, pipeErr = s.process(ctx, doc, history)
	}

	if pipeErr != nil {
		s.log.Error("document.submit.failed", "document_id", doc.ID, "owner", owner, "error", pipeErr)
		if err := s.docs.MarkFailed(ctx, doc.ID, pipeErr.Error()); err != nil {
			return nil, err
		}
		msg := pipeErr.Error()
		doc.Status = constants.StatusFailed
		doc.ErrorMessage = &msg
		return doc, nil
	}

	doc.Status = constants.StatusCompleted
	doc.ExtractedData = data
	s.log.Info("document.submit.ok", "document_id", doc.ID, "owner", owner)
	return doc, nil
}

// Get returns the document with its extracted data, scoped to owner.
func (s *Service) Get(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
	return s.docs.GetByIDAndOwner(ctx, id, owner)
}

// List returns all of an owner's documents, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]*entity.Document, error) {
	return s.docs.ListByOwner(ctx, owner)
}

// process runs extract text → build prompt → call gateway → normalize →
// map → persist. Any error aborts the run; the caller settles the status.
func (s *Service) process(ctx context.Context, doc *entity.Document, history FileUpload) (*entity.PatientData, error) {
	text, err := s.extractor.ExtractText(history.Content, history.ContentType, history.Filename)
	if err != nil {
		return nil, err
	}

	prompt := llm.BuildExtractionPrompt(text)
	raw, err := s.gateway.Call(ctx, s.endpoint.Request(prompt))
	if err != nil {
		return nil, err
	}

	payload, err := llm.DecodeExtraction(raw)
	if err != nil {
		return nil, err
	}

	data := MapPatientData(doc.ID, payload)
	if err := s.docs.Complete(ctx, doc.ID, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) storeBlob(ctx context.Context, owner, kind string, f FileUpload) (string, error) {
	key := buildObjectKey(owner, kind, f.Filename)
	return s.store.Put(ctx, key, bytes.NewReader(f.Content), int64(len(f.Content)), f.ContentType)
}

// buildObjectKey namespaces blobs per owner and kind; the uuid keeps
// repeated uploads of the same filename from colliding.
func buildObjectKey(owner, kind, filename string) string {
	return owner + "/" + kind + "/" + uuid.New().String() + filepath.Ext(filename)
}
