package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gnegDev/path/constants"
	"github.com/gnegDev/path/internal/common"
	"github.com/gnegDev/path/internal/entity"
	"github.com/gnegDev/path/internal/extract"
	"github.com/gnegDev/path/internal/llm"
)

type mockDocumentRepo struct {
	CreateFunc          func(ctx context.Context, doc *entity.Document) error
	CompleteFunc        func(ctx context.Context, docID uuid.UUID, data *entity.PatientData) error
	MarkFailedFunc      func(ctx context.Context, docID uuid.UUID, message string) error
	GetByIDAndOwnerFunc func(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error)
	ListByOwnerFunc     func(ctx context.Context, owner string) ([]*entity.Document, error)
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	return m.CreateFunc(ctx, doc)
}

func (m *mockDocumentRepo) Complete(ctx context.Context, docID uuid.UUID, data *entity.PatientData) error {
	return m.CompleteFunc(ctx, docID, data)
}

func (m *mockDocumentRepo) MarkFailed(ctx context.Context, docID uuid.UUID, message string) error {
	return m.MarkFailedFunc(ctx, docID, message)
}

func (m *mockDocumentRepo) GetByIDAndOwner(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
	return m.GetByIDAndOwnerFunc(ctx, id, owner)
}

func (m *mockDocumentRepo) ListByOwner(ctx context.Context, owner string) ([]*entity.Document, error) {
	return m.ListByOwnerFunc(ctx, owner)
}

type mockAnalysisRepo struct {
	GetByDocumentIDFunc func(ctx context.Context, docID uuid.UUID) (*entity.AnalysisResult, error)
	ReplaceFunc         func(ctx context.Context, result *entity.AnalysisResult) error
}

func (m *mockAnalysisRepo) GetByDocumentID(ctx context.Context, docID uuid.UUID) (*entity.AnalysisResult, error) {
	return m.GetByDocumentIDFunc(ctx, docID)
}

func (m *mockAnalysisRepo) Replace(ctx context.Context, result *entity.AnalysisResult) error {
	return m.ReplaceFunc(ctx, result)
}

type mockObjectStore struct {
	PutFunc func(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	GetFunc func(ctx context.Context, key string) (io.ReadCloser, error)
}

func (m *mockObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return m.PutFunc(ctx, key, r, size, contentType)
}

func (m *mockObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return m.GetFunc(ctx, key)
}

type mockGateway struct {
	CallFunc func(ctx context.Context, req llm.CallRequest) ([]byte, error)
}

func (m *mockGateway) Call(ctx context.Context, req llm.CallRequest) ([]byte, error) {
	return m.CallFunc(ctx, req)
}

func strp(s string) *string { return &s }

func responsesEnvelope(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"output": []map[string]any{
			{"type": "message", "content": []map[string]any{{"type": "output_text", "text": content}}},
		},
	})
	return b
}

func completedDoc(owner string) *entity.Document {
	return &entity.Document{
		ID:                        uuid.New(),
		Owner:                     owner,
		MedicalHistoryKey:         owner + "/medical-history/a.txt",
		MedicalHistoryFilename:    "a.txt",
		MedicalHistoryContentType: "text/plain",
		Status:                    constants.StatusCompleted,
	}
}

func blobStore(blobs map[string]string) *mockObjectStore {
	return &mockObjectStore{
		GetFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			body, ok := blobs[key]
			if !ok {
				return nil, common.ErrNotFound
			}
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestAnalyze_ReplacesResult(t *testing.T) {
	doc := completedDoc("alice")
	planKey := "alice/treatment-plan/b.txt"
	doc.TreatmentPlanKey = &planKey
	doc.TreatmentPlanFilename = strp("b.txt")
	doc.TreatmentPlanContentType = strp("text/plain")

	docs := &mockDocumentRepo{
		GetByIDAndOwnerFunc: func(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
			return doc, nil
		},
	}
	var replaced *entity.AnalysisResult
	analyses := &mockAnalysisRepo{
		ReplaceFunc: func(ctx context.Context, result *entity.AnalysisResult) error {
			replaced = result
			return nil
		},
	}
	store := blobStore(map[string]string{
		doc.MedicalHistoryKey: "history text",
		planKey:               "plan text",
	})
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			assert.Contains(t, req.Input, "=== MEDICAL HISTORY ===\nhistory text")
			assert.Contains(t, req.Input, "=== TREATMENT PLAN ===\nplan text")
			return responsesEnvelope(`{"optimal":"Plan A","mismatches":[{"type":"CT regimen","current":"FOLFOX","recommended":"FOLFIRI"}],"recommendations":["switch"],"sources":["NCCN"]}`), nil
		},
	}

	svc := NewService(docs, analyses, store, extract.NewExtractor(nil), gateway,
		llm.EndpointConfig{BaseURL: "http://x", PromptID: "pmpt_1"}, nil)

	result, err := svc.Analyze(context.Background(), doc.ID, "alice")
	assert.NoError(t, err)
	assert.Same(t, replaced, result)
	assert.Equal(t, doc.ID, result.DocumentID)
	assert.Equal(t, "Plan A", *result.Optimal)
	if assert.Len(t, result.Mismatches, 1) {
		assert.Equal(t, 0, result.Mismatches[0].Seq)
		assert.Equal(t, result.ID, result.Mismatches[0].AnalysisResultID)
		assert.Equal(t, "FOLFIRI", *result.Mismatches[0].Recommended)
	}
	assert.Equal(t, []string{"switch"}, []string(result.Recommendations))
	assert.Equal(t, []string{"NCCN"}, []string(result.Sources))
	assert.False(t, result.AnalyzedAt.IsZero())
}

func TestAnalyze_RejectsNonCompletedDocument(t *testing.T) {
	for _, status := range []constants.DocumentStatus{
		constants.StatusPending, constants.StatusProcessing, constants.StatusFailed,
	} {
		doc := completedDoc("alice")
		doc.Status = status
		docs := &mockDocumentRepo{
			GetByIDAndOwnerFunc: func(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
				return doc, nil
			},
		}
		gateway := &mockGateway{
			CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
				t.Fatalf("gateway must not be called for status %s", status)
				return nil, nil
			},
		}

		svc := NewService(docs, &mockAnalysisRepo{}, &mockObjectStore{}, extract.NewExtractor(nil),
			gateway, llm.EndpointConfig{}, nil)

		_, err := svc.Analyze(context.Background(), doc.ID, "alice")
		assert.ErrorIs(t, err, common.ErrInvalidState, "status %s", status)
	}
}

func TestAnalyze_UnknownDocument(t *testing.T) {
	docs := &mockDocumentRepo{
		GetByIDAndOwnerFunc: func(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
			return nil, common.ErrNotFound
		},
	}

	svc := NewService(docs, &mockAnalysisRepo{}, &mockObjectStore{}, extract.NewExtractor(nil),
		&mockGateway{}, llm.EndpointConfig{}, nil)

	_, err := svc.Analyze(context.Background(), uuid.New(), "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAnalyze_FailureLeavesStoredResultUntouched(t *testing.T) {
	doc := completedDoc("alice")
	docs := &mockDocumentRepo{
		GetByIDAndOwnerFunc: func(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
			return doc, nil
		},
	}
	replaceCalled := false
	analyses := &mockAnalysisRepo{
		ReplaceFunc: func(ctx context.Context, result *entity.AnalysisResult) error {
			replaceCalled = true
			return nil
		},
	}
	store := blobStore(map[string]string{doc.MedicalHistoryKey: "history text"})
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			return nil, &common.GatewayError{Status: 500, Cause: errors.New("upstream error")}
		},
	}

	svc := NewService(docs, analyses, store, extract.NewExtractor(nil), gateway, llm.EndpointConfig{}, nil)

	_, err := svc.Analyze(context.Background(), doc.ID, "alice")
	var gerr *common.GatewayError
	assert.ErrorAs(t, err, &gerr)
	assert.False(t, replaceCalled, "a failed run must not touch the stored result")
}

func TestAnalyze_NoPlanOmitsSection(t *testing.T) {
	doc := completedDoc("alice")
	docs := &mockDocumentRepo{
		GetByIDAndOwnerFunc: func(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
			return doc, nil
		},
	}
	analyses := &mockAnalysisRepo{
		ReplaceFunc: func(ctx context.Context, result *entity.AnalysisResult) error { return nil },
	}
	store := blobStore(map[string]string{doc.MedicalHistoryKey: "history only"})
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			assert.NotContains(t, req.Input, "TREATMENT PLAN")
			return responsesEnvelope(`{"optimal":"X"}`), nil
		},
	}

	svc := NewService(docs, analyses, store, extract.NewExtractor(nil), gateway, llm.EndpointConfig{}, nil)

	result, err := svc.Analyze(context.Background(), doc.ID, "alice")
	assert.NoError(t, err)
	assert.Equal(t, "X", *result.Optimal)
	assert.Empty(t, result.Mismatches)
}

func TestGet_ChecksOwnershipFirst(t *testing.T) {
	docs := &mockDocumentRepo{
		GetByIDAndOwnerFunc: func(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
			return nil, common.ErrNotFound
		},
	}
	analyses := &mockAnalysisRepo{
		GetByDocumentIDFunc: func(ctx context.Context, docID uuid.UUID) (*entity.AnalysisResult, error) {
			t.Fatal("analysis lookup must not run when the document is not the caller's")
			return nil, nil
		},
	}

	svc := NewService(docs, analyses, &mockObjectStore{}, extract.NewExtractor(nil), &mockGateway{}, llm.EndpointConfig{}, nil)

	_, err := svc.Get(context.Background(), uuid.New(), "mallory")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGet_ReturnsStoredResult(t *testing.T) {
	doc := completedDoc("alice")
	stored := &entity.AnalysisResult{ID: uuid.New(), DocumentID: doc.ID, Optimal: strp("Plan A")}

	docs := &mockDocumentRepo{
		GetByIDAndOwnerFunc: func(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
			return doc, nil
		},
	}
	analyses := &mockAnalysisRepo{
		GetByDocumentIDFunc: func(ctx context.Context, docID uuid.UUID) (*entity.AnalysisResult, error) {
			assert.Equal(t, doc.ID, docID)
			return stored, nil
		},
	}

	svc := NewService(docs, analyses, &mockObjectStore{}, extract.NewExtractor(nil), &mockGateway{}, llm.EndpointConfig{}, nil)

	got, err := svc.Get(context.Background(), doc.ID, "alice")
	assert.NoError(t, err)
	assert.Same(t, stored, got)
}
