package document

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

func chatResponse(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return b
}

func okStore() *mockObjectStore {
	return &mockObjectStore{
		PutFunc: func(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
			return key, nil
		},
	}
}

func historyUpload() FileUpload {
	return FileUpload{
		Filename:    "history.txt",
		ContentType: "text/plain",
		Content:     []byte("Patient J.D., stage IIb."),
	}
}

func TestSubmit_Completed(t *testing.T) {
	var created *entity.Document
	var completed *entity.PatientData
	repo := &mockDocumentRepo{
		CreateFunc: func(ctx context.Context, doc *entity.Document) error {
			created = doc
			return nil
		},
		CompleteFunc: func(ctx context.Context, docID uuid.UUID, data *entity.PatientData) error {
			completed = data
			return nil
		},
	}
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			assert.Contains(t, req.Input, "Patient J.D., stage IIb.")
			return chatResponse(`{"fio_initials":"J.D.","stage":"IIb"}`), nil
		},
	}

	svc := NewService(repo, okStore(), extract.NewExtractor(nil), gateway, llm.EndpointConfig{BaseURL: "http://x", Model: "m"}, nil)

	doc, err := svc.Submit(context.Background(), "alice", historyUpload(), nil)
	assert.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, doc.Status)
	assert.Nil(t, doc.ErrorMessage)

	if assert.NotNil(t, created) {
		assert.Equal(t, constants.StatusProcessing, created.Status, "row is created in PROCESSING before the pipeline runs")
		assert.Equal(t, "alice", created.Owner)
		assert.True(t, strings.HasPrefix(created.MedicalHistoryKey, "alice/"+constants.BlobMedicalHistory+"/"))
	}
	if assert.NotNil(t, completed) {
		assert.Equal(t, doc.ID, completed.DocumentID)
		assert.Equal(t, "J.D.", *completed.FioInitials)
		assert.Equal(t, "IIb", *completed.Stage)
	}
	assert.Same(t, completed, doc.ExtractedData)
}

func TestSubmit_WithTreatmentPlan(t *testing.T) {
	var keys []string
	store := &mockObjectStore{
		PutFunc: func(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
			keys = append(keys, key)
			return key, nil
		},
	}
	repo := &mockDocumentRepo{
		CreateFunc:   func(ctx context.Context, doc *entity.Document) error { return nil },
		CompleteFunc: func(ctx context.Context, docID uuid.UUID, data *entity.PatientData) error { return nil },
	}
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			return chatResponse(`{}`), nil
		},
	}

	svc := NewService(repo, store, extract.NewExtractor(nil), gateway, llm.EndpointConfig{BaseURL: "http://x", Model: "m"}, nil)

	plan := FileUpload{Filename: "plan.txt", ContentType: "text/plain", Content: []byte("plan")}
	doc, err := svc.Submit(context.Background(), "alice", historyUpload(), &plan)
	assert.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, doc.Status)

	if assert.Len(t, keys, 2) {
		assert.Contains(t, keys[0], constants.BlobMedicalHistory)
		assert.Contains(t, keys[1], constants.BlobTreatmentPlan)
	}
	if assert.NotNil(t, doc.TreatmentPlanKey) {
		assert.Equal(t, keys[1], *doc.TreatmentPlanKey)
	}
	assert.Equal(t, "plan.txt", *doc.TreatmentPlanFilename)
}

func TestSubmit_GatewayFailureAbsorbed(t *testing.T) {
	var failedID uuid.UUID
	var failedMsg string
	completeCalled := false
	repo := &mockDocumentRepo{
		CreateFunc: func(ctx context.Context, doc *entity.Document) error { return nil },
		CompleteFunc: func(ctx context.Context, docID uuid.UUID, data *entity.PatientData) error {
			completeCalled = true
			return nil
		},
		MarkFailedFunc: func(ctx context.Context, docID uuid.UUID, message string) error {
			failedID = docID
			failedMsg = message
			return nil
		},
	}
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			return nil, &common.GatewayError{Status: 502, Cause: errors.New("bad gateway")}
		},
	}

	svc := NewService(repo, okStore(), extract.NewExtractor(nil), gateway, llm.EndpointConfig{BaseURL: "http://x", Model: "m"}, nil)

	doc, err := svc.Submit(context.Background(), "alice", historyUpload(), nil)
	assert.NoError(t, err, "pipeline failures are absorbed into the document")
	assert.Equal(t, constants.StatusFailed, doc.Status)
	if assert.NotNil(t, doc.ErrorMessage) {
		assert.Contains(t, *doc.ErrorMessage, "bad gateway")
	}
	assert.Equal(t, doc.ID, failedID)
	assert.Equal(t, *doc.ErrorMessage, failedMsg)
	assert.False(t, completeCalled)
	assert.Nil(t, doc.ExtractedData)
}

func TestSubmit_StorageFailureStillCreatesRow(t *testing.T) {
	store := &mockObjectStore{
		PutFunc: func(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
			return "", &common.StorageError{Key: key, Cause: errors.New("connection refused")}
		},
	}
	createCalled := false
	repo := &mockDocumentRepo{
		CreateFunc: func(ctx context.Context, doc *entity.Document) error {
			createCalled = true
			return nil
		},
		MarkFailedFunc: func(ctx context.Context, docID uuid.UUID, message string) error { return nil },
	}
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			t.Fatal("gateway must not be called when blob storage failed")
			return nil, nil
		},
	}

	svc := NewService(repo, store, extract.NewExtractor(nil), gateway, llm.EndpointConfig{BaseURL: "http://x", Model: "m"}, nil)

	doc, err := svc.Submit(context.Background(), "alice", historyUpload(), nil)
	assert.NoError(t, err)
	assert.True(t, createCalled, "the row is still created so the failure is visible")
	assert.Equal(t, constants.StatusFailed, doc.Status)
	if assert.NotNil(t, doc.ErrorMessage) {
		assert.Contains(t, *doc.ErrorMessage, "storage")
	}
}

func TestSubmit_MalformedResponseAbsorbed(t *testing.T) {
	repo := &mockDocumentRepo{
		CreateFunc:     func(ctx context.Context, doc *entity.Document) error { return nil },
		MarkFailedFunc: func(ctx context.Context, docID uuid.UUID, message string) error { return nil },
	}
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			return chatResponse("I could not find any structured data, sorry."), nil
		},
	}

	svc := NewService(repo, okStore(), extract.NewExtractor(nil), gateway, llm.EndpointConfig{BaseURL: "http://x", Model: "m"}, nil)

	doc, err := svc.Submit(context.Background(), "alice", historyUpload(), nil)
	assert.NoError(t, err)
	assert.Equal(t, constants.StatusFailed, doc.Status)
	if assert.NotNil(t, doc.ErrorMessage) {
		assert.Contains(t, *doc.ErrorMessage, "normalize response")
	}
}

func TestSubmit_CreateFailurePropagates(t *testing.T) {
	repo := &mockDocumentRepo{
		CreateFunc: func(ctx context.Context, doc *entity.Document) error {
			return errors.New("db down")
		},
	}
	gateway := &mockGateway{
		CallFunc: func(ctx context.Context, req llm.CallRequest) ([]byte, error) {
			t.Fatal("gateway must not be called when the row was never created")
			return nil, nil
		},
	}

	svc := NewService(repo, okStore(), extract.NewExtractor(nil), gateway, llm.EndpointConfig{BaseURL: "http://x", Model: "m"}, nil)

	doc, err := svc.Submit(context.Background(), "alice", historyUpload(), nil)
	assert.Error(t, err)
	assert.Nil(t, doc)
}
