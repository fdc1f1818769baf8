package document

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/gnegDev/path/internal/entity"
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
