package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gnegDev/path/constants"
	"github.com/gnegDev/path/internal/common"
	"github.com/gnegDev/path/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	// Complete persists the extracted record and flips the document to
	// COMPLETED inside one transaction.
	Complete(ctx context.Context, docID uuid.UUID, data *entity.PatientData) error
	MarkFailed(ctx context.Context, docID uuid.UUID, message string) error
	GetByIDAndOwner(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error)
	ListByOwner(ctx context.Context, owner string) ([]*entity.Document, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewDocumentRepository(db *gorm.DB, log *slog.Logger) DocumentRepository {
	if log == nil {
		log = slog.Default()
	}
	return &documentRepo{db: db, log: log}
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		r.log.Error("document create failed", "owner", doc.Owner, "error", err)
		return err
	}
	r.log.Info("document created", "document_id", doc.ID, "owner", doc.Owner, "status", doc.Status)
	return nil
}

func (r *documentRepo) Complete(ctx context.Context, docID uuid.UUID, data *entity.PatientData) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(data).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Document{}).
			Where("id = ?", docID).
			Update("status", constants.StatusCompleted).Error
	})
	if err != nil {
		r.log.Error("document complete failed", "document_id", docID, "error", err)
		return err
	}
	r.log.Info("document completed", "document_id", docID, "patient_data_id", data.ID)
	return nil
}

func (r *documentRepo) MarkFailed(ctx context.Context, docID uuid.UUID, message string) error {
	err := r.db.WithContext(ctx).Model(&entity.Document{}).
		Where("id = ?", docID).
		Updates(map[string]any{
			"status":        constants.StatusFailed,
			"error_message": message,
		}).Error
	if err != nil {
		r.log.Error("document mark-failed failed", "document_id", docID, "error", err)
		return err
	}
	r.log.Warn("document failed", "document_id", docID, "error_message", message)
	return nil
}

func (r *documentRepo) GetByIDAndOwner(ctx context.Context, id uuid.UUID, owner string) (*entity.Document, error) {
	var doc entity.Document
	err := r.withChildren(r.db.WithContext(ctx)).
		Where("id = ? AND owner = ?", id, owner).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListByOwner(ctx context.Context, owner string) ([]*entity.Document, error) {
	var docs []*entity.Document
	err := r.withChildren(r.db.WithContext(ctx)).
		Where("owner = ?", owner).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) withChildren(tx *gorm.DB) *gorm.DB {
	ordered := func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC") }
	return tx.
		Preload("ExtractedData").
		Preload("ExtractedData.TreatmentHistory", ordered).
		Preload("ExtractedData.BiopsyResults", ordered).
		Preload("ExtractedData.Consultations", ordered).
		Preload("ExtractedData.ImagingResults", ordered)
}
