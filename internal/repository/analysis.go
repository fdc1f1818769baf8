package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gnegDev/path/internal/common"
	"github.com/gnegDev/path/internal/entity"
)

type AnalysisRepository interface {
	GetByDocumentID(ctx context.Context, docID uuid.UUID) (*entity.AnalysisResult, error)
	// Replace deletes any existing result for the document (children first)
	// and inserts the new graph, all inside one transaction. Concurrent
	// replaces for the same document race last-write-wins; no per-document
	// lock is taken here.
	Replace(ctx context.Context, result *entity.AnalysisResult) error
}

type analysisRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewAnalysisRepository(db *gorm.DB, log *slog.Logger) AnalysisRepository {
	if log == nil {
		log = slog.Default()
	}
	return &analysisRepo{db: db, log: log}
}

func (r *analysisRepo) GetByDocumentID(ctx context.Context, docID uuid.UUID) (*entity.AnalysisResult, error) {
	var result entity.AnalysisResult
	err := r.db.WithContext(ctx).
		Preload("Mismatches", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC") }).
		Where("document_id = ?", docID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *analysisRepo) Replace(ctx context.Context, result *entity.AnalysisResult) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev entity.AnalysisResult
		err := tx.Where("document_id = ?", result.DocumentID).First(&prev).Error
		switch {
		case err == nil:
			if err := tx.Where("analysis_result_id = ?", prev.ID).
				Delete(&entity.MismatchEntry{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&prev).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(result).Error
	})
	if err != nil {
		r.log.Error("analysis replace failed", "document_id", result.DocumentID, "error", err)
		return err
	}
	r.log.Info("analysis saved", "document_id", result.DocumentID, "analysis_id", result.ID,
		"mismatches", len(result.Mismatches))
	return nil
}
