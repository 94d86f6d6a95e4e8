package promptlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/infrastructure/database/entities"
)

// PostgresRepository persists prompt logs via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ domain.UsageRepository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Create(ctx context.Context, entry *domain.UsageEntry) error {
	record, err := toEntity(entry)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("insert prompt log: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListForReview(ctx context.Context, filter domain.ReviewFilter) ([]domain.UsageEntry, error) {
	var records []entities.PromptLog
	err := r.db.WithContext(ctx).
		Where("human_label IS NULL").
		Where("confidence IS NULL OR confidence < ?", filter.MaxConfidence).
		Order("created_at DESC").
		Limit(filter.Limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list prompt logs: %w", err)
	}
	return toDomainList(records)
}

func (r *PostgresRepository) ListLabeled(ctx context.Context) ([]domain.UsageEntry, error) {
	var records []entities.PromptLog
	err := r.db.WithContext(ctx).
		Where("human_label IS NOT NULL AND human_label <> ''").
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list labeled prompt logs: %w", err)
	}
	return toDomainList(records)
}

func (r *PostgresRepository) SetHumanLabel(ctx context.Context, id string, label string) (domain.UsageEntry, error) {
	var record entities.PromptLog
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("public_id = ?", id).First(&record).Error; err != nil {
			return err
		}
		record.HumanLabel = &label
		return tx.Model(&record).Update("human_label", label).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UsageEntry{}, domain.ErrUsageEntryNotFound
		}
		return domain.UsageEntry{}, fmt.Errorf("label prompt log: %w", err)
	}
	return toDomain(record)
}

func toEntity(entry *domain.UsageEntry) (entities.PromptLog, error) {
	spec, err := json.Marshal(entry.Spec)
	if err != nil {
		return entities.PromptLog{}, fmt.Errorf("encode spec: %w", err)
	}
	record := entities.PromptLog{
		PublicID:        entry.ID,
		PromptText:      entry.PromptText,
		PredictedIntent: entry.PredictedIntent,
		Confidence:      entry.Confidence,
		ResolvedIntent:  string(entry.ResolvedIntent),
		SpecJSON:        datatypes.JSON(spec),
		HumanLabel:      entry.HumanLabel,
		CreatedAt:       entry.CreatedAt,
	}
	if entry.UserID != "" {
		user := entry.UserID
		record.UserID = &user
	}
	return record, nil
}

func toDomain(record entities.PromptLog) (domain.UsageEntry, error) {
	entry := domain.UsageEntry{
		ID:              record.PublicID,
		PromptText:      record.PromptText,
		PredictedIntent: record.PredictedIntent,
		Confidence:      record.Confidence,
		ResolvedIntent:  domain.Intent(record.ResolvedIntent),
		CreatedAt:       record.CreatedAt,
		HumanLabel:      record.HumanLabel,
	}
	if record.UserID != nil {
		entry.UserID = *record.UserID
	}
	if len(record.SpecJSON) > 0 {
		if err := json.Unmarshal(record.SpecJSON, &entry.Spec); err != nil {
			return domain.UsageEntry{}, fmt.Errorf("decode spec of %s: %w", record.PublicID, err)
		}
	}
	return entry, nil
}

func toDomainList(records []entities.PromptLog) ([]domain.UsageEntry, error) {
	out := make([]domain.UsageEntry, 0, len(records))
	for _, rec := range records {
		entry, err := toDomain(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
