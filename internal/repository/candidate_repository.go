package repository

import (
	"context"

	"github.com/fadilmartias/cv-screener/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db}
}

// GetCandidates returns the roster in insertion order.
func (r *CandidateRepository) GetCandidates(ctx context.Context) ([]model.Candidate, error) {
	var records []model.CandidateRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	roster := make([]model.Candidate, 0, len(records))
	for i := range records {
		roster = append(roster, records[i].ToCandidate())
	}
	return roster, nil
}

// UpsertCandidates imports a roster keyed by candidate name.
func (r *CandidateRepository) UpsertCandidates(ctx context.Context, roster []model.Candidate) error {
	if len(roster) == 0 {
		return nil
	}
	records := make([]model.CandidateRecord, 0, len(roster))
	for _, c := range roster {
		records = append(records, model.CandidateRecord{
			Name:   c.Name,
			Email:  c.Email,
			Role:   c.Role,
			Match:  c.Match,
			Skills: c.Skills,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "role", "match", "skills", "updated_at"}),
	}).Create(&records).Error
}
