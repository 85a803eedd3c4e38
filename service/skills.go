package service

import (
	"context"

	"gorm.io/gorm"

	"devconnect/domain"
)

type SkillService struct {
	db *gorm.DB
}

func NewSkillService(db *gorm.DB) *SkillService {
	return &SkillService{db: db}
}

func (s *SkillService) List(ctx context.Context) ([]domain.Skill, error) {
	skills := []domain.Skill{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&skills).Error; err != nil {
		return nil, storageError("list skills", "query failed", err)
	}
	return skills, nil
}
