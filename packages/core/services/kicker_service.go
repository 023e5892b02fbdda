package services

import (
	"context"
	"strings"

	"kicker-api/packages/core/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KickerService struct {
	db *gorm.DB
}

func NewKickerService(db *gorm.DB) *KickerService {
	return &KickerService{db: db}
}

func (s *KickerService) CreateKicker(ctx context.Context, name string) (*models.Kicker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("kicker name is required")
	}

	kicker := &models.Kicker{Name: name}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(kicker).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("a kicker with this name already exists")
		}
		return nil, persistence("create kicker", err)
	}
	return kicker, nil
}

func (s *KickerService) GetKickerByID(ctx context.Context, id uint) (*models.Kicker, error) {
	var kicker models.Kicker
	if err := s.db.WithContext(ctx).First(&kicker, id).Error; err != nil {
		return nil, lookup("load kicker", "kicker", err)
	}
	return &kicker, nil
}

func (s *KickerService) GetKickers(ctx context.Context) ([]models.Kicker, error) {
	var kickers []models.Kicker
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&kickers).Error; err != nil {
		return nil, persistence("load kickers", err)
	}
	return kickers, nil
}
