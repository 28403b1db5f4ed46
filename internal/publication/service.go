// Package publication stores posts and pages through them per author and per follow graph.
package publication

import (
	"errors"
	"strings"

	"socialnet/backend/internal/apperr"
	"socialnet/backend/internal/follow"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/pagination"

	"gorm.io/gorm"
)

// MaxTextLength bounds the size of a publication body.
const MaxTextLength = 2000

// Service manages publications.
type Service struct {
	db      *gorm.DB
	follows *follow.Service
}

// NewService creates a new Service.
func NewService(db *gorm.DB, follows *follow.Service) *Service {
	return &Service{db: db, follows: follows}
}

// Save stores a new publication authored by userID.
func (s *Service) Save(userID uint, text string) (*models.Publication, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Publication text is required")
	}
	if len([]rune(text)) > MaxTextLength {
		return nil, apperr.Validation("Publication text is too long")
	}

	pub := models.Publication{UserID: userID, Text: text}
	if err := s.db.Omit("User").Create(&pub).Error; err != nil {
		return nil, apperr.Store("Failed to save publication", err)
	}
	return &pub, nil
}

// Detail loads one publication with its author.
func (s *Service) Detail(id uint) (*models.Publication, error) {
	var pub models.Publication
	if err := s.db.Preload("User").First(&pub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Publication not found")
		}
		return nil, apperr.Store("Failed to load publication", err)
	}
	return &pub, nil
}

// Remove deletes a publication owned by userID.
// Publications of other users are reported as not found.
func (s *Service) Remove(userID, id uint) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Publication{})
	if result.Error != nil {
		return apperr.Store("Failed to remove publication", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Publication not found")
	}
	return nil
}

// Count returns the number of publications authored by userID.
func (s *Service) Count(userID uint) (int64, error) {
	var total int64
	if err := s.db.Model(&models.Publication{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, apperr.Store("Failed to count publications", err)
	}
	return total, nil
}

// ByUser pages through the publications of userID, newest first.
func (s *Service) ByUser(userID uint, page int) (*pagination.Page[models.Publication], error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, apperr.Store("Failed to load user", err)
	}
	if count == 0 {
		return nil, apperr.NotFound("User not found")
	}
	return s.page(s.db.Where("user_id = ?", userID), page)
}

// Feed pages through the publications of every user viewerID follows, newest first.
func (s *Service) Feed(viewerID uint, page int) (*pagination.Page[models.Publication], error) {
	sets, err := s.follows.FollowsUsersID(viewerID)
	if err != nil {
		return nil, err
	}
	if len(sets.Following) == 0 {
		return pagination.NewPage([]models.Publication{}, 0, max(page, 1), pagination.DefaultPageSize), nil
	}
	return s.page(s.db.Where("user_id IN ?", sets.Following), page)
}

func (s *Service) page(query *gorm.DB, page int) (*pagination.Page[models.Publication], error) {
	result, err := pagination.Paginate[models.Publication](query, page, pagination.DefaultPageSize, newestFirst)
	if err != nil {
		return nil, apperr.Store("Failed to list publications", err)
	}
	return result, nil
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Order("created_at DESC, id DESC")
}
