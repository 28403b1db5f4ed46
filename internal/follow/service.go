// Package follow derives follow state from the follows table and mutates edges.
package follow

import (
	"errors"

	"socialnet/backend/internal/apperr"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/pagination"

	"gorm.io/gorm"
)

// State is the follow relationship between a viewer and a target user.
type State struct {
	Following bool `json:"following"` // viewer -> target
	Follower  bool `json:"follower"`  // target -> viewer
}

// Sets holds every user id a user follows and every user id following them.
type Sets struct {
	Following []uint `json:"following"`
	Followers []uint `json:"followers"`
}

// IsFollowing reports whether id is in the following set.
func (s Sets) IsFollowing(id uint) bool { return contains(s.Following, id) }

// IsFollowedBy reports whether id is in the follower set.
func (s Sets) IsFollowedBy(id uint) bool { return contains(s.Followers, id) }

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Service answers follow queries and applies follow/unfollow actions.
type Service struct {
	db *gorm.DB
}

// NewService creates a new Service backed by db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// FollowThisUser reports whether viewerID follows targetID and whether targetID follows viewerID.
// An anonymous viewer (id 0) has no relationship with anyone.
func (s *Service) FollowThisUser(viewerID, targetID uint) (State, error) {
	var state State
	if viewerID == 0 || targetID == 0 || viewerID == targetID {
		return state, nil
	}

	var edges []models.Follow
	err := s.db.
		Where("(user_id = ? AND followed_id = ?) OR (user_id = ? AND followed_id = ?)", viewerID, targetID, targetID, viewerID).
		Find(&edges).Error
	if err != nil {
		return state, apperr.Store("Failed to load follow state", err)
	}

	for _, e := range edges {
		if e.UserID == viewerID {
			state.Following = true
		} else {
			state.Follower = true
		}
	}
	return state, nil
}

// FollowsUsersID loads both follow sets of userID in two queries, so listings can be
// annotated row by row without further lookups.
func (s *Service) FollowsUsersID(userID uint) (Sets, error) {
	sets := Sets{Following: []uint{}, Followers: []uint{}}
	if userID == 0 {
		return sets, nil
	}

	if err := s.db.Model(&models.Follow{}).Where("user_id = ?", userID).Order("followed_id").Pluck("followed_id", &sets.Following).Error; err != nil {
		return Sets{}, apperr.Store("Failed to load followed users", err)
	}
	if err := s.db.Model(&models.Follow{}).Where("followed_id = ?", userID).Order("user_id").Pluck("user_id", &sets.Followers).Error; err != nil {
		return Sets{}, apperr.Store("Failed to load followers", err)
	}
	return sets, nil
}

// Follow creates the edge viewerID -> targetID.
// Following someone twice is a conflict, not a no-op.
func (s *Service) Follow(viewerID, targetID uint) (*models.Follow, error) {
	if targetID == 0 {
		return nil, apperr.Validation("A user to follow is required")
	}
	if viewerID == targetID {
		return nil, apperr.Validation("Cannot follow yourself")
	}

	var target models.User
	if err := s.db.First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User to follow not found")
		}
		return nil, apperr.Store("Failed to load user to follow", err)
	}

	var existing int64
	if err := s.db.Model(&models.Follow{}).Where("user_id = ? AND followed_id = ?", viewerID, targetID).Count(&existing).Error; err != nil {
		return nil, apperr.Store("Failed to check existing follow", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("You already follow this user")
	}

	edge := models.Follow{
		UserID:     viewerID,
		FollowedID: targetID,
	}
	if err := s.db.Omit("User", "Followed").Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("You already follow this user")
		}
		return nil, apperr.Store("Failed to save follow", err)
	}

	edge.Followed = target
	return &edge, nil
}

// Unfollow deletes the edge viewerID -> targetID. A missing edge is reported as not found.
func (s *Service) Unfollow(viewerID, targetID uint) error {
	result := s.db.Where("user_id = ? AND followed_id = ?", viewerID, targetID).Delete(&models.Follow{})
	if result.Error != nil {
		return apperr.Store("Failed to remove follow", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Follow relationship not found")
	}
	return nil
}

// Counts returns how many users userID follows and how many follow userID.
func (s *Service) Counts(userID uint) (following, followers int64, err error) {
	if err = s.db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, apperr.Store("Failed to count followed users", err)
	}
	if err = s.db.Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, apperr.Store("Failed to count followers", err)
	}
	return following, followers, nil
}

// Following pages through the edges where userID is the follower.
func (s *Service) Following(userID uint, page int) (*pagination.Page[models.Follow], error) {
	return s.list("user_id = ?", userID, page)
}

// Followers pages through the edges where userID is being followed.
func (s *Service) Followers(userID uint, page int) (*pagination.Page[models.Follow], error) {
	return s.list("followed_id = ?", userID, page)
}

func (s *Service) list(cond string, userID uint, page int) (*pagination.Page[models.Follow], error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	result, err := pagination.Paginate[models.Follow](
		s.db.Where(cond, userID), page, pagination.DefaultPageSize,
		func(db *gorm.DB) *gorm.DB {
			return db.Preload("User").Preload("Followed").Order("created_at, user_id, followed_id")
		},
	)
	if err != nil {
		return nil, apperr.Store("Failed to list follows", err)
	}
	return result, nil
}

func (s *Service) ensureUser(userID uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperr.Store("Failed to load user", err)
	}
	if count == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
