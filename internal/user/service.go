// Package user handles accounts: registration, credentials, profiles and listings.
package user

import (
	"errors"
	"strings"

	"socialnet/backend/internal/apperr"
	"socialnet/backend/internal/follow"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/pagination"
	"socialnet/backend/internal/publication"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Registration is the data required to create an account.
type Registration struct {
	Name     string
	Surname  string
	Nickname string
	Email    string
	Password string
}

// Changes is a partial profile update; nil fields are left untouched.
type Changes struct {
	Name     *string
	Surname  *string
	Nickname *string
	Email    *string
	Bio      *string
	Password *string
}

// Counters are the per-user totals shown on a profile.
type Counters struct {
	Following    int64 `json:"following"`
	Followed     int64 `json:"followed"`
	Publications int64 `json:"publications"`
}

// Profile is everything needed to render one user's page for a viewer.
type Profile struct {
	User         models.User
	FollowInfo   follow.State
	Counters     Counters
	Publications *pagination.Page[models.Publication]
}

// Service manages user accounts.
type Service struct {
	db           *gorm.DB
	follows      *follow.Service
	publications *publication.Service
	hashCost     int
}

// NewService creates a new Service.
func NewService(db *gorm.DB, follows *follow.Service, publications *publication.Service) *Service {
	return &Service{
		db:           db,
		follows:      follows,
		publications: publications,
		hashCost:     bcrypt.DefaultCost,
	}
}

// WithHashCost returns a copy of s using the given bcrypt cost.
func (s *Service) WithHashCost(cost int) *Service {
	c := *s
	c.hashCost = cost
	return &c
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Register creates an account. A taken email or nickname is a conflict and nothing is stored.
func (s *Service) Register(in Registration) (*models.User, error) {
	email := normalize(in.Email)
	nick := normalize(in.Nickname)
	if email == "" || nick == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Surname) == "" {
		return nil, apperr.Validation("Missing required fields")
	}

	var existing int64
	if err := s.db.Model(&models.User{}).Where("email = ? OR nickname = ?", email, nick).Count(&existing).Error; err != nil {
		return nil, apperr.Store("Failed to check existing users", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperr.Store("Failed to hash password", err)
	}

	u := models.User{
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Nickname:     nick,
		Email:        email,
		PasswordHash: string(hash),
		Image:        models.DefaultImage,
		Role:         models.RoleUser,
	}
	if err := s.db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Store("Failed to create user", err)
	}
	return &u, nil
}

// Authenticate checks an email/password pair.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("email = ?", normalize(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, apperr.Store("Failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return &u, nil
}

// Get loads a user by id.
func (s *Service) Get(id uint) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Store("Failed to load user", err)
	}
	return &u, nil
}

// Counters counts the users id follows, the users following id and id's publications.
func (s *Service) Counters(id uint) (Counters, error) {
	if _, err := s.Get(id); err != nil {
		return Counters{}, err
	}
	return s.counters(id)
}

// counters assumes id exists.
func (s *Service) counters(id uint) (Counters, error) {
	following, followed, err := s.follows.Counts(id)
	if err != nil {
		return Counters{}, err
	}
	pubs, err := s.publications.Count(id)
	if err != nil {
		return Counters{}, err
	}
	return Counters{Following: following, Followed: followed, Publications: pubs}, nil
}

// Profile assembles targetID's profile as seen by viewerID (0 for anonymous viewers).
func (s *Service) Profile(viewerID, targetID uint) (*Profile, error) {
	u, err := s.Get(targetID)
	if err != nil {
		return nil, err
	}

	state, err := s.follows.FollowThisUser(viewerID, targetID)
	if err != nil {
		return nil, err
	}

	counters, err := s.counters(targetID)
	if err != nil {
		return nil, err
	}

	pubs, err := s.publications.ByUser(targetID, 1)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:         *u,
		FollowInfo:   state,
		Counters:     counters,
		Publications: pubs,
	}, nil
}

// List pages through every user ordered by id, together with the viewer's follow sets
// so each row can be annotated without extra queries.
func (s *Service) List(viewerID uint, page int) (*pagination.Page[models.User], follow.Sets, error) {
	users, err := pagination.Paginate[models.User](s.db, page, pagination.DefaultPageSize, func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
	if err != nil {
		return nil, follow.Sets{}, apperr.Store("Failed to list users", err)
	}

	sets, err := s.follows.FollowsUsersID(viewerID)
	if err != nil {
		return nil, follow.Sets{}, err
	}
	return users, sets, nil
}

// Update applies changes to userID's account. Email and nickname must not belong to another user.
func (s *Service) Update(userID uint, ch Changes) (*models.User, error) {
	u, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if ch.Name != nil {
		if strings.TrimSpace(*ch.Name) == "" {
			return nil, apperr.Validation("Name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*ch.Name)
	}
	if ch.Surname != nil {
		if strings.TrimSpace(*ch.Surname) == "" {
			return nil, apperr.Validation("Surname cannot be empty")
		}
		updates["surname"] = strings.TrimSpace(*ch.Surname)
	}
	if ch.Bio != nil {
		updates["bio"] = strings.TrimSpace(*ch.Bio)
	}

	var email, nick string
	if ch.Email != nil && normalize(*ch.Email) != u.Email {
		email = normalize(*ch.Email)
		if email == "" {
			return nil, apperr.Validation("Email cannot be empty")
		}
		updates["email"] = email
	}
	if ch.Nickname != nil && normalize(*ch.Nickname) != u.Nickname {
		nick = normalize(*ch.Nickname)
		if nick == "" {
			return nil, apperr.Validation("Nickname cannot be empty")
		}
		updates["nickname"] = nick
	}
	if email != "" || nick != "" {
		var taken int64
		if err := s.db.Model(&models.User{}).Where("(email = ? OR nickname = ?) AND id <> ?", email, nick, userID).Count(&taken).Error; err != nil {
			return nil, apperr.Store("Failed to check existing users", err)
		}
		if taken > 0 {
			return nil, apperr.Conflict("Nickname or email already in use")
		}
	}

	if ch.Password != nil && *ch.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*ch.Password), s.hashCost)
		if err != nil {
			return nil, apperr.Store("Failed to hash password", err)
		}
		updates["password_hash"] = string(hash)
	}

	if len(updates) > 0 {
		if err := s.db.Model(u).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict("Nickname or email already in use")
			}
			return nil, apperr.Store("Failed to update user", err)
		}
	}
	return s.Get(userID)
}

// SetImage records a new avatar reference for userID.
func (s *Service) SetImage(userID uint, image string) (*models.User, error) {
	u, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(u).Update("image", image).Error; err != nil {
		return nil, apperr.Store("Failed to update avatar", err)
	}
	u.Image = image
	return u, nil
}
