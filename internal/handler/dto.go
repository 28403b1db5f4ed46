package handler

import (
	"time"

	"socialnet/backend/internal/follow"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/pagination"
	"socialnet/backend/internal/user"
)

// region --- Inputs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Name     string `json:"name" binding:"required,personname" example:"Ana"`
	Surname  string `json:"surname" binding:"required,personname" example:"García"`
	Nick     string `json:"nick" binding:"required,nickname" example:"anag"`
	Email    string `json:"email" binding:"required,email" example:"ana@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateInput defines the fields a user may change on their own account.
type UpdateInput struct {
	Name     *string `json:"name" binding:"omitempty,personname"`
	Surname  *string `json:"surname" binding:"omitempty,personname"`
	Nick     *string `json:"nick" binding:"omitempty,nickname"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Bio      *string `json:"bio" binding:"omitempty,max=1000"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// FollowInput names the user to follow.
type FollowInput struct {
	Followed uint `json:"followed" binding:"required" example:"2"`
}

// PublicationInput is the body of a new publication.
type PublicationInput struct {
	Text string `json:"text" binding:"required,max=2000" example:"Hello world"`
}

// endregion

// region --- Responses ---

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"An error message"`
}

// PublicUserResponse is what anyone may see about a user.
type PublicUserResponse struct {
	ID        uint      `json:"id" example:"1"`
	Name      string    `json:"name" example:"Ana"`
	Surname   string    `json:"surname" example:"García"`
	Nick      string    `json:"nick" example:"anag"`
	Bio       string    `json:"bio"`
	Image     string    `json:"image" example:"default.png"`
	CreatedAt time.Time `json:"created_at"`
}

// PrivateUserResponse is the authenticated user's own account.
type PrivateUserResponse struct {
	PublicUserResponse
	Email string `json:"email" example:"ana@example.com"`
	Role  string `json:"role" example:"role_user"`
}

// ListedUserResponse is a user row annotated with the viewer's follow state.
type ListedUserResponse struct {
	PublicUserResponse
	Following bool `json:"following"`
	Follower  bool `json:"follower"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Status  string              `json:"status" example:"success"`
	Message string              `json:"message"`
	User    PrivateUserResponse `json:"user"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Status  string              `json:"status" example:"success"`
	Message string              `json:"message"`
	User    PrivateUserResponse `json:"user"`
	Token   string              `json:"token"`
}

// UserResponse wraps the authenticated user's account after a change.
type UserResponse struct {
	Status  string              `json:"status" example:"success"`
	Message string              `json:"message"`
	User    PrivateUserResponse `json:"user"`
}

// AvatarResponse is returned after an avatar upload.
type AvatarResponse struct {
	Status  string              `json:"status" example:"success"`
	Message string              `json:"message"`
	User    PrivateUserResponse `json:"user"`
	Image   string              `json:"image"`
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Status        string               `json:"status" example:"success"`
	Users         []ListedUserResponse `json:"users"`
	Page          int                  `json:"page"`
	ItemPage      int                  `json:"itemPage"`
	Total         int64                `json:"total"`
	Pages         int                  `json:"pages"`
	UserFollowing []uint               `json:"user_following"`
	UserFollower  []uint               `json:"user_follower"`
}

// CountersResponse holds a user's totals.
type CountersResponse struct {
	UserID uint `json:"userId"`
	user.Counters
}

// PublicationResponse is one publication with its author.
type PublicationResponse struct {
	ID        uint                `json:"id"`
	Text      string              `json:"text"`
	File      string              `json:"file,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	User      *PublicUserResponse `json:"user,omitempty"`
}

// PublicationPage is one page of publications.
type PublicationPage struct {
	Publications []PublicationResponse `json:"publications"`
	Total        int64                 `json:"total"`
	Pages        int                   `json:"pages"`
	Page         int                   `json:"page"`
}

// PublicationListResponse wraps a PublicationPage.
type PublicationListResponse struct {
	Status string `json:"status" example:"success"`
	PublicationPage
}

// PublicationStoredResponse is returned after saving a publication.
type PublicationStoredResponse struct {
	Status            string              `json:"status" example:"success"`
	PublicationStored PublicationResponse `json:"publicationStored"`
}

// PublicationDetailResponse wraps a single publication.
type PublicationDetailResponse struct {
	Status      string              `json:"status" example:"success"`
	Publication PublicationResponse `json:"publication"`
}

// ProfileResponse is a user's profile page as seen by the viewer.
type ProfileResponse struct {
	Status       string             `json:"status" example:"success"`
	User         PublicUserResponse `json:"user"`
	FollowInfo   follow.State       `json:"followInfo"`
	Counters     user.Counters      `json:"counters"`
	Publications PublicationPage    `json:"publications"`
}

// FollowResponse is one follow edge with both users.
type FollowResponse struct {
	UserID     uint                `json:"user_id"`
	FollowedID uint                `json:"followed_id"`
	CreatedAt  time.Time           `json:"created_at"`
	User       *PublicUserResponse `json:"user,omitempty"`
	Followed   *PublicUserResponse `json:"followed,omitempty"`
}

// FollowStoredResponse is returned after a follow.
type FollowStoredResponse struct {
	Status       string         `json:"status" example:"success"`
	Message      string         `json:"message"`
	FollowStored FollowResponse `json:"followStored"`
}

// StatusResponse is a bare status/message pair.
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message"`
}

// FollowListResponse is one page of follow edges plus the viewer's follow sets.
type FollowListResponse struct {
	Status         string           `json:"status" example:"success"`
	Message        string           `json:"message"`
	Result         []FollowResponse `json:"result"`
	Total          int64            `json:"total"`
	Pages          int              `json:"pages"`
	Page           int              `json:"page"`
	UserFollowInfo follow.Sets      `json:"user_follow_info"`
}

// endregion

// region --- Builders ---

func newPublicUserResponse(u models.User) PublicUserResponse {
	return PublicUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Nick:      u.Nickname,
		Bio:       u.Bio,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}
}

// optionalUser returns nil for associations that were not loaded.
func optionalUser(u models.User) *PublicUserResponse {
	if u.ID == 0 {
		return nil
	}
	r := newPublicUserResponse(u)
	return &r
}

func newPrivateUserResponse(u models.User) PrivateUserResponse {
	return PrivateUserResponse{
		PublicUserResponse: newPublicUserResponse(u),
		Email:              u.Email,
		Role:               u.Role,
	}
}

func newFollowResponse(f models.Follow) FollowResponse {
	return FollowResponse{
		UserID:     f.UserID,
		FollowedID: f.FollowedID,
		CreatedAt:  f.CreatedAt,
		User:       optionalUser(f.User),
		Followed:   optionalUser(f.Followed),
	}
}

func newPublicationResponse(p models.Publication) PublicationResponse {
	return PublicationResponse{
		ID:        p.ID,
		Text:      p.Text,
		File:      p.File,
		CreatedAt: p.CreatedAt,
		User:      optionalUser(p.User),
	}
}

func newPublicationPage(page *pagination.Page[models.Publication]) PublicationPage {
	items := make([]PublicationResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, newPublicationResponse(p))
	}
	return PublicationPage{
		Publications: items,
		Total:        page.TotalItems,
		Pages:        page.TotalPages,
		Page:         page.Current,
	}
}

// endregion
