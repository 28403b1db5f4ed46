package handler

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/config"
	"socialnet/backend/internal/pagination"
	"socialnet/backend/internal/user"
	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var avatarExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"svg":  true,
}

const avatarPolicy = "default-src 'none'; style-src 'unsafe-inline'; sandbox"

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new account. A taken email or nickname answers with status "warning" and stores nothing.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      200  {object}  RegisterResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /user/registro [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	u, err := userService().Register(user.Registration{
		Name:     input.Name,
		Surname:  input.Surname,
		Nickname: input.Nick,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RegisterResponse{
		Status:  "success",
		Message: "User registered",
		User:    newPrivateUserResponse(*u),
	})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /user/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	u, err := userService().Authenticate(input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := jwt.GenerateToken(u.ID, u.Nickname)
	if err != nil {
		log.Printf("failed to sign token for user %d: %v", u.ID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Status: "error", Message: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Status:  "success",
		Message: "Logged in",
		User:    newPrivateUserResponse(*u),
		Token:   token,
	})
}

// endregion

// region --- User Handlers ---

// GetProfile godoc
// @Summary      Get a user's profile
// @Description  Returns the user, the follow state between the viewer and the user, the user's counters and the first page of their publications.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  ProfileResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /user/profile/{id} [get]
func GetProfile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	profile, err := userService().Profile(auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		Status:       "success",
		User:         newPublicUserResponse(profile.User),
		FollowInfo:   profile.FollowInfo,
		Counters:     profile.Counters,
		Publications: newPublicationPage(profile.Publications),
	})
}

// ListUsers godoc
// @Summary      List users
// @Description  Pages through all users; each row says whether the viewer follows it and whether it follows the viewer.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  path      int  false  "Page number" default(1)
// @Success      200   {object}  UserListResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /user/list/{page} [get]
func ListUsers(c *gin.Context) {
	viewerID := auth.UserID(c)
	page := pagination.ParsePage(c.Param("page"))

	users, sets, err := userService().List(viewerID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make([]ListedUserResponse, 0, len(users.Items))
	for _, u := range users.Items {
		rows = append(rows, ListedUserResponse{
			PublicUserResponse: newPublicUserResponse(u),
			Following:          sets.IsFollowing(u.ID),
			Follower:           sets.IsFollowedBy(u.ID),
		})
	}

	c.JSON(http.StatusOK, UserListResponse{
		Status:        "success",
		Users:         rows,
		Page:          users.Current,
		ItemPage:      users.Size,
		Total:         users.TotalItems,
		Pages:         users.TotalPages,
		UserFollowing: sets.Following,
		UserFollower:  sets.Followers,
	})
}

// UpdateUser godoc
// @Summary      Update the current user
// @Description  Changes any of name, surname, nick, email, bio and password. Nick and email must not belong to another user.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateInput true "Fields to change"
// @Success      200  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /user/update [put]
func UpdateUser(c *gin.Context) {
	var input UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	u, err := userService().Update(auth.UserID(c), user.Changes{
		Name:     input.Name,
		Surname:  input.Surname,
		Nickname: input.Nick,
		Email:    input.Email,
		Bio:      input.Bio,
		Password: input.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		Status:  "success",
		Message: "User updated",
		User:    newPrivateUserResponse(*u),
	})
}

// UploadAvatar godoc
// @Summary      Upload an avatar
// @Description  Stores a png, jpg, jpeg, gif or svg image as the current user's avatar.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file0 formData file true "Avatar image"
// @Success      200  {object}  AvatarResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /user/upload [post]
func UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file0")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Status: "error", Message: "Request does not include an image"})
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if !avatarExtensions[ext] {
		c.JSON(http.StatusBadRequest, ErrorResponse{Status: "error", Message: "Invalid file extension"})
		return
	}

	dir := avatarDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("failed to create avatar directory %s: %v", dir, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Status: "error", Message: "Failed to store avatar"})
		return
	}

	name := uuid.NewString() + "." + ext
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		log.Printf("failed to save avatar %s: %v", dst, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Status: "error", Message: "Failed to store avatar"})
		return
	}

	u, err := userService().SetImage(auth.UserID(c), name)
	if err != nil {
		os.Remove(dst)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AvatarResponse{
		Status:  "success",
		Message: "Avatar uploaded",
		User:    newPrivateUserResponse(*u),
		Image:   name,
	})
}

// GetAvatar godoc
// @Summary      Get an avatar image
// @Tags         users
// @Produce      octet-stream
// @Param        file path      string  true  "Image file name"
// @Success      200
// @Failure      404  {object}  ErrorResponse
// @Router       /user/avatar/{file} [get]
func GetAvatar(c *gin.Context) {
	name := filepath.Base(c.Param("file"))
	if name == "." || name == string(filepath.Separator) {
		c.JSON(http.StatusNotFound, ErrorResponse{Status: "error", Message: "Image not found"})
		return
	}

	path := filepath.Join(avatarDir(), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, ErrorResponse{Status: "error", Message: "Image not found"})
		return
	}

	// Avatars are user content served from our origin: svg may carry script.
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Security-Policy", avatarPolicy)
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	}
	c.File(path)
}

// GetCounters godoc
// @Summary      Get a user's counters
// @Description  Number of users followed, followers and publications. Defaults to the current user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  false  "User ID"
// @Success      200  {object}  CountersResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /user/counters/{id} [get]
func GetCounters(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}

	counters, err := userService().Counters(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CountersResponse{UserID: id, Counters: counters})
}

// endregion

func avatarDir() string {
	return filepath.Join(config.AppConfig.UploadDir, "avatars")
}
