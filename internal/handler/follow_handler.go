package handler

import (
	"net/http"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/notify"
	"socialnet/backend/internal/pagination"

	"github.com/gin-gonic/gin"
)

// SaveFollow godoc
// @Summary      Follow a user
// @Description  Creates the edge viewer -> followed. Following the same user twice is an error.
// @Tags         follows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body FollowInput true "User to follow"
// @Success      200  {object}  FollowStoredResponse
// @Failure      400  {object}  ErrorResponse "Invalid input, self follow or already following"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /follow/save [post]
func SaveFollow(c *gin.Context) {
	var input FollowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	viewerID := auth.UserID(c)
	edge, err := followService().Follow(viewerID, input.Followed)
	if err != nil {
		respondError(c, err)
		return
	}

	notify.Default.Emit(hub.Event{
		Type:    hub.EventFollow,
		ActorID: viewerID,
		Payload: gin.H{"user_id": viewerID, "followed_id": edge.FollowedID},
	}, edge.FollowedID)

	c.JSON(http.StatusOK, FollowStoredResponse{
		Status:       "success",
		Message:      "User followed",
		FollowStored: newFollowResponse(*edge),
	})
}

// Unfollow godoc
// @Summary      Unfollow a user
// @Description  Deletes the edge viewer -> id.
// @Tags         follows
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Followed user ID"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Follow relationship not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /follow/unfollow/{id} [delete]
func Unfollow(c *gin.Context) {
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	viewerID := auth.UserID(c)
	if err := followService().Unfollow(viewerID, targetID); err != nil {
		respondError(c, err)
		return
	}

	notify.Default.Emit(hub.Event{
		Type:    hub.EventUnfollow,
		ActorID: viewerID,
		Payload: gin.H{"user_id": viewerID, "followed_id": targetID},
	}, targetID)

	c.JSON(http.StatusOK, StatusResponse{Status: "success", Message: "Follow removed"})
}

// GetFollowing godoc
// @Summary      Users a user follows
// @Description  Pages through the users id follows (defaults to the viewer). user_follow_info holds the viewer's own follow sets.
// @Tags         follows
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  false  "User ID"
// @Param        page  path      int  false  "Page number" default(1)
// @Success      200   {object}  FollowListResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /follow/following/{id}/{page} [get]
func GetFollowing(c *gin.Context) {
	listFollows(c, "Users followed", followService().Following)
}

// GetFollowers godoc
// @Summary      Followers of a user
// @Description  Pages through the users following id (defaults to the viewer). user_follow_info holds the viewer's own follow sets.
// @Tags         follows
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  false  "User ID"
// @Param        page  path      int  false  "Page number" default(1)
// @Success      200   {object}  FollowListResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /follow/followers/{id}/{page} [get]
func GetFollowers(c *gin.Context) {
	listFollows(c, "Followers", followService().Followers)
}

func listFollows(c *gin.Context, message string, list func(uint, int) (*pagination.Page[models.Follow], error)) {
	id, ok := targetID(c)
	if !ok {
		return
	}
	page := pagination.ParsePage(c.Param("page"))

	edges, err := list(id, page)
	if err != nil {
		respondError(c, err)
		return
	}

	sets, err := followService().FollowsUsersID(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]FollowResponse, 0, len(edges.Items))
	for _, e := range edges.Items {
		result = append(result, newFollowResponse(e))
	}

	c.JSON(http.StatusOK, FollowListResponse{
		Status:         "success",
		Message:        message,
		Result:         result,
		Total:          edges.TotalItems,
		Pages:          edges.TotalPages,
		Page:           edges.Current,
		UserFollowInfo: sets,
	})
}
