package handler

import (
	"log"
	"net/http"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/notify"
	"socialnet/backend/internal/pagination"

	"github.com/gin-gonic/gin"
)

// SavePublication godoc
// @Summary      Publish
// @Description  Stores a publication for the current user and notifies their followers.
// @Tags         publications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PublicationInput true "Publication"
// @Success      200  {object}  PublicationStoredResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /publication/save [post]
func SavePublication(c *gin.Context) {
	var input PublicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	authorID := auth.UserID(c)
	pub, err := publicationService().Save(authorID, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	if sets, err := followService().FollowsUsersID(authorID); err != nil {
		log.Printf("publication %d: followers not notified: %v", pub.ID, err)
	} else {
		notify.Default.Emit(hub.Event{
			Type:    hub.EventPublication,
			ActorID: authorID,
			Payload: gin.H{"publication_id": pub.ID},
		}, sets.Followers...)
	}

	c.JSON(http.StatusOK, PublicationStoredResponse{
		Status:            "success",
		PublicationStored: newPublicationResponse(*pub),
	})
}

// GetPublication godoc
// @Summary      Get a publication
// @Tags         publications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Publication ID"
// @Success      200  {object}  PublicationDetailResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /publication/detail/{id} [get]
func GetPublication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	pub, err := publicationService().Detail(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PublicationDetailResponse{Status: "success", Publication: newPublicationResponse(*pub)})
}

// RemovePublication godoc
// @Summary      Delete a publication
// @Description  Only the author can delete a publication.
// @Tags         publications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Publication ID"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /publication/remove/{id} [delete]
func RemovePublication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := publicationService().Remove(auth.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "success", Message: "Publication removed"})
}

// GetUserPublications godoc
// @Summary      A user's publications
// @Description  Pages through a user's publications, newest first.
// @Tags         publications
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true   "User ID"
// @Param        page  path      int  false  "Page number" default(1)
// @Success      200   {object}  PublicationListResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /publication/user/{id}/{page} [get]
func GetUserPublications(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	page, err := publicationService().ByUser(id, pagination.ParsePage(c.Param("page")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PublicationListResponse{Status: "success", PublicationPage: newPublicationPage(page)})
}

// GetFeed godoc
// @Summary      Feed
// @Description  Pages through the publications of every user the viewer follows, newest first.
// @Tags         publications
// @Produce      json
// @Security     BearerAuth
// @Param        page  path      int  false  "Page number" default(1)
// @Success      200   {object}  PublicationListResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /publication/feed/{page} [get]
func GetFeed(c *gin.Context) {
	page, err := publicationService().Feed(auth.UserID(c), pagination.ParsePage(c.Param("page")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PublicationListResponse{Status: "success", PublicationPage: newPublicationPage(page)})
}
