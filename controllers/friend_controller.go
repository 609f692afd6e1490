// File: /controllers/friend_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wavelink-api/services"
	"wavelink-api/utils"
)

type FriendController struct {
	friendService *services.FriendService
}

func NewFriendController(friendService *services.FriendService) *FriendController {
	return &FriendController{friendService: friendService}
}

func (fc *FriendController) SendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	if err := fc.friendService.SendRequest(c.Request.Context(), userID, targetID); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Friend request sent", nil)
}

func (fc *FriendController) AcceptRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requesterID := c.Param("id")

	if err := fc.friendService.Accept(c.Request.Context(), userID, requesterID); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Friend request accepted", nil)
}

func (fc *FriendController) CancelRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	if err := fc.friendService.Cancel(c.Request.Context(), userID, targetID); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Friend request cancelled", nil)
}

func (fc *FriendController) RejectRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requesterID := c.Param("id")

	if err := fc.friendService.Reject(c.Request.Context(), userID, requesterID); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Friend request rejected", nil)
}

func (fc *FriendController) Unfriend(c *gin.Context) {
	userID := c.GetString("user_id")
	friendID := c.Param("id")

	if err := fc.friendService.Unfriend(c.Request.Context(), userID, friendID); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Unfriended", nil)
}

func (fc *FriendController) ListFriends(c *gin.Context) {
	userID := c.GetString("user_id")

	friends, err := fc.friendService.Friends(c.Request.Context(), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

// ListRequests returns incoming and outgoing pending requests.
func (fc *FriendController) ListRequests(c *gin.Context) {
	userID := c.GetString("user_id")

	incoming, outgoing, err := fc.friendService.Requests(c.Request.Context(), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"incoming": incoming,
		"outgoing": outgoing,
	})
}

func (fc *FriendController) SearchUsers(c *gin.Context) {
	userID := c.GetString("user_id")
	query := c.Query("q")

	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query"})
		return
	}

	results, err := fc.friendService.SearchUsers(c.Request.Context(), userID, query)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
