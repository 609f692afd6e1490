// File: /controllers/message_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wavelink-api/services"
	"wavelink-api/utils"
)

type MessageController struct {
	messageService *services.MessageService
}

func NewMessageController(messageService *services.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"` // base64 data URL
}

func (mc *MessageController) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	receiverID := c.Param("id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := mc.messageService.Send(c.Request.Context(), userID, receiverID, req.Text, req.Image)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (mc *MessageController) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	otherID := c.Param("id")

	messages, err := mc.messageService.List(c.Request.Context(), userID, otherID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (mc *MessageController) SearchMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	otherID := c.Param("id")
	query := c.Query("q")

	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query"})
		return
	}

	messages, err := mc.messageService.Search(c.Request.Context(), userID, otherID, query)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (mc *MessageController) DeleteMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	messageID := c.Param("id")

	if err := mc.messageService.DeleteOne(c.Request.Context(), userID, messageID); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Message deleted", nil)
}

// DeleteConversation hides the whole thread for the caller. Messages the
// other party has also hidden are removed for good.
func (mc *MessageController) DeleteConversation(c *gin.Context) {
	userID := c.GetString("user_id")
	otherID := c.Param("id")

	if err := mc.messageService.DeleteAllBetween(c.Request.Context(), userID, otherID); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Conversation deleted", nil)
}

func (mc *MessageController) GetSidebarUsers(c *gin.Context) {
	userID := c.GetString("user_id")

	users, err := mc.messageService.SidebarUsers(c.Request.Context(), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
