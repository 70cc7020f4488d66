package routes

import (
	"net/http"

	"modular-rag-service/models"
	"modular-rag-service/services"
	"modular-rag-service/utils"

	"github.com/gin-gonic/gin"
)

// SetupChatRoutes registers the conversational message endpoint.
func SetupChatRoutes(router *gin.Engine, booking *services.BookingService) {
	api := router.Group("/api/v1")
	api.POST("/chat", handleChat(booking))
}

func handleChat(booking *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		record, booked, err := booking.HandleMessage(c.Request.Context(), req.Message)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to record booking", nil)
			return
		}

		if !booked {
			// intent-without-details and no-intent are the same outcome on
			// purpose; extraction internals are not leaked to this surface
			c.JSON(http.StatusOK, models.ChatResponse{
				Booked:  false,
				Message: "no booking recorded",
			})
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{
			Booked:  true,
			Message: "Interview booked successfully",
			Booking: record,
		})
	}
}
