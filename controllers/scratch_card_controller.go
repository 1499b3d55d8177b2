package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"food-ordering/repositories"
	"food-ordering/services"

	"github.com/gin-gonic/gin"
)

type ScratchCardController struct {
	scratch *services.ScratchService
}

func NewScratchCardController(scratch *services.ScratchService) *ScratchCardController {
	return &ScratchCardController{scratch: scratch}
}

// Create godoc
// @Summary Create scratch card
// @Description Issue a new unscratched card for the caller
// @Tags Scratch Cards
// @Security BearerAuth
// @Produce json
// @Success 201 {object} models.Response
// @Router /api/scratch-cards [post]
func (ctrl *ScratchCardController) Create(c *gin.Context) {
	userID := c.GetInt("user_id")

	card, err := ctrl.scratch.CreateCard(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Scratch card created",
		"data":    card,
	})
}

// List godoc
// @Summary List caller's scratch cards
// @Tags Scratch Cards
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/scratch-cards [get]
func (ctrl *ScratchCardController) List(c *gin.Context) {
	userID := c.GetInt("user_id")

	cards, err := ctrl.scratch.ListCards(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Scratch cards retrieved",
		"data":    cards,
	})
}

// Scratch godoc
// @Summary Scratch a card
// @Description Assigns the card's prize once and credits the caller's discount balance
// @Tags Scratch Cards
// @Security BearerAuth
// @Produce json
// @Param id path int true "Card ID"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/scratch-cards/{id}/scratch [put]
func (ctrl *ScratchCardController) Scratch(c *gin.Context) {
	userID := c.GetInt("user_id")

	cardID, err := strconv.Atoi(c.Param("id"))
	if err != nil || cardID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid card ID"})
		return
	}

	prize, err := ctrl.scratch.Scratch(c.Request.Context(), cardID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrCardNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Card not found"})
		case errors.Is(err, services.ErrNotCardOwner):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Card belongs to another user"})
		case errors.Is(err, repositories.ErrAlreadyScratched):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Already scratched"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Card scratched",
		"data":    gin.H{"prize": prize},
	})
}
