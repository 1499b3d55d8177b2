package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"food-ordering/repositories"
	"food-ordering/services"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	orders *services.OrderService
}

func NewPaymentController(orders *services.OrderService) *PaymentController {
	return &PaymentController{orders: orders}
}

// Process godoc
// @Summary Process payment
// @Description Mock payment processing, always succeeds and resets the payer's discount
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param orderId path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/payments/{orderId}/process [post]
func (ctrl *PaymentController) Process(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
		return
	}

	payment, err := ctrl.orders.ProcessPayment(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment processed successfully",
		"data":    payment,
	})
}

// Status godoc
// @Summary Get payment status
// @Tags Payments
// @Produce json
// @Param orderId path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/payments/{orderId}/status [get]
func (ctrl *PaymentController) Status(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
		return
	}

	status, err := ctrl.orders.PaymentStatus(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment status retrieved",
		"data":    gin.H{"status": status},
	})
}
