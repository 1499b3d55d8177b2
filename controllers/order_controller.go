package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"food-ordering/models"
	"food-ordering/repositories"
	"food-ordering/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Create godoc
// @Summary Create order
// @Description Place a new order with menu items
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Order"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/orders [post]
func (ctrl *OrderController) Create(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	order, err := ctrl.orders.Create(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyOrder) || errors.Is(err, services.ErrUnknownMenuItem) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order created successfully",
		"data":    order,
	})
}

// GetAll godoc
// @Summary List all orders
// @Description All orders sorted by status priority, then creation time (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/orders [get]
func (ctrl *OrderController) GetAll(c *gin.Context) {
	orders, err := ctrl.orders.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetUserOrders godoc
// @Summary List caller's orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/orders/user [get]
func (ctrl *OrderController) GetUserOrders(c *gin.Context) {
	userID := c.GetInt("user_id")

	orders, err := ctrl.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// Track godoc
// @Summary Track an order
// @Description Public tracking projection by order number
// @Tags Orders
// @Produce json
// @Param orderNumber path int true "Order number"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/orders/track/{orderNumber} [get]
func (ctrl *OrderController) Track(c *gin.Context) {
	orderNumber, err := strconv.Atoi(c.Param("orderNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order number"})
		return
	}

	tracked, err := ctrl.orders.Track(c.Request.Context(), orderNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order retrieved successfully",
		"data":    tracked,
	})
}

// GetPublic godoc
// @Summary List public orders
// @Description Approved and completed orders, newest first
// @Tags Orders
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/orders/public [get]
func (ctrl *OrderController) GetPublic(c *gin.Context) {
	orders, err := ctrl.orders.ListPublic(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Public orders retrieved successfully",
		"data":    orders,
	})
}

// UpdateStatus godoc
// @Summary Update order status
// @Description Transition an order through its lifecycle (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/orders/{id}/status [put]
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Status is required"})
		return
	}

	order, err := ctrl.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status"})
		case errors.Is(err, repositories.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated successfully",
		"data":    order,
	})
}
