package models

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type OrderItemRequest struct {
	MenuID   int `json:"menu_id" binding:"required"`
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Total         float64            `json:"total" binding:"required,gt=0"`
	PaymentMethod string             `json:"payment_method" binding:"required,oneof=cash card online"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
