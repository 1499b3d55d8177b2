package controllers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"food-ordering/config"
	"food-ordering/libs"
	"food-ordering/models"
	"food-ordering/repositories"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	menu *repositories.MenuRepository
}

func NewMenuController(menu *repositories.MenuRepository) *MenuController {
	return &MenuController{menu: menu}
}

// GetAll godoc
// @Summary Get menu
// @Description List all menu items
// @Tags Menu
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/menu [get]
func (ctrl *MenuController) GetAll(c *gin.Context) {
	items, err := ctrl.menu.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Menu retrieved successfully",
		"data":    items,
	})
}

// Create godoc
// @Summary Create menu item
// @Description Add a menu item with an optional image (Admin)
// @Tags Admin - Menu
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string false "Description"
// @Param price formData number true "Price"
// @Param category formData string false "Category"
// @Param quantity formData int true "Quantity"
// @Param available formData bool false "Available"
// @Param image formData file false "Image"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/menu [post]
func (ctrl *MenuController) Create(c *gin.Context) {
	item, ok := ctrl.bindItem(c)
	if !ok {
		return
	}

	if err := ctrl.menu.Create(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Menu item created",
		"data":    item,
	})
}

// Update godoc
// @Summary Update menu item
// @Tags Admin - Menu
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/menu/{id} [put]
func (ctrl *MenuController) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid menu item ID"})
		return
	}

	existing, err := ctrl.menu.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrMenuItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	item, ok := ctrl.bindItem(c)
	if !ok {
		return
	}
	item.ID = id
	if item.Image == "" {
		item.Image = existing.Image
	}

	if err := ctrl.menu.Update(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Menu item updated",
		"data":    item,
	})
}

// Delete godoc
// @Summary Delete menu item
// @Tags Admin - Menu
// @Security BearerAuth
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/menu/{id} [delete]
func (ctrl *MenuController) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid menu item ID"})
		return
	}

	if err := ctrl.menu.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrMenuItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Menu item deleted"})
}

// bindItem reads the multipart menu form and stores the uploaded image, if
// any. Responds with 400 and returns ok=false on validation failure.
func (ctrl *MenuController) bindItem(c *gin.Context) (*models.MenuItem, bool) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Name is required"})
		return nil, false
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid price"})
		return nil, false
	}

	quantity, err := strconv.Atoi(c.DefaultPostForm("quantity", "0"))
	if err != nil || quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid quantity"})
		return nil, false
	}

	item := &models.MenuItem{
		Name:        name,
		Description: c.PostForm("description"),
		Price:       price,
		Category:    c.PostForm("category"),
		Image:       c.PostForm("image"),
		Quantity:    quantity,
		Available:   c.DefaultPostForm("available", "true") == "true",
	}

	if file, err := c.FormFile("image"); err == nil {
		path, err := libs.SaveUploadedImage(c, file, filepath.Join(config.AppConfig.UploadDir, "menu"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return nil, false
		}

		item.Image = "/" + filepath.ToSlash(path)
		if libs.CloudinaryEnabled() {
			if url, err := libs.UploadToCloudinary(path); err == nil {
				item.Image = url
			} else {
				log.Printf("Cloudinary upload failed, keeping local image: %v", err)
			}
		}
	}

	return item, true
}
