package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"prodapi/models"
)

func listProductsHandler(c *gin.Context) {
	skip, limit := pagination(c)
	q := db.Model(&models.Product{}).Preload("Category").Preload("Creator")
	if search := c.Query("search"); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	if cid := c.Query("category_id"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		q = q.Where("category_id = ?", id)
	}
	var list []models.Product
	if err := q.Offset(skip).Limit(limit).Find(&list).Error; err != nil {
		logger.Error("product list query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func getProductHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	var product models.Product
	if err := db.Preload("Category").Preload("Creator").First(&product, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func createProductHandler(c *gin.Context) {
	var req struct {
		Name              string    `json:"name" binding:"required,min=1,max=50"`
		Description       string    `json:"description"`
		Price             float64   `json:"price" binding:"gte=0"`
		Stock             int       `json:"stock" binding:"gte=0"`
		LowStockThreshold int       `json:"low_stock_threshold" binding:"gte=0"`
		ImageURL          string    `json:"image_url" binding:"max=255"`
		CategoryID        uuid.UUID `json:"category_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var category models.Category
	if err := db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	user := currentUser(c)
	uid := user.ID
	product := models.Product{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		ImageURL:          req.ImageURL,
		CategoryID:        req.CategoryID,
		CreatedBy:         &uid,
	}
	if err := db.Create(&product).Error; err != nil {
		logger.Error("product create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func updateProductHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	var req struct {
		Name              *string    `json:"name" binding:"omitempty,min=1,max=50"`
		Description       *string    `json:"description"`
		Price             *float64   `json:"price" binding:"omitempty,gte=0"`
		Stock             *int       `json:"stock" binding:"omitempty,gte=0"`
		LowStockThreshold *int       `json:"low_stock_threshold" binding:"omitempty,gte=0"`
		ImageURL          *string    `json:"image_url" binding:"omitempty,max=255"`
		CategoryID        *uuid.UUID `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := db.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if err := db.Save(&product).Error; err != nil {
		logger.Error("product update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func deleteProductHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err := db.Delete(&product).Error; err != nil {
		logger.Error("product delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
