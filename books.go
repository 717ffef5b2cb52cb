package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Book lives in the document store, not in Postgres.
type Book struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Author    string             `bson:"author" json:"author"`
	Price     float64            `bson:"price" json:"price"`
	Pages     int                `bson:"pages" json:"pages"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

func requireBooks(c *gin.Context) bool {
	if bookColl == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not configured"})
		return false
	}
	return true
}

func listBooksHandler(c *gin.Context) {
	if !requireBooks(c) {
		return
	}
	skip, limit := pagination(c)
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := bookColl.Find(c.Request.Context(), bson.M{}, opts)
	if err != nil {
		logger.Error("book list query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	books := []Book{}
	if err := cursor.All(c.Request.Context(), &books); err != nil {
		logger.Error("book cursor decode failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, books)
}

func getBookHandler(c *gin.Context) {
	if !requireBooks(c) {
		return
	}
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	var book Book
	err = bookColl.FindOne(c.Request.Context(), bson.M{"_id": oid}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		logger.Error("book fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, book)
}

func createBookHandler(c *gin.Context) {
	if !requireBooks(c) {
		return
	}
	var req struct {
		Title  string  `json:"title" binding:"required,min=1,max=255"`
		Author string  `json:"author" binding:"required,min=1,max=255"`
		Price  float64 `json:"price" binding:"gte=0"`
		Pages  int     `json:"pages" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	book := Book{
		Title:     req.Title,
		Author:    req.Author,
		Price:     req.Price,
		Pages:     req.Pages,
		CreatedAt: time.Now().UTC(),
	}
	res, err := bookColl.InsertOne(c.Request.Context(), book)
	if err != nil {
		logger.Error("book insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	book.ID = res.InsertedID.(primitive.ObjectID)
	c.JSON(http.StatusCreated, book)
}

func updateBookHandler(c *gin.Context) {
	if !requireBooks(c) {
		return
	}
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	var req struct {
		Title  *string  `json:"title" binding:"omitempty,min=1,max=255"`
		Author *string  `json:"author" binding:"omitempty,min=1,max=255"`
		Price  *float64 `json:"price" binding:"omitempty,gte=0"`
		Pages  *int     `json:"pages" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Author != nil {
		set["author"] = *req.Author
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Pages != nil {
		set["pages"] = *req.Pages
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	var book Book
	after := options.After
	err = bookColl.FindOneAndUpdate(
		c.Request.Context(),
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		logger.Error("book update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, book)
}

func deleteBookHandler(c *gin.Context) {
	if !requireBooks(c) {
		return
	}
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	res, err := bookColl.DeleteOne(c.Request.Context(), bson.M{"_id": oid})
	if err != nil {
		logger.Error("book delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
