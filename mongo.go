package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var (
	mongoClient *mongo.Client
	bookColl    *mongo.Collection
)

// connectMongo opens the document-store connection and binds the books
// collection. Mongo is optional: with no MONGO_URL configured the book
// endpoints respond 503 and the rest of the API works normally.
func connectMongo(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	if cfg.Mongo.URL == "" {
		logger.Warn("MONGO_URL not set; book endpoints disabled")
		return nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URL))
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return err
	}
	mongoClient = client
	bookColl = client.Database(cfg.Mongo.Database).Collection("books")
	logger.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))
	return nil
}

func closeMongo(ctx context.Context, logger *zap.Logger) {
	if mongoClient == nil {
		return
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Warn("mongodb disconnect failed", zap.Error(err))
	}
}
