package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	UsersCollection       = "users"
	BadgeAwardsCollection = "badge_awards"

	defaultDatabase = "codearena"
	connectTimeout  = 10 * time.Second
	opTimeout       = 5 * time.Second
)

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database

// databaseName returns the database named in the URI path, or "codearena".
func databaseName(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Database == "" {
		return defaultDatabase
	}
	return cs.Database
}

// ConnectMongoDB dials and pings the server, then sets MongoClient and
// MongoDatabase.
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetAppName("codearena").
		SetServerSelectionTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	name := databaseName(uri)
	log.Printf("Using database: %s", name)
	MongoClient = client
	MongoDatabase = client.Database(name)
	return nil
}

// DisconnectMongoDB closes the client opened by ConnectMongoDB.
func DisconnectMongoDB(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	if err := MongoClient.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	log.Println("MongoDB connection closed")
	MongoClient = nil
	MongoDatabase = nil
	return nil
}
