// Command seed inserts demo listings for one account through the same
// listing service the server uses.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/db"
	"github.com/atinyakov/GolfClubAuctions/internal/logger"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/atinyakov/GolfClubAuctions/internal/repository"
	"github.com/atinyakov/GolfClubAuctions/internal/repository/mongodb"
	"github.com/atinyakov/GolfClubAuctions/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var demoListings = []models.Listing{
	{ClubName: "Stealth 2 Driver 10.5°", Brand: "TaylorMade", ClubType: models.Driver, Condition: models.Excellent, Price: 289.99,
		Description: "Stiff shaft, headcover included. A few light scratches on the crown, face is clean."},
	{ClubName: "Rogue ST Max 3 Wood", Brand: "Callaway", ClubType: models.FairwayWood, Condition: models.VeryGood, Price: 149},
	{ClubName: "Apex 4H", Brand: "Callaway", ClubType: models.Hybrid, Condition: models.Good, Price: 100},
	{ClubName: "T200 4-PW", Brand: "Titleist", ClubType: models.IronSet, Condition: models.LikeNew, Price: 849.5,
		Description: "Played one season. KBS Tour shafts, standard length and lie."},
	{ClubName: "i230 7 Iron", Brand: "Ping", ClubType: models.IndividualIron, Condition: models.Good, Price: 79},
	{ClubName: "Vokey SM9 56°", Brand: "Titleist", ClubType: models.Wedge, Condition: models.Fair, Price: 45},
	{ClubName: "Newport 2", Brand: "Scotty Cameron", ClubType: models.Putter, Condition: models.Excellent, Price: 250},
	{ClubName: "Strata 12-piece Set", Brand: "Callaway", ClubType: models.CompleteSet, Condition: models.VeryGood, Price: 500,
		Description: "Beginner set with stand bag. Great way to get started."},
}

func main() {
	dsn := flag.String("d", os.Getenv("DATABASE_DSN"), "postgres dsn")
	storage := flag.String("storage", "postgres", "listing store: postgres or mongo")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "mongo connection uri")
	mongoDB := flag.String("mongo-db", "golfclub", "mongo database name")
	email := flag.String("email", "seller@example.com", "owner account email")
	name := flag.String("name", "Demo Seller", "owner display name")
	password := flag.String("password", "changeme", "password used if the account is created")
	flag.Parse()

	log := logger.New()
	if err := log.Init("info"); err != nil {
		panic(err)
	}
	zapLogger := log.Log
	defer func() { _ = zapLogger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg, err := db.InitPostgres(*dsn)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer pg.Close()

	owner, err := ensureUser(ctx, repository.NewPostgresAuthRepository(pg), *email, *name, *password)
	if err != nil {
		zapLogger.Fatal("cannot load owner", zap.Error(err))
	}

	var repo service.ListingRepository = repository.NewPostgresListingRepository(pg)
	if *storage == "mongo" {
		client, err := mongodb.Connect(ctx, *mongoURI, 10*time.Second)
		if err != nil {
			zapLogger.Fatal("cannot connect to mongo", zap.Error(err))
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		repo = mongodb.NewListingRepository(client.Database(*mongoDB))
	}

	listings := service.NewListingService(repo, nil, nil, zapLogger)
	id := owner.Identity()
	for _, l := range demoListings {
		created, err := listings.Create(ctx, l, &id)
		if err != nil {
			zapLogger.Error("failed to create listing", zap.String("club", l.ClubName), zap.Error(err))
			continue
		}
		zapLogger.Info("created listing", zap.String("id", created.ID), zap.String("club", created.ClubName))
	}
}

// userStore is the part of the user repository the seed needs.
type userStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

// ensureUser loads the account for email, creating it when missing. The
// email is normalized the same way sign in does, so the account can log in.
func ensureUser(ctx context.Context, users userStore, email, name, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	u, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, models.ErrInvalidCredentials) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u = &models.User{ID: uuid.NewString(), Email: email, DisplayName: name, PasswordHash: hash}
	if err := users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
