package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ytuqete/cryptoPulse/internal/domain"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"github.com/ytuqete/cryptoPulse/internal/domain/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type userDocument struct {
	Id        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Watchlist []string  `bson:"watchlist"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{
		collection: db.Collection(usersCollection),
	}
}

var _ repositories.UserRepository = (*UserRepo)(nil)

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *UserRepo) Create(ctx context.Context, user *entities.ValidatedUser) (*entities.User, error) {
	u := user.GetUser()
	doc := userDocument{
		Id:        u.Id.String(),
		Email:     u.Email,
		Password:  u.Password,
		Watchlist: u.Watchlist,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if doc.Watchlist == nil {
		doc.Watchlist = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("email %q: %w", u.Email, domain.ErrConflict)
		}
		return nil, err
	}
	return toEntity(&doc)
}

func (r *UserRepo) FindById(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) UpdateWatchlist(ctx context.Context, id uuid.UUID, watchlist []string) error {
	if watchlist == nil {
		watchlist = []string{}
	}

	res, err := r.collection.UpdateByID(ctx, id.String(), bson.M{
		"$set": bson.M{"watchlist": watchlist, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*entities.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return toEntity(&doc)
}

func toEntity(doc *userDocument) (*entities.User, error) {
	id, err := uuid.Parse(doc.Id)
	if err != nil {
		return nil, fmt.Errorf("user document id %q: %w", doc.Id, err)
	}
	watchlist := doc.Watchlist
	if watchlist == nil {
		watchlist = []string{}
	}
	return &entities.User{
		Id:        id,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		Email:     doc.Email,
		Password:  doc.Password,
		Watchlist: watchlist,
	}, nil
}
