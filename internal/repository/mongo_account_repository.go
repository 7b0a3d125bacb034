package repository

import (
	"context"
	"time"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const accountsCollection = "accounts"

// accountDocument is the MongoDB representation of an account.
type accountDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"password_hash"`
	FBAccessToken string             `bson:"fb_access_token"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d *accountDocument) toModel() models.Account {
	return models.Account{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		FBAccessToken: d.FBAccessToken,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// MongoAccountStore persists accounts in a MongoDB collection with a unique
// index on email.
type MongoAccountStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoAccountStore(ctx context.Context, uri, database string) (*MongoAccountStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "failed to ping mongodb")
	}
	return &MongoAccountStore{
		client:     client,
		collection: client.Database(database).Collection(accountsCollection),
	}, nil
}

func (s *MongoAccountStore) Insert(ctx context.Context, account *models.Account) error {
	doc := accountDocument{
		Name:          account.Name,
		Email:         account.Email,
		PasswordHash:  account.PasswordHash,
		FBAccessToken: account.FBAccessToken,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(models.ErrEmailTaken, "email %s", account.Email)
		}
		return errors.Wrap(err, "failed to create account")
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	account.ID = id.Hex()
	return nil
}

func (s *MongoAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var doc accountDocument
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account")
	}
	account := doc.toModel()
	return &account, nil
}

func (s *MongoAccountStore) List(ctx context.Context, limit int) ([]models.Account, error) {
	opts := options.Find().
		SetLimit(int64(clampLimit(limit))).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}
	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to decode accounts")
	}
	return lo.Map(docs, func(d accountDocument, _ int) models.Account { return d.toModel() }), nil
}

func (s *MongoAccountStore) UpdateByEmail(ctx context.Context, email string, patch models.AccountPatch) error {
	res, err := s.collection.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": patchToSet(patch)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(models.ErrEmailTaken, "email %s", lo.FromPtr(patch.Email))
		}
		return errors.Wrap(err, "failed to update account")
	}
	if res.MatchedCount == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

func (s *MongoAccountStore) DeleteByEmail(ctx context.Context, email string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return errors.Wrap(err, "failed to delete account")
	}
	if res.DeletedCount != 1 {
		return models.ErrAccountNotFound
	}
	return nil
}

// Migrate creates the unique email index.
func (s *MongoAccountStore) Migrate(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("accounts_email_unique"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create email index")
	}
	return nil
}

func (s *MongoAccountStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// patchToSet builds the $set document for a sparse update.
func patchToSet(patch models.AccountPatch) bson.M {
	set := bson.M{"updated_at": patch.UpdatedAt}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}
	if patch.FBAccessToken != nil {
		set["fb_access_token"] = *patch.FBAccessToken
	}
	return set
}
