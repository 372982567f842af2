package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository on a single collection.
type UserRepository struct {
	col      *mongo.Collection
	verifier ports.CredentialVerifier
	now      func() time.Time
}

func NewUserRepository(db *mongo.Database, verifier ports.CredentialVerifier) *UserRepository {
	return &UserRepository{
		col:      db.Collection(collectionUsers),
		verifier: verifier,
		now:      time.Now,
	}
}

type mongoGoogle struct {
	ID    string `bson:"id"`
	Token string `bson:"token,omitempty"`
}

type mongoUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password,omitempty"`
	Email     string             `bson:"email,omitempty"`
	FirstName string             `bson:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty"`
	Roles     []string           `bson:"roles"`
	Google    *mongoGoogle       `bson:"google,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toDoc(u *domain.User) mongoUser {
	doc := mongoUser{
		Username:  u.Username,
		Password:  u.Password,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
	if doc.Roles == nil {
		doc.Roles = []string{}
	}
	if u.Google != nil {
		doc.Google = &mongoGoogle{ID: u.Google.ID, Token: u.Google.Token}
	}
	return doc
}

func (d mongoUser) toDomain() *domain.User {
	u := &domain.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Password:  d.Password,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Roles:     d.Roles,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}
	if d.Google != nil {
		u.Google = &domain.ExternalIdentity{ID: d.Google.ID, Token: d.Google.Token}
	}
	return u
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidUserID
	}
	return oid, nil
}

// writeError converts a duplicate key rejection into a ConstraintError that
// carries the driver message verbatim.
func writeError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return &domain.ConstraintError{Detail: err.Error()}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now().UTC()
	doc := toDoc(user)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, writeError("insert user", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByCredentials looks the user up by username and lets the verifier
// decide on the password. A rejected password is reported as not found.
func (r *UserRepository) FindByCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !r.verifier.Verify(user.Password, password) {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) FindByExternalID(ctx context.Context, provider, externalID string) (*domain.User, error) {
	if provider != domain.ProviderGoogle || externalID == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"google.id": externalID})
}

// Update applies a $set merge of changes. Password is never part of the set.
func (r *UserRepository) Update(ctx context.Context, id string, changes domain.UserChanges) (domain.WriteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.WriteResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	changes.Password = nil
	if changes.IsEmpty() {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return domain.WriteResult{}, fmt.Errorf("update user: %w", err)
		}
		return domain.WriteResult{Matched: n, OK: 1}, nil
	}

	set := bson.M{"updatedAt": r.now().UTC()}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.FirstName != nil {
		set["firstName"] = *changes.FirstName
	}
	if changes.LastName != nil {
		set["lastName"] = *changes.LastName
	}
	if changes.Roles != nil {
		set["roles"] = changes.Roles
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return domain.WriteResult{}, writeError("update user", err)
	}
	return domain.WriteResult{Matched: res.MatchedCount, Modified: res.ModifiedCount, OK: 1}, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (domain.WriteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return domain.WriteResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.WriteResult{OK: 1}, domain.ErrUserNotFound
	}
	return domain.WriteResult{Matched: res.DeletedCount, OK: 1}, nil
}

// EnsureIndexes creates the unique indexes the store relies on for
// username and external identity uniqueness.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "google.id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}
