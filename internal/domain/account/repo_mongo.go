package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
	"github.com/wellness/portal/internal/platform/mongostore"
)

type userRepoMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepoMongo(db *mongo.Database) UserRepository {
	return &userRepoMongo{coll: db.Collection(mongostore.UsersCollection), now: time.Now}
}

func (r *userRepoMongo) stamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *userRepoMongo) findOne(ctx context.Context, filter bson.M, role auth.Role) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(notFoundFor(role))
	}
	if err != nil {
		return nil, apperr.Wrap(err, "find user")
	}
	return &u, nil
}

func (r *userRepoMongo) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.stamp()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := r.coll.InsertOne(ctx, u)
	if mongostore.IsDuplicateKey(err) {
		return apperr.Conflict(msgUserExists)
	}
	return apperr.Wrap(err, "insert user")
}

func (r *userRepoMongo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "")
}

func (r *userRepoMongo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "")
}

func (r *userRepoMongo) GetByIDAndRole(ctx context.Context, id string, role auth.Role) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "role": role}, role)
}

func (r *userRepoMongo) ListByRole(ctx context.Context, role auth.Role) ([]*User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, apperr.Wrap(err, "list users")
	}
	items := []*User{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, apperr.Wrap(err, "decode users")
	}
	return items, nil
}

func (r *userRepoMongo) UpdateProfile(ctx context.Context, u *User) error {
	u.UpdatedAt = r.stamp()

	set := bson.M{
		"name":            u.Name,
		"profileComplete": u.ProfileComplete,
		"updatedAt":       u.UpdatedAt,
	}
	unset := bson.M{}
	setOrUnset := func(key string, present bool, v interface{}) {
		if present {
			set[key] = v
		} else {
			unset[key] = ""
		}
	}
	switch u.Role {
	case auth.RolePatient:
		setOrUnset("age", u.Age != nil, u.Age)
		setOrUnset("gender", u.Gender != "", u.Gender)
		set["healthConditions"] = nonNil(u.HealthConditions)
	case auth.RoleProvider:
		setOrUnset("specialization", u.Specialization != "", u.Specialization)
		setOrUnset("yearsOfExperience", u.YearsOfExperience != nil, u.YearsOfExperience)
		setOrUnset("bio", u.Bio != "", u.Bio)
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": u.ID}, update)
	if err != nil {
		return apperr.Wrap(err, "update user")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *userRepoMongo) AddHealthCondition(ctx context.Context, patientID, condition string) ([]string, error) {
	filter := bson.M{
		"_id":              patientID,
		"role":             auth.RolePatient,
		"healthConditions": bson.M{"$ne": condition},
	}
	update := bson.M{
		"$push": bson.M{"healthConditions": condition},
		"$set":  bson.M{"updatedAt": r.stamp()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u User
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if err == nil {
		return nonNil(u.HealthConditions), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Wrap(err, "add health condition")
	}

	// Nothing matched: either the patient is missing or already has it.
	if _, err := r.GetByIDAndRole(ctx, patientID, auth.RolePatient); err != nil {
		return nil, err
	}
	return nil, apperr.Conflict(msgConditionExists)
}

func (r *userRepoMongo) SetAssignedProvider(ctx context.Context, patientID, providerID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": patientID, "role": auth.RolePatient},
		bson.M{"$set": bson.M{"assignedProvider": providerID, "updatedAt": r.stamp()}})
	if err != nil {
		return apperr.Wrap(err, "assign provider")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Patient not found")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
