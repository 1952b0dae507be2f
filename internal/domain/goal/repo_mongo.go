package goal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/mongostore"
)

type goalRepoMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewGoalRepoMongo(db *mongo.Database) GoalRepository {
	return &goalRepoMongo{coll: db.Collection(mongostore.GoalsCollection), now: time.Now}
}

func (r *goalRepoMongo) Create(ctx context.Context, g *Goal) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	g.CreatedAt, g.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, g)
	return apperr.Wrap(err, "insert goal")
}

func (r *goalRepoMongo) GetByID(ctx context.Context, id string) (*Goal, error) {
	var g Goal
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Goal not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "find goal")
	}
	return &g, nil
}

func (r *goalRepoMongo) ListByOwner(ctx context.Context, ownerID string) ([]*Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user": ownerID}, opts)
	if err != nil {
		return nil, apperr.Wrap(err, "list goals")
	}
	items := []*Goal{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, apperr.Wrap(err, "decode goals")
	}
	return items, nil
}

func (r *goalRepoMongo) Update(ctx context.Context, g *Goal) error {
	g.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)

	set := bson.M{
		"title":        g.Title,
		"description":  g.Description,
		"category":     g.Category,
		"currentValue": g.CurrentValue,
		"unit":         g.Unit,
		"startDate":    g.StartDate,
		"status":       g.Status,
		"progress":     g.Progress,
		"updatedAt":    g.UpdatedAt,
	}
	unset := bson.M{}
	if g.TargetValue != nil {
		set["targetValue"] = *g.TargetValue
	} else {
		unset["targetValue"] = ""
	}
	if g.EndDate != nil {
		set["endDate"] = *g.EndDate
	} else {
		unset["endDate"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": g.ID}, update)
	if err != nil {
		return apperr.Wrap(err, "update goal")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Goal not found")
	}
	return nil
}

func (r *goalRepoMongo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Wrap(err, "delete goal")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Goal not found")
	}
	return nil
}
