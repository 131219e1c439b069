package mongo

import (
	"context"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"github.com/robertarktes/after-school-classes/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LessonRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewLessonRepository(s *Store) *LessonRepository {
	return &LessonRepository{
		coll:   s.db.Collection(lessonsCollection),
		logger: s.logger,
	}
}

// LessonDoc keeps unknown fields in Extra so they survive the round trip to
// the client. Fractional spaces written out of band are truncated toward zero.
type LessonDoc struct {
	ID       primitive.ObjectID     `bson:"_id"`
	Subject  string                 `bson:"subject"`
	Location string                 `bson:"location"`
	Price    float64                `bson:"price"`
	Spaces   int                    `bson:"spaces,truncate"`
	Extra    map[string]interface{} `bson:",inline"`
}

func (d LessonDoc) toDomain() domain.Lesson {
	return domain.Lesson{
		ID:         d.ID,
		Subject:    d.Subject,
		Location:   d.Location,
		Price:      d.Price,
		Spaces:     d.Spaces,
		Attributes: d.Extra,
	}
}

func (r *LessonRepository) ListLessons(ctx context.Context) ([]domain.Lesson, error) {
	return r.find(ctx, bson.M{})
}

func (r *LessonRepository) SearchLessons(ctx context.Context, query string) ([]domain.Lesson, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"subject": pattern},
		bson.M{"location": pattern},
	}})
}

func (r *LessonRepository) FindLessonsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Lesson, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// find skips documents that cannot be decoded as lessons so one malformed
// record does not take the listing down. Skipped lessons are not orderable.
func (r *LessonRepository) find(ctx context.Context, filter bson.M) ([]domain.Lesson, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "query lessons")
	}
	defer cur.Close(ctx)

	lessons := []domain.Lesson{}
	for cur.Next(ctx) {
		var d LessonDoc
		if err := cur.Decode(&d); err != nil {
			r.logger.WithError(err).
				WithField("lesson_id", cur.Current.Lookup("_id").String()).
				Warn("skipping malformed lesson document")
			continue
		}
		lessons = append(lessons, d.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "decode lessons")
	}
	return lessons, nil
}

// DecrementSpaces only matches while a seat is left, so the counter can
// never go negative even if a caller skipped the availability check.
func (r *LessonRepository) DecrementSpaces(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "spaces": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"spaces": -1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrFullyBooked
	}
	return nil
}

func (r *LessonRepository) SetSpaces(ctx context.Context, id primitive.ObjectID, spaces int) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"spaces": spaces}},
	)
	if err != nil {
		return false, errors.Wrapf(err, "update spaces of lesson %s", id.Hex())
	}
	return res.MatchedCount > 0, nil
}

// InsertLesson is used for seeding; lessons are otherwise managed out of band.
func (r *LessonRepository) InsertLesson(ctx context.Context, lesson domain.Lesson) error {
	doc := LessonDoc{
		ID:       lesson.ID,
		Subject:  lesson.Subject,
		Location: lesson.Location,
		Price:    lesson.Price,
		Spaces:   lesson.Spaces,
		Extra:    lesson.Attributes,
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}
