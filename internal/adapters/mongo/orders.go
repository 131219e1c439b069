package mongo

import (
	"context"
	"time"

	"github.com/robertarktes/after-school-classes/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(s *Store) *OrderRepository {
	return &OrderRepository{coll: s.db.Collection(ordersCollection)}
}

type OrderDoc struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Name      string               `bson:"name"`
	Phone     string               `bson:"phone"`
	LessonIDs []primitive.ObjectID `bson:"lessonIds"`
	OrderDate time.Time            `bson:"orderDate"`
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	_, err := r.coll.InsertOne(ctx, OrderDoc{
		ID:        order.ID,
		Name:      order.Name,
		Phone:     order.Phone,
		LessonIDs: order.LessonIDs,
		OrderDate: order.OrderDate,
	})
	return err
}
