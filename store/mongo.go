package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"hostel-meals/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo is the MongoDB-backed Store.
type Mongo struct {
	db       *mongo.Database
	users    *mongo.Collection
	meals    *mongo.Collection
	upcoming *mongo.Collection
	reviews  *mongo.Collection
	likes    *mongo.Collection
	requests *mongo.Collection
	payments *mongo.Collection
}

// OpenMongo connects to uri, pings the primary and ensures indexes on dbName.
func OpenMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	logrus.WithField("database", dbName).Info("connected to MongoDB")

	m := NewMongo(client.Database(dbName))
	m.EnsureIndexes(ctx)
	return m, nil
}

// NewMongo wraps an already connected database.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		db:       db,
		users:    db.Collection(UsersCollection),
		meals:    db.Collection(MealsCollection),
		upcoming: db.Collection(UpcomingMealsCollection),
		reviews:  db.Collection(ReviewsCollection),
		likes:    db.Collection(LikesCollection),
		requests: db.Collection(MealRequestsCollection),
		payments: db.Collection(PaymentsCollection),
	}
}

// EnsureIndexes creates the uniqueness constraints the services rely on.
// Failures are logged rather than returned so that legacy data with
// duplicates does not keep the server from starting.
func (m *Mongo) EnsureIndexes(ctx context.Context) {
	unique := func(name string) *options.IndexOptions {
		return options.Index().SetUnique(true).SetName(name)
	}
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique("users_email")}},
		{m.likes, mongo.IndexModel{
			Keys:    bson.D{{Key: "mealId", Value: 1}, {Key: "userEmail", Value: 1}},
			Options: unique("likes_meal_user"),
		}},
		{m.requests, mongo.IndexModel{
			Keys:    bson.D{{Key: "mealId", Value: 1}, {Key: "userEmail", Value: 1}},
			Options: unique("meal_requests_meal_user"),
		}},
		{m.meals, mongo.IndexModel{
			Keys:    bson.D{{Key: "sourceUpcomingId", Value: 1}},
			Options: unique("meals_source_upcoming").SetSparse(true),
		}},
		{m.reviews, mongo.IndexModel{
			Keys:    bson.D{{Key: "mealId", Value: 1}, {Key: "time", Value: -1}},
			Options: options.Index().SetName("reviews_meal_time"),
		}},
		{m.payments, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("payments_email_date"),
		}},
	}
	for _, s := range indexes {
		if _, err := s.coll.Indexes().CreateOne(ctx, s.model); err != nil {
			logrus.WithError(err).WithField("collection", s.coll.Name()).Warn("failed to create index")
		}
	}
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.db.Client().Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)
	out := make([]T, 0)
	for cursor.Next(ctx) {
		var v T
		if err := cursor.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// --- users ---

func (m *Mongo) InsertUser(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	res, err := m.users.InsertOne(ctx, u)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return insertedID(res), nil
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (m *Mongo) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": containsFold(query)},
		bson.M{"name": containsFold(query)},
	}}
	cursor, err := m.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.User](ctx, cursor)
}

func (m *Mongo) SetUserRole(ctx context.Context, id primitive.ObjectID, role string) error {
	return m.updateOne(ctx, m.users, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
}

func (m *Mongo) SetUserBadge(ctx context.Context, email, badge string) error {
	return m.updateOne(ctx, m.users, bson.M{"email": email}, bson.M{"$set": bson.M{"badge": badge}})
}

func (m *Mongo) updateOne(ctx context.Context, coll *mongo.Collection, filter, update bson.M) error {
	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) deleteOne(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- meals ---

func (m *Mongo) InsertMeal(ctx context.Context, meal *models.Meal) (primitive.ObjectID, error) {
	res, err := m.meals.InsertOne(ctx, meal)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return insertedID(res), nil
}

func (m *Mongo) FindMeal(ctx context.Context, id primitive.ObjectID) (*models.Meal, error) {
	return m.findMeal(ctx, bson.M{"_id": id})
}

func (m *Mongo) FindMealBySource(ctx context.Context, upcomingID primitive.ObjectID) (*models.Meal, error) {
	return m.findMeal(ctx, bson.M{"sourceUpcomingId": upcomingID})
}

func (m *Mongo) findMeal(ctx context.Context, filter bson.M) (*models.Meal, error) {
	var meal models.Meal
	if err := m.meals.FindOne(ctx, filter).Decode(&meal); err != nil {
		return nil, translate(err)
	}
	return &meal, nil
}

func mealFilter(q models.MealQuery) bson.M {
	filter := bson.M{}
	if q.Search != "" {
		filter["title"] = containsFold(q.Search)
	}
	if q.Category != "" && q.Category != "All" {
		filter["category"] = q.Category
	}
	if q.Email != "" {
		filter["email"] = q.Email
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

func (m *Mongo) FindMeals(ctx context.Context, q models.MealQuery) ([]models.Meal, int64, error) {
	filter := mealFilter(q)
	opts := options.Find()
	if q.SortBy != "" {
		dir := -1
		if q.Asc {
			dir = 1
		}
		opts.SetSort(bson.D{{Key: q.SortBy, Value: dir}})
	}
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip((page - 1) * q.Limit).SetLimit(q.Limit)
	}
	cursor, err := m.meals.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	meals, err := decodeAll[models.Meal](ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	total, err := m.meals.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return meals, total, nil
}

func (m *Mongo) IncMealCounter(ctx context.Context, id primitive.ObjectID, c models.Counter, delta int64) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter[string(c)] = bson.M{"$gte": -delta}
	}
	res, err := m.meals.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{string(c): delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	// A guarded decrement that matched nothing may just mean the counter is already 0.
	n, err := m.meals.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) SetMealCounters(ctx context.Context, id primitive.ObjectID, likes, reviews int64) error {
	return m.updateOne(ctx, m.meals, bson.M{"_id": id}, bson.M{"$set": bson.M{
		string(models.LikesCounter):   likes,
		string(models.ReviewsCounter): reviews,
	}})
}

func (m *Mongo) DeleteMeal(ctx context.Context, id primitive.ObjectID) error {
	return m.deleteOne(ctx, m.meals, id)
}

func (m *Mongo) CountMeals(ctx context.Context) (int64, error) {
	return m.meals.CountDocuments(ctx, bson.M{})
}

func (m *Mongo) SumMealLikes(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$likes"}}},
		}}},
	}
	cursor, err := m.meals.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	rows, err := decodeAll[struct {
		Total int64 `bson:"total"`
	}](ctx, cursor)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return rows[0].Total, nil
}

// --- upcoming meals ---

func (m *Mongo) InsertUpcoming(ctx context.Context, meal *models.UpcomingMeal) (primitive.ObjectID, error) {
	if meal.LikedUsers == nil {
		meal.LikedUsers = []string{}
	}
	res, err := m.upcoming.InsertOne(ctx, meal)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return insertedID(res), nil
}

func (m *Mongo) FindUpcoming(ctx context.Context, id primitive.ObjectID) (*models.UpcomingMeal, error) {
	var meal models.UpcomingMeal
	if err := m.upcoming.FindOne(ctx, bson.M{"_id": id}).Decode(&meal); err != nil {
		return nil, translate(err)
	}
	return &meal, nil
}

func (m *Mongo) ListUpcoming(ctx context.Context) ([]models.UpcomingMeal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "likes", Value: -1}})
	cursor, err := m.upcoming.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.UpcomingMeal](ctx, cursor)
}

func (m *Mongo) AddUpcomingLike(ctx context.Context, id primitive.ObjectID, email string) (bool, error) {
	res, err := m.upcoming.UpdateOne(ctx,
		bson.M{"_id": id, "likedUsers": bson.M{"$ne": email}},
		bson.M{
			"$addToSet": bson.M{"likedUsers": email},
			"$inc":      bson.M{"likes": 1},
		},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	n, err := m.upcoming.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (m *Mongo) DeleteUpcoming(ctx context.Context, id primitive.ObjectID) error {
	return m.deleteOne(ctx, m.upcoming, id)
}

// --- likes ---

// InsertLike upserts on (mealId, userEmail) so the check and the insert are a
// single write; the unique index turns a racing second upsert into ErrDuplicate.
func (m *Mongo) InsertLike(ctx context.Context, l *models.Like) error {
	res, err := m.likes.UpdateOne(ctx,
		bson.M{"mealId": l.MealID, "userEmail": l.UserEmail},
		bson.M{"$setOnInsert": bson.M{"time": l.Time}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return translate(err)
	}
	if res.UpsertedCount == 0 {
		return ErrDuplicate
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		l.ID = id
	}
	return nil
}

func (m *Mongo) LikeExists(ctx context.Context, mealID primitive.ObjectID, email string) (bool, error) {
	n, err := m.likes.CountDocuments(ctx,
		bson.M{"mealId": mealID, "userEmail": email},
		options.Count().SetLimit(1),
	)
	return n > 0, err
}

func (m *Mongo) CountLikes(ctx context.Context, mealID primitive.ObjectID) (int64, error) {
	return m.likes.CountDocuments(ctx, bson.M{"mealId": mealID})
}

// --- reviews ---

func reviewFilter(f models.ReviewFilter) bson.M {
	filter := bson.M{}
	if !f.MealID.IsZero() {
		filter["mealId"] = f.MealID
	}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	return filter
}

func (m *Mongo) InsertReview(ctx context.Context, r *models.Review) (primitive.ObjectID, error) {
	res, err := m.reviews.InsertOne(ctx, r)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return insertedID(res), nil
}

func (m *Mongo) FindReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	if err := m.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (m *Mongo) FindReviews(ctx context.Context, f models.ReviewFilter) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}})
	cursor, err := m.reviews.Find(ctx, reviewFilter(f), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Review](ctx, cursor)
}

func (m *Mongo) CountReviews(ctx context.Context, f models.ReviewFilter) (int64, error) {
	return m.reviews.CountDocuments(ctx, reviewFilter(f))
}

func (m *Mongo) UpdateReviewText(ctx context.Context, id primitive.ObjectID, text string) error {
	return m.updateOne(ctx, m.reviews, bson.M{"_id": id}, bson.M{"$set": bson.M{"review": text}})
}

func (m *Mongo) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	return m.deleteOne(ctx, m.reviews, id)
}

// --- meal requests ---

// InsertRequest upserts on (mealId, userEmail); an existing request of any
// status makes it a no-op reported as ErrDuplicate.
func (m *Mongo) InsertRequest(ctx context.Context, r *models.MealRequest) (primitive.ObjectID, error) {
	res, err := m.requests.UpdateOne(ctx,
		bson.M{"mealId": r.MealID, "userEmail": r.UserEmail},
		bson.M{"$setOnInsert": bson.M{
			"userName":    r.UserName,
			"mealTitle":   r.MealTitle,
			"status":      r.Status,
			"requestedAt": r.RequestedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	if res.UpsertedCount == 0 {
		return primitive.NilObjectID, ErrDuplicate
	}
	id, _ := res.UpsertedID.(primitive.ObjectID)
	return id, nil
}

func (m *Mongo) FindRequest(ctx context.Context, id primitive.ObjectID) (*models.MealRequest, error) {
	var req models.MealRequest
	if err := m.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (m *Mongo) MarkDelivered(ctx context.Context, id primitive.ObjectID) (*models.MealRequest, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var req models.MealRequest
	err := m.requests.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.RequestDelivered, "deliveredAt": time.Now().UTC()}},
		opts,
	).Decode(&req)
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (m *Mongo) DeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	return m.deleteOne(ctx, m.requests, id)
}

func (m *Mongo) RequestsWithMeals(ctx context.Context, email string) ([]models.RequestView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userEmail", Value: email}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: MealsCollection},
			{Key: "localField", Value: "mealId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "mealDetails"},
		}}},
		// $unwind without preserveNullAndEmptyArrays drops requests whose meal is gone.
		{{Key: "$unwind", Value: "$mealDetails"}},
		{{Key: "$sort", Value: bson.D{{Key: "requestedAt", Value: -1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "requestedAt", Value: 1},
			{Key: "mealTitle", Value: "$mealDetails.title"},
			{Key: "likes", Value: "$mealDetails.likes"},
			{Key: "reviews_count", Value: "$mealDetails.reviews_count"},
		}}},
	}
	cursor, err := m.requests.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.RequestView](ctx, cursor)
}

func (m *Mongo) SearchRequests(ctx context.Context, query string) ([]models.MealRequest, error) {
	filter := bson.M{}
	if query != "" {
		filter["$or"] = bson.A{
			bson.M{"userEmail": containsFold(query)},
			bson.M{"userName": containsFold(query)},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}})
	cursor, err := m.requests.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.MealRequest](ctx, cursor)
}

func (m *Mongo) CountRequests(ctx context.Context, email string) (int64, error) {
	return m.requests.CountDocuments(ctx, emailFilter("userEmail", email))
}

func emailFilter(field, email string) bson.M {
	if email == "" {
		return bson.M{}
	}
	return bson.M{field: email}
}

// --- payments ---

func (m *Mongo) InsertPayment(ctx context.Context, p *models.Payment) (primitive.ObjectID, error) {
	res, err := m.payments.InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return insertedID(res), nil
}

func (m *Mongo) FindPayments(ctx context.Context, email string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := m.payments.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Payment](ctx, cursor)
}

func (m *Mongo) CountPayments(ctx context.Context, email string) (int64, error) {
	return m.payments.CountDocuments(ctx, emailFilter("email", email))
}

var _ Store = (*Mongo)(nil)
