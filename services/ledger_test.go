package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLikeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mealID := f.addMeal(t, "Khichuri")

	res, err := f.ledger.Like(ctx, mealID.Hex(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Liked: true, Modified: 1}, res)
	assert.EqualValues(t, 1, f.meal(t, mealID).Likes)

	res, err = f.ledger.Like(ctx, mealID.Hex(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Liked: true, Modified: 0}, res)
	assert.EqualValues(t, 1, f.meal(t, mealID).Likes)

	liked, err := f.ledger.CheckLiked(ctx, mealID.Hex(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = f.ledger.CheckLiked(ctx, mealID.Hex(), "b@x.com")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestConcurrentLikesCountOnce(t *testing.T) {
	f := newFixture(t)
	mealID := f.addMeal(t, "Biryani")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Like(context.Background(), mealID.Hex(), "a@x.com")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, f.meal(t, mealID).Likes)
	n, err := f.st.CountLikes(context.Background(), mealID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLikeErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Like(ctx, "not-an-id", "a@x.com")
	requireKind(t, err, utils.KindValidation, "Invalid meal ID")

	_, err = f.ledger.Like(ctx, primitive.NewObjectID().Hex(), "a@x.com")
	requireKind(t, err, utils.KindNotFound, "Meal not found")

	_, err = f.ledger.Like(ctx, primitive.NewObjectID().Hex(), "  ")
	requireKind(t, err, utils.KindValidation, "User email is required in body")

	liked, err := f.ledger.CheckLiked(ctx, "whatever", "")
	require.NoError(t, err)
	assert.False(t, liked)
}

// flakyCounters fails every counter increment.
type flakyCounters struct {
	*store.Memory
}

func (flakyCounters) IncMealCounter(context.Context, primitive.ObjectID, models.Counter, int64) error {
	return errors.New("write concern timeout")
}

func TestLikeRecountsWhenIncrementFails(t *testing.T) {
	st := store.NewMemory()
	ledger := NewEngagementLedger(flakyCounters{st}, st, st, st)
	ctx := context.Background()
	mealID, err := st.InsertMeal(ctx, &models.Meal{MealDetails: models.MealDetails{Title: "Dal"}})
	require.NoError(t, err)

	res, err := ledger.Like(ctx, mealID.Hex(), "a@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Modified)

	meal, err := st.FindMeal(ctx, mealID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, meal.Likes)
}

func TestLikeUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.publisher.AddUpcoming(ctx, models.MealDetails{Title: "Pitha", Category: "Dinner"})
	require.NoError(t, err)

	res, err := f.ledger.LikeUpcoming(ctx, id.Hex(), "a@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Modified)

	res, err = f.ledger.LikeUpcoming(ctx, id.Hex(), "a@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Modified)

	up, err := f.st.FindUpcoming(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, up.Likes)
	assert.Equal(t, []string{"a@x.com"}, up.LikedUsers)

	_, err = f.ledger.LikeUpcoming(ctx, primitive.NewObjectID().Hex(), "a@x.com")
	requireKind(t, err, utils.KindNotFound, "Upcoming meal not found")
}

func TestReviewsKeepCountCoherent(t *testing.T) {
	f := newFixture(t)
	f.ledger.now = steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	mealID := f.addMeal(t, "Polao")

	first, err := f.ledger.AddReview(ctx, ReviewInput{MealID: mealID.Hex(), Email: "a@x.com", Review: "good"})
	require.NoError(t, err)
	second, err := f.ledger.AddReview(ctx, ReviewInput{MealID: mealID.Hex(), Email: "b@x.com", Review: "great"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.meal(t, mealID).ReviewsCount)

	reviews, err := f.ledger.ReviewsForMeal(ctx, mealID.Hex())
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID, "newest first")
	assert.Equal(t, first.ID, reviews[1].ID)

	require.NoError(t, f.ledger.EditReview(ctx, first.ID.Hex(), "better"))
	got, err := f.ledger.Review(ctx, first.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "better", got.Review)

	require.NoError(t, f.ledger.RemoveReview(ctx, first.ID.Hex()))
	assert.EqualValues(t, 1, f.meal(t, mealID).ReviewsCount)

	err = f.ledger.RemoveReview(ctx, first.ID.Hex())
	requireKind(t, err, utils.KindNotFound, "Review not found")
	assert.EqualValues(t, 1, f.meal(t, mealID).ReviewsCount)

	mine, err := f.ledger.ReviewsByUser(ctx, "b@x.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "great", mine[0].Review)
}

func TestReviewCountNeverNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mealID := f.addMeal(t, "Halim")

	review, err := f.ledger.AddReview(ctx, ReviewInput{MealID: mealID.Hex(), Email: "a@x.com", Review: "ok"})
	require.NoError(t, err)
	require.NoError(t, f.st.SetMealCounters(ctx, mealID, 0, 0))

	require.NoError(t, f.ledger.RemoveReview(ctx, review.ID.Hex()))
	assert.EqualValues(t, 0, f.meal(t, mealID).ReviewsCount)
}

func TestRecountRepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mealID := f.addMeal(t, "Fuchka")

	_, err := f.ledger.Like(ctx, mealID.Hex(), "a@x.com")
	require.NoError(t, err)
	_, err = f.ledger.AddReview(ctx, ReviewInput{MealID: mealID.Hex(), Email: "a@x.com", Review: "ok"})
	require.NoError(t, err)
	require.NoError(t, f.st.SetMealCounters(ctx, mealID, 42, 7))

	meal, err := f.ledger.Recount(ctx, mealID.Hex())
	require.NoError(t, err)
	assert.EqualValues(t, 1, meal.Likes)
	assert.EqualValues(t, 1, meal.ReviewsCount)

	_, err = f.ledger.Recount(ctx, primitive.NewObjectID().Hex())
	requireKind(t, err, utils.KindNotFound, "Meal not found")
}
