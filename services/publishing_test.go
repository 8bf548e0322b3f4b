package services

import (
	"context"
	"errors"
	"testing"

	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPublishMovesMealExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	upID, err := f.publisher.AddUpcoming(ctx, models.MealDetails{Title: "Kacchi", Category: "Dinner", Price: 12})
	require.NoError(t, err)
	_, err = f.ledger.LikeUpcoming(ctx, upID.Hex(), "a@x.com")
	require.NoError(t, err)

	mealID, err := f.publisher.Publish(ctx, upID.Hex())
	require.NoError(t, err)
	assert.NotEqual(t, upID, mealID)

	meal := f.meal(t, mealID)
	assert.Equal(t, "Kacchi", meal.Title)
	assert.Zero(t, meal.Likes)
	assert.Zero(t, meal.ReviewsCount)

	_, err = f.st.FindUpcoming(ctx, upID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.publisher.Publish(ctx, upID.Hex())
	requireKind(t, err, utils.KindNotFound, "Upcoming meal not found")

	n, err := f.st.CountMeals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

// failingDelete loses the delete the first time it is called.
type failingDelete struct {
	*store.Memory
	failed bool
}

func (s *failingDelete) DeleteUpcoming(ctx context.Context, id primitive.ObjectID) error {
	if !s.failed {
		s.failed = true
		return errors.New("connection reset")
	}
	return s.Memory.DeleteUpcoming(ctx, id)
}

func TestPublishRetryAfterFailedDelete(t *testing.T) {
	st := store.NewMemory()
	upcoming := &failingDelete{Memory: st}
	publisher := NewPublisher(st, upcoming)
	ctx := context.Background()

	upID, err := publisher.AddUpcoming(ctx, models.MealDetails{Title: "Tehari", Category: "Lunch"})
	require.NoError(t, err)

	_, err = publisher.Publish(ctx, upID.Hex())
	requireKind(t, err, utils.KindStore, "")

	mealID, err := publisher.Publish(ctx, upID.Hex())
	require.NoError(t, err)

	n, err := st.CountMeals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "retry must not insert a second copy")

	meal, err := st.FindMealBySource(ctx, upID)
	require.NoError(t, err)
	assert.Equal(t, mealID, meal.ID)

	_, err = st.FindUpcoming(ctx, upID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListUpcomingMostLikedFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiet, err := f.publisher.AddUpcoming(ctx, models.MealDetails{Title: "Quiet"})
	require.NoError(t, err)
	popular, err := f.publisher.AddUpcoming(ctx, models.MealDetails{Title: "Popular"})
	require.NoError(t, err)
	_, err = f.ledger.LikeUpcoming(ctx, popular.Hex(), "a@x.com")
	require.NoError(t, err)

	list, err := f.publisher.ListUpcoming(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, popular, list[0].ID)
	assert.Equal(t, quiet, list[1].ID)
}
