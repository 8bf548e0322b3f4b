package services

import (
	"context"
	"testing"
	"time"

	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	st        *store.Memory
	auth      *Authorizer
	ledger    *EngagementLedger
	requests  *RequestLifecycle
	publisher *Publisher
	views     *Views
	catalog   *Catalog
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	auth := NewAuthorizer(st)
	notifier := &recordingNotifier{sent: make(chan models.MealRequest, 4)}
	return &fixture{
		st:        st,
		auth:      auth,
		ledger:    NewEngagementLedger(st, st, st, st),
		requests:  NewRequestLifecycle(auth, st, notifier),
		publisher: NewPublisher(st, st),
		views:     NewViews(st, st, st, st, st),
		catalog:   NewCatalog(st),
		notifier:  notifier,
	}
}

func (f *fixture) addUser(t *testing.T, email, badge, role string) {
	t.Helper()
	_, err := f.st.InsertUser(context.Background(), &models.User{
		Name:  email,
		Email: email,
		Badge: badge,
		Role:  role,
	})
	require.NoError(t, err)
}

func (f *fixture) addMeal(t *testing.T, title string) primitive.ObjectID {
	t.Helper()
	id, err := f.catalog.Create(context.Background(), models.MealDetails{Title: title, Category: "Lunch", Price: 5})
	require.NoError(t, err)
	return id
}

func (f *fixture) meal(t *testing.T, id primitive.ObjectID) *models.Meal {
	t.Helper()
	meal, err := f.st.FindMeal(context.Background(), id)
	require.NoError(t, err)
	return meal
}

// requireKind asserts err is an AppError of kind, with msg when given.
func requireKind(t *testing.T, err error, kind utils.ErrorKind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, utils.KindOf(err), err.Error())
	if msg != "" {
		appErr, ok := err.(*utils.AppError)
		require.True(t, ok)
		require.Equal(t, msg, appErr.Message)
	}
}

type recordingNotifier struct {
	sent chan models.MealRequest
}

func (n *recordingNotifier) SendMealDeliveredEmail(req models.MealRequest) error {
	n.sent <- req
	return nil
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}
