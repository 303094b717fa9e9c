package console

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/gateway"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) SignIn(ctx context.Context, username, password string) (*entity.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockSession) SignUp(ctx context.Context, req entity.RegisterRequest) (*entity.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockSession) SignOut(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockSession) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockSession) Verify(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockSession) CurrentUser() *entity.User {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*entity.User)
}

// fakeListings keeps just enough state to render.
type fakeListings struct {
	page      []entity.ListingPreview
	selected  *entity.ListingDetail
	favorites map[string]bool
	errMsg    string
	total     int64
	reviewErr error

	lastLimit, lastOffset int
	lastReview            string
	lastRating            *float64
}

func (f *fakeListings) RefreshListings(_ context.Context, limit, offset int) {
	f.lastLimit, f.lastOffset = limit, offset
}
func (f *fakeListings) RefreshCount(context.Context) {}
func (f *fakeListings) SelectListing(_ context.Context, id string) {
	if f.selected == nil || f.selected.ID != id {
		f.selected = nil
		f.errMsg = "Listing not found"
	}
}
func (f *fakeListings) ClearSelectedListing() { f.selected = nil }
func (f *fakeListings) ToggleFavorite(id string) bool {
	if f.favorites == nil {
		f.favorites = map[string]bool{}
	}
	f.favorites[id] = !f.favorites[id]
	return f.favorites[id]
}
func (f *fakeListings) IsFavorite(id string) bool { return f.favorites[id] }
func (f *fakeListings) Favorites() []string {
	var ids []string
	for id, on := range f.favorites {
		if on {
			ids = append(ids, id)
		}
	}
	return ids
}
func (f *fakeListings) AddReview(_ context.Context, id, comment string, rating *float64) error {
	f.lastReview, f.lastRating = comment, rating
	return f.reviewErr
}
func (f *fakeListings) Listings() []entity.ListingPreview { return f.page }
func (f *fakeListings) Selected() *entity.ListingDetail   { return f.selected }
func (f *fakeListings) Total() int64                      { return f.total }
func (f *fakeListings) Err() string                       { return f.errMsg }

func newConsole(session Session, listings Listings) (*Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return New(strings.NewReader(""), out, session, listings, logger.NewNopLogger()), out
}

func TestConsole_Login(t *testing.T) {
	session := new(MockSession)
	c, out := newConsole(session, &fakeListings{})
	ctx := context.Background()

	session.On("SignIn", mock.Anything, "alice", "secret123").
		Return(&entity.User{Username: "alice", FirstName: "Alice"}, nil).Once()

	require.NoError(t, c.Exec(ctx, "login alice secret123"))
	assert.Contains(t, out.String(), "Welcome back, Alice.")

	err := c.Exec(ctx, "login alice")
	assert.EqualError(t, err, "usage: login <username> <password>")
	session.AssertExpectations(t)
}

func TestConsole_Register(t *testing.T) {
	session := new(MockSession)
	c, out := newConsole(session, &fakeListings{})

	session.On("SignUp", mock.Anything, entity.RegisterRequest{
		Username: "alice", Email: "a@example.com", FirstName: "Alice", LastName: "L",
		Password: "secret123", PasswordConfirm: "secret123",
	}).Return(&entity.User{Username: "alice"}, nil).Once()

	require.NoError(t, c.Exec(context.Background(), "register alice a@example.com Alice L secret123 secret123"))
	assert.Contains(t, out.String(), "Signed in as alice.")
}

func TestConsole_ListingsAndShow(t *testing.T) {
	at := entity.Time{Time: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)}
	listings := &fakeListings{
		page: []entity.ListingPreview{{ID: "abc123", Title: "Ribeira Charming Duplex", Price: 80, Location: "Porto"}},
		selected: &entity.ListingDetail{
			ID: "abc123", Title: "Ribeira Charming Duplex", Location: "Porto", Price: 80, Rating: 89,
			Reviews: entity.Reviews{{ReviewerName: "Ana", Comments: "Great stay!", Date: &at}},
		},
	}
	c, out := newConsole(new(MockSession), listings)
	ctx := context.Background()

	require.NoError(t, c.Exec(ctx, "fav abc123"))
	require.NoError(t, c.Exec(ctx, "listings 10 20"))
	assert.Equal(t, 10, listings.lastLimit)
	assert.Equal(t, 20, listings.lastOffset)
	assert.Contains(t, out.String(), " 21. * abc123")

	out.Reset()
	require.NoError(t, c.Exec(ctx, "show abc123"))
	assert.Contains(t, out.String(), "rating 89")
	assert.Contains(t, out.String(), "Ana, 2024-02-05: Great stay!")

	out.Reset()
	require.NoError(t, c.Exec(ctx, "show nope"))
	assert.Equal(t, "Listing not found\n", out.String())

	assert.Error(t, c.Exec(ctx, "listings ten"))
}

func TestConsole_Review(t *testing.T) {
	listings := &fakeListings{}
	c, out := newConsole(new(MockSession), listings)
	ctx := context.Background()

	require.NoError(t, c.Exec(ctx, "review abc123 rating=4 Lovely little flat"))
	assert.Equal(t, "Lovely little flat", listings.lastReview)
	require.NotNil(t, listings.lastRating)
	assert.Equal(t, 4.0, *listings.lastRating)
	assert.Contains(t, out.String(), "Review posted.")

	listings.reviewErr = service.ErrNotAuthenticated
	err := c.Exec(ctx, "review abc123 nice")
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)
}

func TestConsole_RunRendersErrorsAndQuits(t *testing.T) {
	session := new(MockSession)
	session.On("SignIn", mock.Anything, "alice", "x").
		Return(nil, &gateway.APIError{Status: 400, Payload: json.RawMessage(`{"non_field_errors":["Invalid credentials"]}`)}).Once()
	session.On("SignIn", mock.Anything, "bob", "y").
		Return(nil, &service.ValidationError{Fields: map[string]string{"password": "Password must be at least 8 characters"}}).Once()
	session.On("CurrentUser").Return(nil).Once()

	out := &bytes.Buffer{}
	in := strings.NewReader("login alice x\nlogin bob y\nwhoami\nbogus\nquit\nwhoami\n")
	c := New(in, out, session, &fakeListings{}, logger.NewNopLogger())

	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "error: Invalid credentials")
	assert.Contains(t, text, "error: Password must be at least 8 characters")
	assert.Contains(t, text, "Not signed in.")
	assert.Contains(t, text, `error: unknown command "bogus"`)
	session.AssertExpectations(t)
}

func TestConsole_RunStopsOnEOF(t *testing.T) {
	c, _ := newConsole(new(MockSession), &fakeListings{})
	assert.NoError(t, c.Run(context.Background()))
}
