package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/gateway"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/metrics"
)

const (
	DefaultPageSize = 20

	msgListingsFailed = "Failed to load listings"
	msgDetailFailed   = "Failed to load listing details"
	msgCountFailed    = "Failed to load listing count"

	minRating = 1
	maxRating = 5
)

type ListingAPI interface {
	List(ctx context.Context, limit, offset int) ([]entity.ListingPreview, error)
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id string) (*entity.ListingDetail, error)
	AddReview(ctx context.Context, id string, review entity.AddReviewRequest) (*entity.StatusResponse, error)
}

// Identity supplies the reviewer for AddReview. *SessionService
// implements it.
type Identity interface {
	CurrentUser() *entity.User
}

// ListingService caches one page of previews, at most one selected
// detail and the favorites set. Read operations report failures through
// Err; AddReview returns them.
type ListingService struct {
	api      ListingAPI
	identity Identity
	events   EventPublisher
	log      logger.Logger
	metrics  *metrics.Manager
	pageSize int
	now      func() time.Time

	refreshSlot requestSlot
	selectSlot  requestSlot
	countSlot   requestSlot

	mu        sync.RWMutex
	listings  []entity.ListingPreview
	selected  *entity.ListingDetail
	favorites map[string]struct{}
	total     int64
	inFlight  int
	errMsg    string
}

func NewListingService(api ListingAPI, identity Identity, events EventPublisher, log logger.Logger, m *metrics.Manager, pageSize int) *ListingService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ListingService{
		api:       api,
		identity:  identity,
		events:    events,
		log:       log,
		metrics:   m,
		pageSize:  pageSize,
		now:       time.Now,
		listings:  []entity.ListingPreview{},
		favorites: make(map[string]struct{}),
	}
}

// Start loads the first page.
func (s *ListingService) Start(ctx context.Context) {
	s.RefreshListings(ctx, s.pageSize, 0)
}

// RefreshListings replaces the cached previews with one page. A newer
// refresh supersedes this one: its context is cancelled and its result,
// success or failure, is dropped.
func (s *ListingService) RefreshListings(ctx context.Context, limit, offset int) {
	if limit <= 0 {
		limit = s.pageSize
	}
	if offset < 0 {
		offset = 0
	}

	ctx, seq, done := s.refreshSlot.begin(ctx)
	defer done()
	s.beginLoading()
	defer s.endLoading()

	page, err := s.api.List(ctx, limit, offset)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refreshSlot.isCurrent(seq) {
		s.log.Debug("ListingService.RefreshListings: superseded response dropped", "limit", limit, "offset", offset)
		return
	}
	if err != nil {
		s.errMsg = readErrorMessage(err, msgListingsFailed)
		s.log.Warn("ListingService.RefreshListings: failed", "limit", limit, "offset", offset, "error", err)
		return
	}
	s.listings = page
	s.log.Debug("ListingService.RefreshListings: loaded", "count", len(page), "limit", limit, "offset", offset)
}

func (s *ListingService) RefreshCount(ctx context.Context) {
	ctx, seq, done := s.countSlot.begin(ctx)
	defer done()
	s.beginLoading()
	defer s.endLoading()

	n, err := s.api.Count(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.countSlot.isCurrent(seq) {
		return
	}
	if err != nil {
		s.errMsg = readErrorMessage(err, msgCountFailed)
		s.log.Warn("ListingService.RefreshCount: failed", "error", err)
		return
	}
	s.total = n
}

// SelectListing fetches one listing's detail into the selected slot. On
// failure a different previously selected listing is dropped. A refetch of
// the same id keeps the copy already held only when the backend could not
// be reached or failed with a 5xx; a 404 or other rejection drops it.
func (s *ListingService) SelectListing(ctx context.Context, id string) {
	id = strings.TrimSpace(id)

	ctx, seq, done := s.selectSlot.begin(ctx)
	defer done()
	s.beginLoading()
	defer s.endLoading()

	var (
		detail *entity.ListingDetail
		err    error
	)
	if id == "" {
		err = ErrEmptyListingID
	} else {
		detail, err = s.api.Get(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selectSlot.isCurrent(seq) {
		s.log.Debug("ListingService.SelectListing: superseded response dropped", "listing_id", id)
		return
	}
	if err != nil {
		s.errMsg = readErrorMessage(err, msgDetailFailed)
		if s.selected != nil && (s.selected.ID != id || !isTransient(err)) {
			s.selected = nil
		}
		s.log.Warn("ListingService.SelectListing: failed", "listing_id", id, "error", err)
		return
	}
	s.selected = detail
}

func (s *ListingService) ClearSelectedListing() {
	s.selectSlot.invalidate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// ToggleFavorite flips id's membership and reports the new state.
func (s *ListingService) ToggleFavorite(id string) bool {
	s.mu.Lock()
	_, fav := s.favorites[id]
	if fav {
		delete(s.favorites, id)
	} else {
		s.favorites[id] = struct{}{}
	}
	fav = !fav
	n := len(s.favorites)
	s.mu.Unlock()

	s.metrics.SetFavorites(n)
	ev := entity.ListingEvent{Event: entity.EventFavoriteToggled, ListingID: id, Favorite: &fav, At: s.now()}
	if u := s.currentUser(); u != nil {
		ev.UserID = u.ID
	}
	publishEvent(context.Background(), s.events, s.log, entity.EventFavoriteToggled, ev)
	return fav
}

func (s *ListingService) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favorites[id]
	return ok
}

// Favorites returns the favorite ids in sorted order.
func (s *ListingService) Favorites() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// AddReview posts a review as the signed-in user. When id is the selected
// listing it is fetched again so the new review shows up. Errors are
// returned to the caller.
func (s *ListingService) AddReview(ctx context.Context, id, comment string, rating *float64) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyListingID
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ErrEmptyComment
	}
	if rating != nil && (*rating < minRating || *rating > maxRating) {
		return ErrInvalidRating
	}
	user := s.currentUser()
	if user == nil {
		return ErrNotAuthenticated
	}

	req := entity.AddReviewRequest{
		ReviewerID:   strconv.FormatInt(user.ID, 10),
		ReviewerName: user.DisplayName(),
		Comments:     comment,
		Date:         s.now().UTC().Format(time.RFC3339),
		Rating:       rating,
	}
	if _, err := s.api.AddReview(ctx, id, req); err != nil {
		s.log.Warn("ListingService.AddReview: failed", "listing_id", id, "error", err)
		return err
	}

	publishEvent(ctx, s.events, s.log, entity.EventReviewAdded, entity.ListingEvent{
		Event:     entity.EventReviewAdded,
		ListingID: id,
		UserID:    user.ID,
		At:        s.now(),
	})

	s.mu.RLock()
	refetch := s.selected != nil && s.selected.ID == id
	s.mu.RUnlock()
	if refetch {
		s.SelectListing(ctx, id)
	}
	return nil
}

// Listings returns a copy of the cached page.
func (s *ListingService) Listings() []entity.ListingPreview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.ListingPreview, len(s.listings))
	copy(out, s.listings)
	return out
}

func (s *ListingService) Selected() *entity.ListingDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	d := *s.selected
	d.Reviews = append(entity.Reviews{}, s.selected.Reviews...)
	return &d
}

func (s *ListingService) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *ListingService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Err is the message of the last failed read, empty after a read starts.
func (s *ListingService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Close cancels in-flight reads.
func (s *ListingService) Close() {
	s.refreshSlot.invalidate()
	s.selectSlot.invalidate()
	s.countSlot.invalidate()
}

func (s *ListingService) currentUser() *entity.User {
	if s.identity == nil {
		return nil
	}
	return s.identity.CurrentUser()
}

func (s *ListingService) beginLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	s.errMsg = ""
}

func (s *ListingService) endLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
}

// readErrorMessage turns a read-path failure into what the UI shows.
// isTransient reports failures that say nothing about whether the listing
// still exists.
func isTransient(err error) bool {
	return gateway.IsNoResponse(err) || gateway.StatusOf(err) >= 500
}

func readErrorMessage(err error, fallback string) string {
	if gateway.IsNoResponse(err) {
		return gateway.MsgCannotReachServer
	}
	if apiErr, ok := gateway.AsAPIError(err); ok {
		if msg, ok := apiErr.ServerMessage(); ok {
			return msg
		}
	}
	return fallback
}
