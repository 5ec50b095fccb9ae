package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareloop/service-sharing/internal/domain/booking"
	commentDomain "github.com/shareloop/service-sharing/internal/domain/comment"
	itemDomain "github.com/shareloop/service-sharing/internal/domain/item"
	requestDomain "github.com/shareloop/service-sharing/internal/domain/request"
	userDomain "github.com/shareloop/service-sharing/internal/domain/user"
	"github.com/shareloop/service-sharing/pkg/domain"
	"github.com/shareloop/service-sharing/pkg/kafka"
)

// In-memory repository fakes used by the service tests. They mirror the
// store contracts: not-found errors for missing rows, (nil, nil) for absent
// projections, descending-by-start listings, and a compare-and-swap on
// status updates.

type fakeUserRepo struct {
	users map[uuid.UUID]*userDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("user with ID %s not found", id))
	}
	return u, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]*userDomain.User, error) {
	out := make([]*userDomain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	for _, existing := range r.users {
		if existing.Email() == u.Email() {
			return domain.NewConflictError("email address is already registered")
		}
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *userDomain.User) error {
	for id, existing := range r.users {
		if id != u.ID() && existing.Email() == u.Email() {
			return domain.NewConflictError("email address is already registered")
		}
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return domain.NewNotFoundError(fmt.Sprintf("user with ID %s not found", id))
	}
	delete(r.users, id)
	return nil
}

type fakeItemRepo struct {
	items map[uuid.UUID]*itemDomain.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*itemDomain.Item)}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("item with ID %s not found", id))
	}
	return it, nil
}

func (r *fakeItemRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]*itemDomain.Item, int64, error) {
	var out []*itemDomain.Item
	for _, it := range r.items {
		if it.IsOwnedBy(ownerID) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return paginate(out, page), int64(len(out)), nil
}

func (r *fakeItemRepo) Search(_ context.Context, text string, page domain.PageRequest) ([]*itemDomain.Item, int64, error) {
	if text == "" {
		return nil, 0, nil
	}
	var out []*itemDomain.Item
	for _, it := range r.items {
		if it.Available() && (containsFold(it.Name(), text) || containsFold(it.Description(), text)) {
			out = append(out, it)
		}
	}
	return paginate(out, page), int64(len(out)), nil
}

func (r *fakeItemRepo) FindByRequestID(_ context.Context, requestID uuid.UUID) ([]*itemDomain.Item, error) {
	var out []*itemDomain.Item
	for _, it := range r.items {
		if it.RequestID() != nil && *it.RequestID() == requestID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Save(_ context.Context, it *itemDomain.Item) error {
	r.items[it.ID()] = it
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, it *itemDomain.Item) error {
	if _, ok := r.items[it.ID()]; !ok {
		return domain.NewNotFoundError(fmt.Sprintf("item with ID %s not found", it.ID()))
	}
	r.items[it.ID()] = it
	return nil
}

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
	itemRepo *fakeItemRepo
}

func newFakeBookingRepo(items *fakeItemRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		itemRepo: items,
	}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("booking with ID %s not found", id))
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByBookerID(_ context.Context, bookerID uuid.UUID, state bookingDomain.State, now time.Time, page domain.PageRequest) ([]*bookingDomain.Booking, int64, error) {
	return r.filter(state, now, page, func(bk *bookingDomain.Booking) bool {
		return bk.BookerID() == bookerID
	})
}

func (r *fakeBookingRepo) FindByItemOwnerID(_ context.Context, ownerID uuid.UUID, state bookingDomain.State, now time.Time, page domain.PageRequest) ([]*bookingDomain.Booking, int64, error) {
	return r.filter(state, now, page, func(bk *bookingDomain.Booking) bool {
		it, ok := r.itemRepo.items[bk.ItemID()]
		return ok && it.IsOwnedBy(ownerID)
	})
}

func (r *fakeBookingRepo) FindLastForItem(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var last *bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.ItemID() != itemID || bk.Start().After(now) {
			continue
		}
		if last == nil || bk.Start().After(last.Start()) ||
			(bk.Start().Equal(last.Start()) && bk.End().After(last.End())) {
			last = bk
		}
	}
	return last, nil
}

func (r *fakeBookingRepo) FindNextForItem(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var next *bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.ItemID() != itemID || bk.Status() != bookingDomain.StatusApproved || !bk.Start().After(now) {
			continue
		}
		if next == nil || bk.Start().Before(next.Start()) {
			next = bk
		}
	}
	return next, nil
}

func (r *fakeBookingRepo) FindCompletedForBooker(_ context.Context, itemID, bookerID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	for _, bk := range r.bookings {
		if bk.ItemID() == itemID && bk.BookerID() == bookerID &&
			bk.Status() == bookingDomain.StatusApproved && bk.End().Before(now) {
			return bk, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page domain.PageRequest) ([]*bookingDomain.Booking, int64, error) {
	return r.filter(bookingDomain.StateAll, time.Time{}, page, func(*bookingDomain.Booking) bool { return true })
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[bk.Status().String()]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to bookingDomain.Status, updatedAt time.Time) error {
	bk, ok := r.bookings[id]
	if !ok {
		return domain.NewNotFoundError(fmt.Sprintf("booking with ID %s not found", id))
	}
	if bk.Status() != from && bk.Status() != to {
		return domain.NewInvalidStateError("booking status is already decided")
	}
	return nil
}

func (r *fakeBookingRepo) filter(state bookingDomain.State, now time.Time, page domain.PageRequest, match func(*bookingDomain.Booking) bool) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if match(bk) && state.Matches(bk.Status(), bk.Start(), bk.End(), now) {
			out = append(out, bk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start().After(out[j].Start()) })
	return paginate(out, page), int64(len(out)), nil
}

type fakeCommentRepo struct {
	comments []*commentDomain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) FindByItemID(_ context.Context, itemID uuid.UUID) ([]*commentDomain.Comment, error) {
	var out []*commentDomain.Comment
	for _, cm := range r.comments {
		if cm.ItemID() == itemID {
			out = append(out, cm)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Save(_ context.Context, cm *commentDomain.Comment) error {
	r.comments = append(r.comments, cm)
	return nil
}

type fakeRequestRepo struct {
	requests map[uuid.UUID]*requestDomain.ItemRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*requestDomain.ItemRequest)}
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	ir, ok := r.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("item request with ID %s not found", id))
	}
	return ir, nil
}

func (r *fakeRequestRepo) FindByRequesterID(_ context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	out := r.collect(func(ir *requestDomain.ItemRequest) bool { return ir.RequesterID() == requesterID })
	return out, nil
}

func (r *fakeRequestRepo) FindAllExcept(_ context.Context, requesterID uuid.UUID, page domain.PageRequest) ([]*requestDomain.ItemRequest, int64, error) {
	out := r.collect(func(ir *requestDomain.ItemRequest) bool { return ir.RequesterID() != requesterID })
	return paginate(out, page), int64(len(out)), nil
}

func (r *fakeRequestRepo) Save(_ context.Context, ir *requestDomain.ItemRequest) error {
	r.requests[ir.ID()] = ir
	return nil
}

func (r *fakeRequestRepo) collect(match func(*requestDomain.ItemRequest) bool) []*requestDomain.ItemRequest {
	var out []*requestDomain.ItemRequest
	for _, ir := range r.requests {
		if match(ir) {
			out = append(out, ir)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out
}

// fakePublisher records published events instead of talking to a broker.
type fakePublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	topic string
	key   string
	event kafka.CloudEvent
}

func (p *fakePublisher) PublishKeyed(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	offset := page.Offset()
	if offset >= len(items) {
		return nil
	}
	end := offset + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var (
	_ bookingDomain.Repository = (*fakeBookingRepo)(nil)
	_ userDomain.Repository    = (*fakeUserRepo)(nil)
	_ itemDomain.Repository    = (*fakeItemRepo)(nil)
	_ commentDomain.Repository = (*fakeCommentRepo)(nil)
	_ requestDomain.Repository = (*fakeRequestRepo)(nil)
	_ EventPublisher           = (*fakePublisher)(nil)
)

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
