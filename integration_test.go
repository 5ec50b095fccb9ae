//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareloop/service-sharing/internal/application"
	"github.com/shareloop/service-sharing/internal/events"
	"github.com/shareloop/service-sharing/pkg/domain"
)

// TestBookingLifecycle runs the full flow against real PostgreSQL and Kafka:
// a booker requests an item, the owner approves, the decision is persisted
// with a compare-and-swap, and both lifecycle events land on booking.events.
func TestBookingLifecycle(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupSharingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	owner := registerUser(t, stack, "Alice", "alice@example.com")
	booker := registerUser(t, stack, "Bob", "bob@example.com")
	item := createItem(t, stack, owner.ID, "Pressure washer", "2000W with patio attachment")

	start := time.Now().UTC().Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)

	created, err := stack.Bookings.Create(ctx, booker.ID, application.CreateBookingRequest{
		ItemID: item.ID,
		Start:  start,
		End:    end,
	})
	require.NoError(t, err)
	assert.Equal(t, "WAITING", created.Status)

	// Requested event is on the wire.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingRequested, 15*time.Second)
	var requested events.BookingRequestedEvent
	require.NoError(t, ce.ParseData(&requested))
	assert.Equal(t, created.ID, requested.BookingID)
	assert.Equal(t, owner.ID, requested.OwnerID)

	// Owner approves.
	decided, err := stack.Bookings.Decide(ctx, owner.ID, true, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", decided.Status)

	model := fetchBookingModel(t, infra.DB, created.ID)
	assert.Equal(t, "APPROVED", model.Status)

	// A second decision loses.
	_, err = stack.Bookings.Decide(ctx, owner.ID, false, created.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	assert.Equal(t, "APPROVED", fetchBookingModel(t, infra.DB, created.ID).Status)

	ce = consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingApproved, 15*time.Second)
	var approved events.BookingDecidedEvent
	require.NoError(t, ce.ParseData(&approved))
	assert.Equal(t, created.ID, approved.BookingID)
	assert.Equal(t, "APPROVED", approved.Status)
}

// TestStateFilteredListings exercises the SQL state narrowing end to end.
func TestStateFilteredListings(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupSharingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	owner := registerUser(t, stack, "Alice", "alice2@example.com")
	booker := registerUser(t, stack, "Bob", "bob2@example.com")
	item := createItem(t, stack, owner.ID, "Tile cutter", "600mm manual cutter")

	now := time.Now().UTC()
	mkBooking := func(start, end time.Time) *application.BookingDTO {
		dto, err := stack.Bookings.Create(ctx, booker.ID, application.CreateBookingRequest{
			ItemID: item.ID,
			Start:  start,
			End:    end,
		})
		require.NoError(t, err)
		return dto
	}

	past := mkBooking(now.Add(-72*time.Hour), now.Add(-48*time.Hour))
	current := mkBooking(now.Add(-time.Hour), now.Add(time.Hour))
	future := mkBooking(now.Add(48*time.Hour), now.Add(72*time.Hour))

	_, err := stack.Bookings.Decide(ctx, owner.ID, true, past.ID)
	require.NoError(t, err)
	_, err = stack.Bookings.Decide(ctx, owner.ID, true, current.ID)
	require.NoError(t, err)
	_, err = stack.Bookings.Decide(ctx, owner.ID, false, future.ID)
	require.NoError(t, err)

	list := func(state string) []application.BookingDTO {
		dtos, err := stack.Bookings.ListForBooker(ctx, booker.ID, state, 0, 50)
		require.NoError(t, err)
		return dtos
	}

	all := list("ALL")
	require.Len(t, all, 3)
	// newest start first
	assert.Equal(t, future.ID, all[0].ID)
	assert.Equal(t, current.ID, all[1].ID)
	assert.Equal(t, past.ID, all[2].ID)

	pastList := list("PAST")
	require.Len(t, pastList, 1)
	assert.Equal(t, past.ID, pastList[0].ID)

	currentList := list("CURRENT")
	require.Len(t, currentList, 1)
	assert.Equal(t, current.ID, currentList[0].ID)

	futureList := list("FUTURE")
	require.Len(t, futureList, 1)
	assert.Equal(t, future.ID, futureList[0].ID)

	rejectedList := list("REJECTED")
	require.Len(t, rejectedList, 1)
	assert.Equal(t, future.ID, rejectedList[0].ID)

	assert.Empty(t, list("WAITING"))

	ownerAll, err := stack.Bookings.ListForOwner(ctx, owner.ID, "ALL", 0, 50)
	require.NoError(t, err)
	assert.Len(t, ownerAll, 3)
}

// TestCommentAfterCompletedBooking verifies the renter comment gate and the
// owner-only last/next projections against real SQL.
func TestCommentAfterCompletedBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupSharingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	owner := registerUser(t, stack, "Alice", "alice3@example.com")
	renter := registerUser(t, stack, "Bob", "bob3@example.com")
	item := createItem(t, stack, owner.ID, "Carpet cleaner", "Deep cleaning machine")

	// Not yet eligible.
	_, err := stack.Items.CreateComment(ctx, renter.ID, item.ID, application.CreateCommentRequest{Text: "great"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	now := time.Now().UTC()
	finished, err := stack.Bookings.Create(ctx, renter.ID, application.CreateBookingRequest{
		ItemID: item.ID,
		Start:  now.Add(-48 * time.Hour),
		End:    now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = stack.Bookings.Decide(ctx, owner.ID, true, finished.ID)
	require.NoError(t, err)

	upcoming, err := stack.Bookings.Create(ctx, renter.ID, application.CreateBookingRequest{
		ItemID: item.ID,
		Start:  now.Add(24 * time.Hour),
		End:    now.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = stack.Bookings.Decide(ctx, owner.ID, true, upcoming.ID)
	require.NoError(t, err)

	// Eligible now.
	comment, err := stack.Items.CreateComment(ctx, renter.ID, item.ID, application.CreateCommentRequest{Text: "spotless results"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", comment.AuthorName)

	// Owner view carries projections and the comment.
	ownerView, err := stack.Items.GetByID(ctx, owner.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, ownerView.LastBooking)
	require.NotNil(t, ownerView.NextBooking)
	assert.Equal(t, finished.ID, ownerView.LastBooking.ID)
	assert.Equal(t, upcoming.ID, ownerView.NextBooking.ID)
	require.Len(t, ownerView.Comments, 1)

	// Renter view has the comment but no projections.
	renterView, err := stack.Items.GetByID(ctx, renter.ID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, renterView.LastBooking)
	assert.Nil(t, renterView.NextBooking)
	require.Len(t, renterView.Comments, 1)
	assert.Equal(t, "spotless results", renterView.Comments[0].Text)
}
