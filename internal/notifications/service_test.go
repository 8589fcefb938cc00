package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paytaksi/paytaksi-backend/pkg/db/models"
	"github.com/paytaksi/paytaksi-backend/pkg/enums"
	pkgerrors "github.com/paytaksi/paytaksi-backend/pkg/errors"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	paginationpkg "github.com/paytaksi/paytaksi-backend/pkg/pagination"
)

type fakeRepository struct {
	created       []*models.Notification
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, kind enums.RecipientKind, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, kind enums.RecipientKind, recipientID uuid.UUID, now time.Time) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, kind enums.RecipientKind, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, kind, recipientID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, kind enums.RecipientKind, recipientID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, kind, recipientID, now)
	}
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.Kind != enums.RecipientDriver {
				t.Fatalf("unexpected kind %s", params.Kind)
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{Kind: enums.RecipientDriver, RecipientID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("cursor should decode: %v", err)
	}
	if decoded.ID != second.ID {
		t.Fatal("cursor should point at the next row")
	}
}

func TestService_ListRequiresRecipient(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})

	_, err := svc.List(context.Background(), ListParams{Kind: "robot", RecipientID: uuid.New()})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.List(context.Background(), ListParams{Kind: enums.RecipientPassenger})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for nil recipient, got %v", err)
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, kind enums.RecipientKind, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: true}, nil
		},
	}
	svc := newServiceWithRepo(repo)

	if err := svc.MarkRead(context.Background(), enums.RecipientDriver, uuid.New(), uuid.New()); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, kind enums.RecipientKind, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo)

	err := svc.MarkRead(context.Background(), enums.RecipientDriver, uuid.New(), uuid.New())
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_MarkReadDependencyError(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, kind enums.RecipientKind, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{}, errors.New("db down")
		},
	}
	svc := newServiceWithRepo(repo)

	err := svc.MarkRead(context.Background(), enums.RecipientDriver, uuid.New(), uuid.New())
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func testConsumer(repo repository) *Consumer {
	return &Consumer{
		repo: repo,
		logg: logger.New(logger.Options{Output: io.Discard}),
	}
}

func TestConsumer_OfferCreatedNotifiesDriver(t *testing.T) {
	repo := &fakeRepository{}
	c := testConsumer(repo)

	driverID := uuid.New()
	rideID := uuid.New()
	data, _ := json.Marshal(map[string]any{
		"offer_id":       uuid.New(),
		"ride_id":        rideID,
		"driver_id":      driverID,
		"pickup_dist_km": 1.4,
	})

	if err := c.handleEvent(context.Background(), enums.EventOfferCreated, data, context.Background()); err != nil {
		t.Fatalf("handleEvent: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}
	note := repo.created[0]
	if note.RecipientKind != enums.RecipientDriver || note.RecipientID != driverID {
		t.Fatalf("unexpected recipient %s/%s", note.RecipientKind, note.RecipientID)
	}
	if note.Type != enums.NotificationTypeOffer {
		t.Fatalf("type = %s, want offer", note.Type)
	}
	if note.RideID == nil || *note.RideID != rideID {
		t.Fatal("ride id not carried onto the notification")
	}
}

func TestConsumer_RideCanceledNotifiesBothParties(t *testing.T) {
	repo := &fakeRepository{}
	c := testConsumer(repo)

	passengerID := uuid.New()
	driverID := uuid.New()
	data, _ := json.Marshal(map[string]any{
		"ride_id":      uuid.New(),
		"passenger_id": passengerID,
		"driver_id":    driverID,
		"status":       "canceled",
	})

	if err := c.handleEvent(context.Background(), enums.EventRideCanceled, data, context.Background()); err != nil {
		t.Fatalf("handleEvent: %v", err)
	}
	if len(repo.created) != 2 {
		t.Fatalf("created = %d, want passenger and driver rows", len(repo.created))
	}
	kinds := map[enums.RecipientKind]uuid.UUID{}
	for _, n := range repo.created {
		kinds[n.RecipientKind] = n.RecipientID
	}
	if kinds[enums.RecipientPassenger] != passengerID || kinds[enums.RecipientDriver] != driverID {
		t.Fatalf("unexpected recipients %+v", kinds)
	}
}

func TestConsumer_WalletCommissionNotifiesDriver(t *testing.T) {
	repo := &fakeRepository{}
	c := testConsumer(repo)

	driverID := uuid.New()
	rideID := uuid.New()
	data, _ := json.Marshal(map[string]any{
		"driver_id":           driverID,
		"ride_id":             rideID,
		"amount_cents":        -43,
		"balance_after_cents": 957,
	})

	if err := c.handleEvent(context.Background(), enums.EventCommissionDebited, data, context.Background()); err != nil {
		t.Fatalf("handleEvent: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}
	note := repo.created[0]
	if note.Type != enums.NotificationTypeWallet || note.RecipientID != driverID {
		t.Fatalf("unexpected notification %+v", note)
	}
}

func TestConsumer_UnhandledEventIsNoop(t *testing.T) {
	repo := &fakeRepository{}
	c := testConsumer(repo)

	if err := c.handleEvent(context.Background(), enums.EventRideRequested, json.RawMessage(`{}`), context.Background()); err != nil {
		t.Fatalf("handleEvent: %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("created = %d, want 0", len(repo.created))
	}
}
