package event

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newLedgerEventPublisher() *OutboxPublisher {
	serializer := NewVersionedSerializer(zap.NewNop())
	serializer.Register("order.recorded", &ledgerTestEvent{})
	return NewOutboxPublisher(serializer)
}

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	t.Run("saves one event inside the transaction", func(t *testing.T) {
		db, mock := openOutboxMockDB(t)
		publisher := newLedgerEventPublisher()

		evt := newLedgerTestEvent("order.recorded", uuid.New())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(evt.OccurredAt(), evt.OccurredAt()))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return publisher.PublishWithTx(context.Background(), tx, evt)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("saves a batch in one insert", func(t *testing.T) {
		db, mock := openOutboxMockDB(t)
		publisher := newLedgerEventPublisher()

		tenantID := uuid.New()
		events := []shared.DomainEvent{
			newLedgerTestEvent("order.recorded", tenantID),
			newLedgerTestEvent("order.recorded", tenantID),
			newLedgerTestEvent("order.recorded", tenantID),
		}

		rows := sqlmock.NewRows([]string{"created_at", "updated_at"})
		for _, evt := range events {
			rows.AddRow(evt.OccurredAt(), evt.OccurredAt())
		}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
			WillReturnRows(rows)
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return publisher.PublishWithTx(context.Background(), tx, events...)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no events means no insert", func(t *testing.T) {
		db, mock := openOutboxMockDB(t)
		publisher := NewOutboxPublisher(NewVersionedSerializer(zap.NewNop()))

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return publisher.PublishWithTx(context.Background(), tx)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back with the caller's transaction", func(t *testing.T) {
		db, mock := openOutboxMockDB(t)
		publisher := newLedgerEventPublisher()

		evt := newLedgerTestEvent("order.recorded", uuid.New())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(evt.OccurredAt(), evt.OccurredAt()))
		mock.ExpectRollback()

		orderErr := errors.New("order total mismatch")
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := publisher.PublishWithTx(context.Background(), tx, evt); err != nil {
				return err
			}
			return orderErr
		})

		require.Error(t, err)
		assert.Equal(t, orderErr, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxPublisher_SaveEvents(t *testing.T) {
	t.Run("rejects a non-gorm transaction", func(t *testing.T) {
		publisher := newLedgerEventPublisher()

		evt := newLedgerTestEvent("order.recorded", uuid.New())

		err := publisher.SaveEvents(context.Background(), "not a tx", evt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a *gorm.DB")
	})

	t.Run("no events short-circuits before the type check", func(t *testing.T) {
		publisher := newLedgerEventPublisher()

		require.NoError(t, publisher.SaveEvents(context.Background(), "not a tx"))
	})
}
