package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autodealer/showroom/internal/core/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestFilter(t *testing.T) {
	var w filter
	assert.Equal(t, "", w.where())

	w.add("role = $%d", "admin")
	w.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d)", "%bo%")
	w.raw("is_active")
	assert.Equal(t, " WHERE role = $1 AND (name ILIKE $2 OR email ILIKE $2) AND is_active", w.where())

	clause, args := w.page(3, 20)
	assert.Equal(t, " LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []any{"admin", "%bo%", 20, 40}, args)
	assert.Len(t, w.args, 2, "page must not grow the filter args")
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern(" 50%_off "))
}

func TestUserCreate_MapsUniqueViolations(t *testing.T) {
	cases := map[string]error{
		"users_email_key":         domain.ErrUserExists,
		"users_single_superadmin": domain.ErrSuperadminExists,
	}
	for constraint, want := range cases {
		t.Run(constraint, func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectExec(q("INSERT INTO users")).
				WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint})

			err := NewUserRepository(mock).Create(context.Background(), &domain.User{ID: "u1"})
			assert.ErrorIs(t, err, want)
		})
	}
}

func TestUserFindByEmail_NotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE email = $1")).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewUserRepository(mock).FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRoomDelete_CommitsCascade(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM chat_messages")).WithArgs("r1").WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec(q("DELETE FROM chat_conversations WHERE room_id")).WithArgs("r1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(q("UPDATE payments SET room_id = NULL")).WithArgs("r1").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(q("DELETE FROM bookings WHERE room_id")).WithArgs("r1").WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(q("DELETE FROM cars WHERE room_id")).WithArgs("r1").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(q("DELETE FROM rooms WHERE id")).WithArgs("r1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, NewRoomRepository(mock).Delete(context.Background(), "r1"))
}

func TestRoomDelete_RollsBackOnFailure(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM chat_messages")).WithArgs("r1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(q("DELETE FROM chat_conversations WHERE room_id")).WithArgs("r1").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := NewRoomRepository(mock).Delete(context.Background(), "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRoomDelete_MissingRoomRollsBack(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	for i := 0; i < 5; i++ {
		mock.ExpectExec(".*").WithArgs("gone").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(q("DELETE FROM rooms WHERE id")).WithArgs("gone").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := NewRoomRepository(mock).Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestOTPConsume_OnlyOnce(t *testing.T) {
	mock := newMock(t)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(q("consumed_at IS NULL")).WithArgs(at, "o1").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(q("consumed_at IS NULL")).WithArgs(at, "o1").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewOTPRepository(mock)
	first, err := repo.Consume(context.Background(), "o1", at)
	require.NoError(t, err)
	second, err := repo.Consume(context.Background(), "o1", at)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

func TestOTPFind_NotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(q("FROM otp_codes")).WithArgs("a@b.co", domain.OTPSignup).WillReturnError(pgx.ErrNoRows)

	_, err := NewOTPRepository(mock).Find(context.Background(), "a@b.co", domain.OTPSignup)
	assert.ErrorIs(t, err, domain.ErrOTPNotFound)
}

func TestChatAddMessage_UpdatesSummaryInTx(t *testing.T) {
	mock := newMock(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &domain.Message{ID: "m1", ConversationID: "c1", SenderID: "u1", Content: "hi", CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO chat_messages")).
		WithArgs("m1", "c1", "u1", "hi", false, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(q("UPDATE chat_conversations SET last_message")).
		WithArgs("hi", now, "c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, NewChatRepository(mock).AddMessage(context.Background(), m))
}

func TestChatListMessages_OldestFirst(t *testing.T) {
	mock := newMock(t)
	t1 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	rows := pgxmock.NewRows([]string{"id", "conversation_id", "sender_id", "content", "is_read", "created_at"}).
		AddRow("m2", "c1", "a1", "second", false, t2).
		AddRow("m1", "c1", "u1", "first", true, t1)
	mock.ExpectQuery(q("FROM chat_messages WHERE conversation_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("c1", 2, 0).
		WillReturnRows(rows)

	got, err := NewChatRepository(mock).ListMessages(context.Background(), "c1", nil, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
}

func TestChatMarkRead_ReturnsChangedCount(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(q("UPDATE chat_messages SET is_read = TRUE")).
		WithArgs("c1", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := NewChatRepository(mock).MarkRead(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestNotificationMarkRead(t *testing.T) {
	t.Run("already read still succeeds", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(q("UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2")).
			WithArgs("n1", "u1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		assert.NoError(t, NewNotificationRepository(mock).MarkRead(context.Background(), "n1", "u1"))
	})

	t.Run("foreign notification is not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(q("UPDATE notifications SET is_read = TRUE")).
			WithArgs("n1", "u2").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := NewNotificationRepository(mock).MarkRead(context.Background(), "n1", "u2")
		assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	})
}

func TestSettingsGetBool(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(q("SELECT value FROM system_settings")).
		WithArgs(domain.SettingAPILogging).
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow("true"))
	mock.ExpectQuery(q("SELECT value FROM system_settings")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewSettingsRepository(mock)
	on, err := repo.GetBool(context.Background(), domain.SettingAPILogging)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = repo.GetBool(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, on)
}

func TestSettingsSetBool_Upserts(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(q("ON CONFLICT (key) DO UPDATE")).
		WithArgs(domain.SettingAPILogging, "false").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewSettingsRepository(mock).SetBool(context.Background(), domain.SettingAPILogging, false))
}

func TestPaymentCompleted(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(q("COALESCE(SUM(amount), 0)")).
		WithArgs(domain.PaymentCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"count", "sum"}).AddRow(int64(2), int64(45000)))

	count, total, err := NewPaymentRepository(mock).Completed(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.EqualValues(t, 45000, total)
}

func TestBookingUpdateStatus_NotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(q("UPDATE bookings SET status")).
		WithArgs(domain.BookingConfirmed, "b9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewBookingRepository(mock).UpdateStatus(context.Background(), "b9", domain.BookingConfirmed)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}
