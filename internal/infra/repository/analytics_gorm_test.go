package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/analytics"
)

func TestCountAppointments_ScopeAndStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnalyticsGormRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE barbershop_id = \$1 AND staff_id = \$2 AND start_time >= \$3 AND start_time < \$4 AND status = \$5`).
		WithArgs(1, 7, day, day.AddDate(0, 0, 1), "COMPLETED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountAppointments(context.Background(), analytics.Scope{
		BarbershopID: 1,
		StaffID:      7,
		From:         day,
		To:           day.AddDate(0, 0, 1),
	}, "COMPLETED")

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletedRevenue(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnalyticsGormRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(final_price\), 0\) FROM "appointments" WHERE barbershop_id = \$1 AND status = \$2`).
		WithArgs(1, "COMPLETED").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(150.5))

	total, err := repo.CompletedRevenue(context.Background(), analytics.Scope{BarbershopID: 1})

	require.NoError(t, err)
	assert.InDelta(t, 150.5, total, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaidAmount_JoinsAppointmentsForStaff(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnalyticsGormRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(payments.amount\), 0\) FROM "payments" JOIN appointments ON appointments.id = payments.appointment_id WHERE payments.status = \$1 AND payments.barbershop_id = \$2 AND appointments.staff_id = \$3`).
		WithArgs("PAID", 1, 7).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(80))

	total, err := repo.PaidAmount(context.Background(), analytics.Scope{BarbershopID: 1, StaffID: 7})

	require.NoError(t, err)
	assert.InDelta(t, 80.0, total, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopService_EmptyShop(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnalyticsGormRepository(db)

	mock.ExpectQuery(`SELECT services.name AS name, COUNT\(\*\) AS total FROM "appointments" JOIN services .* GROUP BY .* ORDER BY total DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "total"}))

	name, err := repo.TopService(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, name)
}
