package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type mockRepo struct {
	mock.Mock

	inTx bool
	// customerInTx records whether GetOrCreateCustomer ran inside WithinTx.
	customerInTx bool
}

func (m *mockRepo) FindSchedule(ctx context.Context, staffID, shopID uint, wd time.Weekday) (*models.WeeklySchedule, error) {
	args := m.Called(ctx, staffID, shopID, wd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklySchedule), args.Error(1)
}

func (m *mockRepo) ListActiveBookings(ctx context.Context, f availability.BookingFilter) ([]models.Appointment, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *mockRepo) GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Barbershop), args.Error(1)
}

func (m *mockRepo) GetStaff(ctx context.Context, shopID, staffID uint) (*models.User, error) {
	args := m.Called(ctx, shopID, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockRepo) ListScheduledStaff(ctx context.Context, shopID uint, wd time.Weekday) ([]models.User, error) {
	args := m.Called(ctx, shopID, wd)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockRepo) GetService(ctx context.Context, shopID, serviceID uint) (*models.Service, error) {
	args := m.Called(ctx, shopID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *mockRepo) GetOrCreateCustomer(ctx context.Context, in domain.CustomerInput) (*models.Customer, error) {
	m.customerInTx = m.inTx
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockRepo) GetCustomerByUser(ctx context.Context, shopID, userID uint) (*models.Customer, error) {
	args := m.Called(ctx, shopID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockRepo) TouchCustomerVisit(ctx context.Context, customerID uint, at time.Time) error {
	return m.Called(ctx, customerID, at).Error(0)
}

func (m *mockRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return m.Called(ctx, ap).Error(0)
}

func (m *mockRepo) GetAppointment(ctx context.Context, shopID, id uint) (*models.Appointment, error) {
	args := m.Called(ctx, shopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *mockRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return m.Called(ctx, ap).Error(0)
}

func (m *mockRepo) ListAppointmentsForPeriod(ctx context.Context, f domain.PeriodFilter) ([]models.Appointment, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *mockRepo) WithinTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	m.inTx = true
	defer func() { m.inTx = false }()
	return fn(m)
}

type cacheCall struct {
	staffID uint
	dates   []string
}

type fakeCache struct {
	entries     map[string][]string
	invalidated []cacheCall
	sets        int
	gen         int64
	// beforeSet runs between computing and storing, like a booking that
	// commits meanwhile.
	beforeSet func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]string{}}
}

func cacheKey(staffID uint, date string, slot time.Duration) string {
	return fmt.Sprintf("%d/%s/%s", staffID, date, slot)
}

func (c *fakeCache) Get(_ context.Context, _, staffID uint, date string, slot time.Duration) ([]string, bool, error) {
	v, ok := c.entries[cacheKey(staffID, date, slot)]
	return v, ok, nil
}

func (c *fakeCache) Generation(context.Context, uint, uint) (int64, error) {
	return c.gen, nil
}

func (c *fakeCache) Set(_ context.Context, _, staffID uint, date string, slot time.Duration, gen int64, slots []string) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	if gen != c.gen {
		return nil
	}
	c.sets++
	c.entries[cacheKey(staffID, date, slot)] = slots
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, _, staffID uint, dates ...string) error {
	c.gen++
	for _, d := range dates {
		for k := range c.entries {
			if strings.HasPrefix(k, fmt.Sprintf("%d/%s/", staffID, d)) {
				delete(c.entries, k)
			}
		}
	}
	c.invalidated = append(c.invalidated, cacheCall{staffID: staffID, dates: dates})
	return nil
}
