package testfixtures

import (
	"time"

	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// SchedulerDeps captures dependencies for constructing a reservation
// scheduler. Zero Hours open every room around the clock.
type SchedulerDeps struct {
	Reservations application.ReservationStore
	Rooms        application.RoomCatalog
	Teachers     application.TeacherDirectory
	Activities   application.ActivityCatalog
	People       application.PersonDirectory
	States       application.StateCatalog
	Locker       application.Locker
	Audit        application.AuditRecorder
	Hours        application.OperatingHours
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *zap.Logger
}

// AllDay is a window covering the whole day.
func AllDay() application.OperatingHours {
	return application.OperatingHours{
		Location: time.UTC,
		Default:  application.DailyWindow{Open: 0, Close: 24 * time.Hour},
	}
}

// NewReservationScheduler builds a scheduler using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewReservationScheduler(deps SchedulerDeps) *application.ReservationScheduler {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	hours := deps.Hours
	if hours.Location == nil && hours.Default == (application.DailyWindow{}) && len(hours.Rooms) == 0 {
		hours = AllDay()
	}
	return application.NewReservationScheduler(application.SchedulerConfig{
		Reservations: deps.Reservations,
		Rooms:        deps.Rooms,
		Teachers:     deps.Teachers,
		Activities:   deps.Activities,
		People:       deps.People,
		States:       deps.States,
		Locker:       deps.Locker,
		Audit:        deps.Audit,
		Hours:        hours,
		IDGenerator:  idGen,
		Now:          now,
		Logger:       deps.Logger,
	})
}

// CatalogServiceDeps captures dependencies for constructing a catalog service.
type CatalogServiceDeps struct {
	Writer      application.CatalogWriter
	IDGenerator func() string
	Logger      *zap.Logger
}

// NewCatalogService builds a catalog service using the supplied dependencies.
func (f *ServiceFactory) NewCatalogService(deps CatalogServiceDeps) *application.CatalogService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	return application.NewCatalogService(deps.Writer, idGen, deps.Logger)
}
