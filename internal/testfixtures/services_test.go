package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/reservation-scheduler/internal/application"
)

type capturingCatalogWriter struct {
	room application.RoomInput
}

func (c *capturingCatalogWriter) SaveRoom(ctx context.Context, room application.RoomInput) error {
	c.room = room
	return nil
}

func (c *capturingCatalogWriter) SavePerson(ctx context.Context, person application.PersonInput) error {
	return nil
}

func (c *capturingCatalogWriter) SaveActivity(ctx context.Context, activity application.ActivityInput) error {
	return nil
}

func TestServiceFactoryNewCatalogService(t *testing.T) {
	factory := NewServiceFactory()
	writer := &capturingCatalogWriter{}

	svc := factory.NewCatalogService(CatalogServiceDeps{Writer: writer})
	principal := application.Principal{UserID: "admin", IsAdmin: true}

	room, err := svc.SaveRoom(context.Background(), principal, application.RoomInput{Name: "Lab", Active: true})
	if err != nil {
		t.Fatalf("SaveRoom returned error: %v", err)
	}
	if room.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", room.ID)
	}
	if writer.room.ID != room.ID {
		t.Fatalf("writer received unexpected ID: %q", writer.room.ID)
	}
}

func TestServiceFactoryNewReservationSchedulerDefaultsToAllDay(t *testing.T) {
	factory := NewServiceFactory()
	scheduler := factory.NewReservationScheduler(SchedulerDeps{})

	day := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)
	if err := scheduler.ValidateOperatingHours("room-1", day.Add(23*time.Hour), day.Add(24*time.Hour)); err != nil {
		t.Fatalf("expected late slot to be allowed, got %v", err)
	}

	strict := factory.NewReservationScheduler(SchedulerDeps{Hours: application.DefaultOperatingHours()})
	if err := strict.ValidateOperatingHours("room-1", day.Add(23*time.Hour), day.Add(24*time.Hour)); err == nil {
		t.Fatalf("expected default hours to reject a late slot")
	}
}
