package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/reservation-scheduler/internal/persistence"
)

type catalogWriterStub struct {
	rooms      []RoomInput
	people     []PersonInput
	activities []ActivityInput
	err        error
}

func (c *catalogWriterStub) SaveRoom(ctx context.Context, room RoomInput) error {
	if c.err != nil {
		return c.err
	}
	c.rooms = append(c.rooms, room)
	return nil
}

func (c *catalogWriterStub) SavePerson(ctx context.Context, person PersonInput) error {
	if c.err != nil {
		return c.err
	}
	c.people = append(c.people, person)
	return nil
}

func (c *catalogWriterStub) SaveActivity(ctx context.Context, activity ActivityInput) error {
	if c.err != nil {
		return c.err
	}
	c.activities = append(c.activities, activity)
	return nil
}

func TestCatalogService_SaveRoom(t *testing.T) {
	admin := Principal{UserID: "admin-1", IsAdmin: true}

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewCatalogService(&catalogWriterStub{}, nil, nil)
		_, err := svc.SaveRoom(context.Background(), Principal{UserID: "teacher-x"}, RoomInput{Name: "Lab"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("generates an id and trims the name", func(t *testing.T) {
		writer := &catalogWriterStub{}
		svc := NewCatalogService(writer, func() string { return "room-9" }, nil)
		room, err := svc.SaveRoom(context.Background(), admin, RoomInput{Name: "  Lab 1 ", Active: true})
		if err != nil {
			t.Fatalf("SaveRoom returned error: %v", err)
		}
		if room.ID != "room-9" || room.Name != "Lab 1" {
			t.Fatalf("unexpected room: %+v", room)
		}
		if len(writer.rooms) != 1 || writer.rooms[0] != room {
			t.Fatalf("expected the normalized room to be written")
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		writer := &catalogWriterStub{}
		svc := NewCatalogService(writer, nil, nil)
		_, err := svc.SaveRoom(context.Background(), admin, RoomInput{ID: "room-1", Name: " "})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["name"] != "required" {
			t.Fatalf("expected name validation error, got %v", err)
		}
		if len(writer.rooms) != 0 {
			t.Fatalf("expected nothing to be written")
		}
	})

	t.Run("maps duplicate names", func(t *testing.T) {
		writer := &catalogWriterStub{err: fmt.Errorf("insert room: %w", persistence.ErrDuplicate)}
		svc := NewCatalogService(writer, nil, nil)
		_, err := svc.SaveRoom(context.Background(), admin, RoomInput{ID: "room-1", Name: "Lab"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["name"] != "already taken" {
			t.Fatalf("expected duplicate name validation error, got %v", err)
		}
	})
}

func TestCatalogService_SavePersonAndActivity(t *testing.T) {
	admin := Principal{UserID: "admin-1", IsAdmin: true}
	writer := &catalogWriterStub{}
	svc := NewCatalogService(writer, nil, nil)

	person, err := svc.SavePerson(context.Background(), admin, PersonInput{ID: "teacher-x", DisplayName: "Ada", Active: true, Teaching: true})
	if err != nil {
		t.Fatalf("SavePerson returned error: %v", err)
	}
	if !person.Teaching || len(writer.people) != 1 {
		t.Fatalf("unexpected person write: %+v", writer.people)
	}

	if _, err := svc.SavePerson(context.Background(), admin, PersonInput{ID: "p"}); err == nil {
		t.Fatalf("expected display name to be required")
	}

	activity, err := svc.SaveActivity(context.Background(), admin, ActivityInput{ID: "act-1", Name: "Chemistry", Active: true})
	if err != nil {
		t.Fatalf("SaveActivity returned error: %v", err)
	}
	if activity.Name != "Chemistry" || len(writer.activities) != 1 {
		t.Fatalf("unexpected activity write: %+v", writer.activities)
	}

	boom := errors.New("disk full")
	writer.err = boom
	if _, err := svc.SaveActivity(context.Background(), admin, ActivityInput{ID: "act-2", Name: "Biology"}); !errors.Is(err, boom) {
		t.Fatalf("expected infrastructure error to propagate, got %v", err)
	}
}
