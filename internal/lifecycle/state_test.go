package lifecycle

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	legal := map[State][]State{
		Pending:   {Confirmed, Rejected, Canceled},
		Confirmed: {Canceled, Completed},
	}

	for _, from := range States() {
		for _, to := range States() {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}

			err := Transition(from, to)
			if want && err != nil {
				t.Fatalf("%s -> %s should be legal, got %v", from, to, err)
			}
			if !want {
				var tErr *TransitionError
				if !errors.As(err, &tErr) {
					t.Fatalf("%s -> %s should be rejected, got %v", from, to, err)
				}
				if tErr.From != from || tErr.To != to {
					t.Fatalf("unexpected error payload: %+v", tErr)
				}
			}
		}
	}
}

func TestStatePredicates(t *testing.T) {
	t.Parallel()

	for _, s := range States() {
		if !s.Known() {
			t.Fatalf("%s should be known", s)
		}
		if s.Active() && s.Terminal() {
			t.Fatalf("%s cannot be both active and terminal", s)
		}
	}
	if !Pending.Active() || !Confirmed.Active() {
		t.Fatal("pending and confirmed must be active")
	}
	for _, s := range []State{Rejected, Canceled, Completed} {
		if s.Active() || !s.Terminal() {
			t.Fatalf("%s must be terminal and inactive", s)
		}
	}
	if State("ARCHIVED").Known() || State("ARCHIVED").Terminal() {
		t.Fatal("unknown states must not be reported as known or terminal")
	}
}

func TestTransitionError_Message(t *testing.T) {
	t.Parallel()

	err := Transition(Rejected, Confirmed)
	if err == nil || err.Error() != "invalid transition from REJECTED to CONFIRMED" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransitionError_MatchesSentinel(t *testing.T) {
	t.Parallel()

	if err := Transition(Completed, Canceled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
