package domain

import "testing"

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from  OrderStatus
		to    OrderStatus
		legal bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPreparing, false},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusPreparing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusReady, false},
		{StatusPreparing, StatusReady, true},
		{StatusPreparing, StatusCancelled, false},
		{StatusReady, StatusCompleted, true},
		{StatusReady, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.legal {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.legal)
		}
	}
}

func TestOrderStatus_NextStatuses_MatchesTransitionTable(t *testing.T) {
	for _, status := range []OrderStatus{
		StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCancelled,
	} {
		next := status.NextStatuses()
		for _, n := range next {
			if !status.CanTransitionTo(n) {
				t.Errorf("%s: NextStatuses offers illegal transition to %s", status, n)
			}
		}
		// Every legal target must be offered.
		for _, candidate := range []OrderStatus{
			StatusPending, StatusConfirmed, StatusPreparing,
			StatusReady, StatusCompleted, StatusCancelled,
		} {
			if status.CanTransitionTo(candidate) && !contains(next, candidate) {
				t.Errorf("%s: legal transition to %s missing from NextStatuses", status, candidate)
			}
		}
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	for status, terminal := range map[OrderStatus]bool{
		StatusPending:   false,
		StatusConfirmed: false,
		StatusPreparing: false,
		StatusReady:     false,
		StatusCompleted: true,
		StatusCancelled: true,
	} {
		if got := status.Terminal(); got != terminal {
			t.Errorf("%s: Terminal() = %v, want %v", status, got, terminal)
		}
		if terminal && len(status.NextStatuses()) != 0 {
			t.Errorf("%s: terminal status offers transitions", status)
		}
	}
}

func TestOrderStatus_UnknownHasNoTransitions(t *testing.T) {
	unknown := OrderStatus("SHIPPED")
	if unknown.CanTransitionTo(StatusCompleted) {
		t.Fatalf("unknown status must not allow transitions")
	}
	if len(unknown.NextStatuses()) != 0 {
		t.Fatalf("unknown status must offer no next statuses")
	}
}

func contains(list []OrderStatus, want OrderStatus) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
