package until

import "testing"

func TestSignalNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
	}{
		{"until.waiter.started", WaiterStarted.Name()},
		{"until.waiter.subscribed", WaiterSubscribed.Name()},
		{"until.waiter.matched", WaiterMatched.Name()},
		{"until.waiter.timed_out", WaiterTimedOut.Name()},
		{"until.waiter.released", WaiterReleased.Name()},
		{"until.extract.subscribed", ExtractSubscribed.Name()},
		{"until.extract.completed", ExtractCompleted.Name()},
		{"until.extract.failed", ExtractFailed.Name()},
		{"until.extract.closed", ExtractClosed.Name()},
		{"until.capacitor.started", CapacitorStarted.Name()},
		{"until.capacitor.stopped", CapacitorStopped.Name()},
		{"until.capacitor.state.changed", CapacitorStateChanged.Name()},
		{"until.capacitor.change.received", CapacitorChangeReceived.Name()},
		{"until.capacitor.decode.failed", CapacitorDecodeFailed.Name()},
		{"until.capacitor.validation.failed", CapacitorValidationFailed.Name()},
		{"until.capacitor.apply.failed", CapacitorApplyFailed.Name()},
		{"until.capacitor.apply.succeeded", CapacitorApplySucceeded.Name()},
	}
	for _, tt := range tests {
		if tt.got != tt.name {
			t.Errorf("expected name %q, got %q", tt.name, tt.got)
		}
	}
}
