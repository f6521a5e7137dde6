package events

import (
	"math/big"
	"testing"
)

func TestBufferDrainResets(t *testing.T) {
	buffer := new(Buffer)
	buffer.Emit(&Event{Type: TypePoolDeposited})
	buffer.Emit(&Event{Type: TypeRewardClaimed})
	buffer.Emit(nil)

	drained := buffer.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected 2 events, got %d", len(drained))
	}
	if drained[0].Type != TypePoolDeposited || drained[1].Type != TypeRewardClaimed {
		t.Fatalf("events drained out of order")
	}
	if again := buffer.Drain(); len(again) != 0 {
		t.Fatalf("drain must reset the buffer, got %d events", len(again))
	}
}

func TestRewardAssignedOmitsZeroExpiry(t *testing.T) {
	var recipient [20]byte
	evt := NewRewardAssigned(recipient, 3, "fixed", 0)
	if _, ok := evt.Attributes["expiresAt"]; ok {
		t.Fatalf("zero expiry must not be rendered")
	}
	evt = NewRewardAssigned(recipient, 3, "fixed", 500)
	if evt.Attributes["expiresAt"] != "500" {
		t.Fatalf("unexpected expiresAt %q", evt.Attributes["expiresAt"])
	}
	if evt.Attributes["index"] != "3" {
		t.Fatalf("unexpected index %q", evt.Attributes["index"])
	}
}

func TestClaimedEventAttributes(t *testing.T) {
	var recipient [20]byte
	recipient[19] = 9
	evt := NewRewardClaimed(recipient, 1, big.NewInt(250), big.NewInt(750))
	if evt.Type != TypeRewardClaimed {
		t.Fatalf("unexpected type %s", evt.Type)
	}
	if evt.Attributes["payout"] != "250" || evt.Attributes["balance"] != "750" {
		t.Fatalf("unexpected attributes %v", evt.Attributes)
	}
}
