package statushub

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFullMessageRoundTrip(t *testing.T) {
	snap := Snapshot{
		ActiveProfileID: "p1",
		Slots:           []SlotStatus{{Slot: 1, State: "acquired"}},
		Devices:         []DeviceStatus{{DeviceID: "d1", Name: "Throttle", Connected: true}},
	}
	msg := newFullMessage(7, snap)

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded WSMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Type != "full" || decoded.Seq != 7 || decoded.Data == nil {
		t.Fatalf("got %+v", decoded)
	}
	if decoded.Data.ActiveProfileID != "p1" || len(decoded.Data.Slots) != 1 {
		t.Fatalf("got %+v", decoded.Data)
	}
}

func TestHubBroadcastReachesRegisteredClient(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 4)}
	h.Register(c)

	// Give the hub goroutine a turn to process registration.
	for i := 0; i < 100 && h.ClientCount() == 0; i++ {
		time.Sleep(time.Millisecond)
	}

	h.Broadcast([]byte(`{"type":"full"}`))

	select {
	case got := <-c.send:
		if string(got) != `{"type":"full"}` {
			t.Fatalf("got %s", got)
		}
	default:
		t.Fatalf("expected a message to be queued for the client")
	}
}
