package server

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testHub() *Hub {
	return newHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newHubClient() *Client {
	return &Client{send: make(chan []byte, 256)}
}

func expectFrame(t *testing.T, c *Client, want string) {
	t.Helper()
	select {
	case msg := <-c.send:
		if string(msg) != want {
			t.Errorf("expected frame %s, got %s", want, msg)
		}
	case <-time.After(time.Second):
		t.Errorf("timed out waiting for frame %s", want)
	}
}

func expectNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Errorf("expected no frame, got %s", msg)
	default:
	}
}

// TestHub_GroupScopedPublish verifies that frames only reach
// connections joined to the target group, and that the originator of a
// frame receives it like everyone else.
func TestHub_GroupScopedPublish(t *testing.T) {
	hub := testHub()
	go hub.run()

	sender := newHubClient()
	peer := newHubClient()
	outsider := newHubClient()

	hub.Join("r1", sender)
	hub.Join("r1", peer)
	hub.Join("r2", outsider)

	frame := `{"action":"message","roomId":"r1","message":"hi"}`
	hub.Publish("r1", []byte(frame))

	expectFrame(t, sender, frame)
	expectFrame(t, peer, frame)

	time.Sleep(50 * time.Millisecond)
	expectNoFrame(t, outsider)
}

// TestHub_PublishToEmptyGroupIsNoop covers the path where an error
// payload is addressed to a room id that no live group corresponds to.
func TestHub_PublishToEmptyGroupIsNoop(t *testing.T) {
	hub := testHub()
	go hub.run()

	bystander := newHubClient()
	hub.Join("r1", bystander)

	hub.Publish("no-such-room", []byte(`{"error":"ChatRoom does not exist"}`))
	hub.Publish("r1", []byte(`follow-up`))

	// the follow-up arriving proves the empty publish didn't wedge the hub
	expectFrame(t, bystander, "follow-up")
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := testHub()
	go hub.run()

	c := newHubClient()
	hub.Join("r1", c)
	hub.Join("r2", c)
	hub.Leave("r1", c)

	hub.Publish("r1", []byte(`one`))
	hub.Publish("r2", []byte(`two`))

	expectFrame(t, c, "two")
	expectNoFrame(t, c)
}

func TestHub_DetachRemovesFromAllGroups(t *testing.T) {
	hub := testHub()
	go hub.run()

	c := newHubClient()
	witness := newHubClient()
	hub.Join("r1", c)
	hub.Join("r2", c)
	hub.Join("r1", witness)

	hub.Detach(c)

	hub.Publish("r1", []byte(`after-detach`))
	expectFrame(t, witness, "after-detach")

	// send must be closed so the write pump exits
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel after detach")
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed after detach")
	}

	// a second detach must be a no-op
	hub.Detach(c)
	hub.Publish("r1", []byte(`still-routing`))
	expectFrame(t, witness, "still-routing")
}

// TestHub_SlowSubscriberDoesNotBlockOthers fills one subscriber's send
// buffer and checks that the rest of the group keeps receiving.
func TestHub_SlowSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := testHub()
	go hub.run()

	slow := &Client{send: make(chan []byte)} // unbuffered, never read
	healthy := newHubClient()
	hub.Join("r1", slow)
	hub.Join("r1", healthy)

	hub.Publish("r1", []byte(`first`))
	hub.Publish("r1", []byte(`second`))

	expectFrame(t, healthy, "first")
	expectFrame(t, healthy, "second")
}
