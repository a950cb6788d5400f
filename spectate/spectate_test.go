package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"

	"github.com/brensch/snek3d/game"
	"github.com/brensch/snek3d/logging"
	"github.com/brensch/snek3d/rules"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func sessionFrame(t *testing.T, ticks int) Frame {
	t.Helper()
	sess, err := rules.NewSession(rules.DefaultSettings, rand.New(rand.NewSource(11)), nil, logging.Discard())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	var out rules.Outcome
	for range ticks {
		out = sess.Step()
	}
	return NewFrame(out, sess.Snapshot())
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	ts := httptest.NewServer(NewServer(hub, logging.Discard()).Handler())
	t.Cleanup(ts.Close)
	return hub, ts
}

func TestHub_LatestAndSubscribe(t *testing.T) {
	hub := NewHub()
	if _, ok := hub.Latest(); ok {
		t.Fatalf("fresh hub has a frame")
	}
	frames, stop := hub.Subscribe(1)
	hub.Publish(Frame{Turn: 1})
	hub.Publish(Frame{Turn: 2}) // dropped, buffer full

	if f := <-frames; f.Turn != 1 {
		t.Fatalf("first frame turn=%d", f.Turn)
	}
	if f, _ := hub.Latest(); f.Turn != 2 {
		t.Fatalf("latest turn=%d", f.Turn)
	}
	stop()
	stop()
	if hub.Subscribers() != 0 {
		t.Fatalf("subscriber not removed")
	}
	if _, ok := <-frames; ok {
		t.Fatalf("channel still open after stop")
	}
}

func TestFrame_Cells(t *testing.T) {
	f := Frame{
		Width: 3, Height: 2,
		Body:      []Coord{{X: 0, Z: 0}, {X: 1, Z: 0}},
		Candies:   []Coord{{X: 2, Z: 1}},
		Obstacles: []Coord{{X: 0, Z: 1}},
	}
	want := [][]string{{"head", "body", "empty"}, {"obstacle", "empty", "candy"}}
	got := f.Cells()
	for z := range want {
		for x := range want[z] {
			if got[z][x] != want[z][x] {
				t.Fatalf("cell %d,%d = %s want %s", x, z, got[z][x], want[z][x])
			}
		}
	}
}

func TestServer_State(t *testing.T) {
	hub, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status before publish=%d", resp.StatusCode)
	}

	want := sessionFrame(t, 5)
	hub.Publish(want)
	resp, err = http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got Frame
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Turn != 5 || len(got.Body) != len(want.Body) || got.Body[0] != want.Body[0] {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestServer_Board(t *testing.T) {
	hub, ts := newTestServer(t)
	f := sessionFrame(t, 3)
	hub.Publish(f)

	resp, err := http.Get(ts.URL + "/board")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	if n := doc.Find("#board tr").Length(); n != f.Height {
		t.Fatalf("rows=%d want %d", n, f.Height)
	}
	if n := doc.Find("#board td").Length(); n != f.Width*f.Height {
		t.Fatalf("cells=%d want %d", n, f.Width*f.Height)
	}
	if n := doc.Find("td.head").Length(); n != 1 {
		t.Fatalf("heads=%d", n)
	}
	if n := doc.Find("td.body").Length(); n != len(f.Body)-1 {
		t.Fatalf("body cells=%d want %d", n, len(f.Body)-1)
	}
	if n := doc.Find("td.obstacle").Length(); n != len(f.Obstacles) {
		t.Fatalf("obstacles=%d want %d", n, len(f.Obstacles))
	}
	head := f.Body[0]
	cell := doc.Find("#board tr").Eq(head.Z).Find("td").Eq(head.X)
	if !cell.HasClass("head") {
		t.Fatalf("head cell at %d,%d has class %q", head.X, head.Z, cell.AttrOr("class", ""))
	}
	if got := strings.TrimSpace(doc.Find("#turn").Text()); got != "3" {
		t.Fatalf("turn text=%q", got)
	}
}

func TestFollow_ReceivesFrames(t *testing.T) {
	hub, ts := newTestServer(t)
	hub.Publish(Frame{Turn: 1, Width: 2, Height: 2})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := errors.New("done")
	var turns []int
	publish := func() {
		for turn := 2; ctx.Err() == nil; turn++ {
			hub.Publish(Frame{Turn: turn, Width: 2, Height: 2})
			time.Sleep(10 * time.Millisecond)
		}
	}

	err := Follow(ctx, url, DefaultFollowConfig, func(f Frame) error {
		turns = append(turns, f.Turn)
		if len(turns) == 1 {
			// Subscribed by now; start the live stream.
			go publish()
		}
		if len(turns) == 3 {
			return done
		}
		return nil
	})
	if !errors.Is(err, done) {
		t.Fatalf("Follow err=%v", err)
	}
	if turns[0] != 1 {
		t.Fatalf("first frame turn=%d, want the latest at connect time", turns[0])
	}
	for i := 1; i < len(turns); i++ {
		if turns[i] <= turns[i-1] {
			t.Fatalf("turns not increasing: %v", turns)
		}
	}
}

func TestFollow_ContextCancel(t *testing.T) {
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	err := Follow(ctx, url, DefaultFollowConfig, func(Frame) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestNewFrame(t *testing.T) {
	snap := &game.Snapshot{Width: 4, Height: 4, Turn: 7, Round: 2, Direction: game.Right, Body: []game.Point{{X: 1, Z: 2}}}
	f := NewFrame(rules.Outcome{Died: true, Cause: rules.DeathObstacle}, snap)
	if f.Direction != "right" || f.Cause != "obstacle" || !f.Died || f.Body[0] != (Coord{X: 1, Z: 2}) {
		t.Fatalf("frame=%+v", f)
	}
	back := f.Snapshot()
	if back.Direction != game.Right || back.Turn != 7 || back.Head() != (game.Point{X: 1, Z: 2}) || len(back.Growth) != 1 {
		t.Fatalf("snapshot=%+v", back)
	}
}
