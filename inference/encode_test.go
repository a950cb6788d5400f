package inference

import (
	"context"
	"testing"

	"github.com/brensch/snek3d/game"
)

func at(data []float32, snap *game.Snapshot, c int, p game.Point) float32 {
	return data[c*snap.Height*snap.Width+p.Z*snap.Width+p.X]
}

func TestEncode_Planes(t *testing.T) {
	snap := &game.Snapshot{
		Width:     5,
		Height:    4,
		Body:      []game.Point{{X: 2, Z: 1}, {X: 2, Z: 2}, {X: 2, Z: 3}, {X: 3, Z: 3}},
		Growth:    []bool{false, false, true, false},
		Candies:   []game.Point{{X: 0, Z: 0}},
		Obstacles: []game.Point{{X: 4, Z: 0}, {X: 9, Z: 9}},
	}
	data := Encode(snap)
	if len(data) != Channels*5*4 {
		t.Fatalf("len=%d", len(data))
	}

	cases := []struct {
		name string
		c    int
		p    game.Point
		want float32
	}{
		{"candy", ChannelCandy, game.Point{X: 0, Z: 0}, 1},
		{"obstacle", ChannelObstacle, game.Point{X: 4, Z: 0}, 1},
		{"head ttl", ChannelBodyTTL, game.Point{X: 2, Z: 1}, 1},
		{"tail ttl", ChannelBodyTTL, game.Point{X: 3, Z: 3}, 0.25},
		{"mid ttl", ChannelBodyTTL, game.Point{X: 2, Z: 2}, 0.75},
		{"head", ChannelHead, game.Point{X: 2, Z: 1}, 1},
		{"not head", ChannelHead, game.Point{X: 2, Z: 2}, 0},
		{"growth", ChannelGrowth, game.Point{X: 2, Z: 3}, 1},
		{"no growth", ChannelGrowth, game.Point{X: 3, Z: 3}, 0},
	}
	for _, tc := range cases {
		if got := at(data, snap, tc.c, tc.p); got != tc.want {
			t.Errorf("%s at %s = %v want %v", tc.name, tc.p, got, tc.want)
		}
	}

	var total float32
	for _, v := range data[ChannelObstacle*20 : (ChannelObstacle+1)*20] {
		total += v
	}
	if total != 1 {
		t.Fatalf("out-of-bounds obstacle was encoded, plane sum=%v", total)
	}
}

func TestEncodeInto_ClearsBuffer(t *testing.T) {
	snap := &game.Snapshot{Width: 3, Height: 3, Body: []game.Point{{X: 1, Z: 1}}, Growth: []bool{false}}
	buf := make([]float32, InputSize(3, 3))
	for i := range buf {
		buf[i] = 9
	}
	EncodeInto(buf, snap)
	var total float32
	for _, v := range buf {
		total += v
	}
	if total != 2 {
		t.Fatalf("sum=%v want 2 (ttl + head)", total)
	}
}

func TestPredictorFunc(t *testing.T) {
	var p Predictor = PredictorFunc(func(_ context.Context, snap *game.Snapshot) ([]float32, float32, error) {
		return []float32{0, 0, 0, float32(len(snap.Body))}, 0.5, nil
	})
	policy, value, err := p.Predict(context.Background(), &game.Snapshot{Body: make([]game.Point, 3)})
	if err != nil || value != 0.5 || policy[3] != 3 {
		t.Fatalf("Predict=%v,%v,%v", policy, value, err)
	}
}
