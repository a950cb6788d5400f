// Package inference runs ONNX policy models over snake boards.
package inference

import (
	"sync"

	"github.com/brensch/snek3d/game"
)

// Channel layout of an encoded board.
const (
	ChannelCandy = iota
	ChannelObstacle
	ChannelBodyTTL
	ChannelHead
	ChannelGrowth
	Channels
)

// PolicySize is one logit per heading, in game.Directions order.
const PolicySize = len(game.Directions)

var floatPools sync.Map // int -> *sync.Pool

func pool(size int) *sync.Pool {
	if p, ok := floatPools.Load(size); ok {
		return p.(*sync.Pool)
	}
	p, _ := floatPools.LoadOrStore(size, &sync.Pool{
		New: func() any {
			b := make([]float32, size)
			return &b
		},
	})
	return p.(*sync.Pool)
}

// InputSize is the number of floats Encode produces for a board.
func InputSize(width, height int) int {
	return Channels * width * height
}

// Encode writes the snapshot as [Channels, Height, Width] planes. The body
// TTL plane counts down from 1 at the head to 1/len at the tail.
func Encode(snap *game.Snapshot) []float32 {
	data := make([]float32, InputSize(snap.Width, snap.Height))
	EncodeInto(data, snap)
	return data
}

// EncodeInto is Encode into a caller-provided slice of InputSize floats.
func EncodeInto(data []float32, snap *game.Snapshot) {
	clear(data)
	w, h := snap.Width, snap.Height
	set := func(c int, p game.Point, v float32) {
		if p.X < 0 || p.X >= w || p.Z < 0 || p.Z >= h {
			return
		}
		data[c*h*w+p.Z*w+p.X] = v
	}

	for _, p := range snap.Candies {
		set(ChannelCandy, p, 1)
	}
	for _, p := range snap.Obstacles {
		set(ChannelObstacle, p, 1)
	}
	l := len(snap.Body)
	for i, p := range snap.Body {
		set(ChannelBodyTTL, p, float32(l-i)/float32(l))
		if i < len(snap.Growth) && snap.Growth[i] {
			set(ChannelGrowth, p, 1)
		}
	}
	if l > 0 {
		set(ChannelHead, snap.Body[0], 1)
	}
}

func getBuffer(size int) *[]float32 {
	return pool(size).Get().(*[]float32)
}

func putBuffer(b *[]float32) {
	pool(len(*b)).Put(b)
}
