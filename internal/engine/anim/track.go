// Package anim holds keyframe tracks and animation clips.
package anim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/skinrig/pkg/math"
)

var (
	// ErrEmptyTrack is returned for a track that exists but has no keys.
	ErrEmptyTrack = errors.New("anim: track has no keys")
	// ErrUnorderedKeys is returned when key times are not strictly increasing.
	ErrUnorderedKeys = errors.New("anim: key times not strictly increasing")
)

// Key is one sample of a channel. Time is in clip ticks.
type Key[V any] struct {
	Time  float64
	Value V
}

// VecTrack is a translation or scale channel.
type VecTrack []Key[math.Vec3]

// QuatTrack is a rotation channel.
type QuatTrack []Key[math.Quat]

// Validate checks the track invariants.
func (t VecTrack) Validate() error {
	return validateKeys(t)
}

// Validate checks the track invariants.
func (t QuatTrack) Validate() error {
	return validateKeys(t)
}

// Sample returns the linearly interpolated value at time.
// A single-key track is constant; an empty track yields the zero vector.
func (t VecTrack) Sample(time float64) math.Vec3 {
	switch len(t) {
	case 0:
		return math.Vec3{}
	case 1:
		return t[0].Value
	}

	i, f, ok := segment(t, time)
	if !ok {
		return t[i].Value
	}
	return t[i].Value.Lerp(t[i+1].Value, f)
}

// Sample returns the slerped rotation at time. Interior results are unit
// length; at the segment ends the stored key is returned unchanged.
// An empty track yields identity.
func (t QuatTrack) Sample(time float64) math.Quat {
	switch len(t) {
	case 0:
		return math.QuatIdentity()
	case 1:
		return t[0].Value
	}

	i, f, ok := segment(t, time)
	switch {
	case !ok, f <= 0:
		return t[i].Value
	case f >= 1:
		return t[i+1].Value
	}
	return t[i].Value.Slerp(t[i+1].Value, f)
}

func validateKeys[V any](keys []Key[V]) error {
	if len(keys) == 0 {
		return ErrEmptyTrack
	}
	for i := 1; i < len(keys); i++ {
		if !(keys[i].Time > keys[i-1].Time) {
			return fmt.Errorf("%w: key %d at %v after %v", ErrUnorderedKeys, i, keys[i].Time, keys[i-1].Time)
		}
	}
	return nil
}

// segment locates the key pair (i, i+1) for time: the first pair whose end
// lies after time, or the last pair when time is at or past every key.
// It returns the fraction clamped to [0, 1]; ok is false for a degenerate
// pair, in which case keys[i] is the answer. Requires len(keys) >= 2.
func segment[V any](keys []Key[V], time float64) (i int, f float32, ok bool) {
	last := len(keys) - 1
	i = sort.Search(last, func(k int) bool {
		return time < keys[k+1].Time
	})
	if i == last {
		i = last - 1
	}

	t0, t1 := keys[i].Time, keys[i+1].Time
	if t1 <= t0 {
		return i, 0, false
	}

	frac := (time - t0) / (t1 - t0)
	switch {
	case frac < 0:
		frac = 0
	case frac > 1:
		frac = 1
	}
	return i, float32(frac), true
}
