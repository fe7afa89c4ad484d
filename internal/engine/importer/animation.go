package importer

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/skinrig/internal/engine/anim"
	"github.com/Faultbox/skinrig/pkg/math"
)

// buildClip converts the first animation. It returns nil when the document
// has none or when none of its channels target an imported node.
func (imp *importer) buildClip() (*anim.Clip, error) {
	doc := imp.doc
	if len(doc.Animations) == 0 {
		return nil, nil
	}
	if len(doc.Animations) > 1 {
		imp.log.Debug("only the first animation is imported", zap.Int("animations", len(doc.Animations)))
	}
	ga := doc.Animations[0]

	channels := make(map[uint32]*anim.Channels)
	var duration float64

	for ci, ch := range ga.Channels {
		if ch.Target.Node == nil {
			continue
		}
		ni := *ch.Target.Node
		if _, ok := imp.nodes[ni]; !ok {
			continue
		}
		if ch.Target.Path == gltf.TRSWeights {
			continue
		}
		if int(ch.Sampler) >= len(ga.Samplers) {
			return nil, fmt.Errorf("importer: animation channel %d: sampler %d out of range", ci, ch.Sampler)
		}
		s := ga.Samplers[ch.Sampler]

		times, err := imp.keyTimes(s.Input)
		if err != nil {
			return nil, fmt.Errorf("importer: animation channel %d: %w", ci, err)
		}
		if len(times) == 0 {
			continue
		}
		if last := times[len(times)-1]; last > duration {
			duration = last
		}

		outAcr, err := imp.accessor(s.Output)
		if err != nil {
			return nil, err
		}
		data, err := modeler.ReadAccessor(doc, outAcr, nil)
		if err != nil {
			return nil, fmt.Errorf("importer: animation channel %d output: %w", ci, err)
		}
		cubic := s.Interpolation == gltf.InterpolationCubicSpline

		c := channels[ni]
		if c == nil {
			c = &anim.Channels{}
			channels[ni] = c
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation:
			c.Translation = vecKeys(times, toVec3s(data), cubic)
		case gltf.TRSScale:
			c.Scale = vecKeys(times, toVec3s(data), cubic)
		case gltf.TRSRotation:
			c.Rotation = quatKeys(times, toQuats(data), cubic)
		}
	}

	if len(channels) == 0 {
		return nil, nil
	}

	name := ga.Name
	if name == "" {
		name = "animation_0"
	}
	clip := anim.NewClip(name, duration, TicksPerSecond)
	for ni, c := range channels {
		imp.fillFromRest(ni, c)
		if err := clip.SetChannels(imp.names[ni], *c); err != nil {
			return nil, err
		}
	}
	imp.log.Debug("animation imported",
		zap.String("clip", name),
		zap.Int("nodes", clip.Len()),
		zap.Float64("duration_ms", duration))
	return clip, nil
}

// fillFromRest gives a partially animated node a constant key for each
// missing track, taken from its rest transform.
func (imp *importer) fillFromRest(ni uint32, c *anim.Channels) {
	t, r, s := restTRS(imp.doc.Nodes[ni])
	if len(c.Translation) == 0 {
		c.Translation = anim.VecTrack{{Time: 0, Value: t}}
	}
	if len(c.Rotation) == 0 {
		c.Rotation = anim.QuatTrack{{Time: 0, Value: r}}
	}
	if len(c.Scale) == 0 {
		c.Scale = anim.VecTrack{{Time: 0, Value: s}}
	}
}

// keyTimes reads a sampler input accessor as milliseconds.
func (imp *importer) keyTimes(idx uint32) ([]float64, error) {
	acr, err := imp.accessor(idx)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(imp.doc, acr, nil)
	if err != nil {
		return nil, err
	}
	secs, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: key times are %T", ErrAccessor, data)
	}
	times := make([]float64, len(secs))
	for i, s := range secs {
		times[i] = float64(s) * TicksPerSecond
	}
	return times, nil
}

// keyValue picks the value of key i; cubic spline samples store
// in-tangent, value and out-tangent per key.
func keyValue[V any](values []V, i int, cubic bool) (V, bool) {
	if cubic {
		i = i*3 + 1
	}
	if i >= len(values) {
		var zero V
		return zero, false
	}
	return values[i], true
}

func vecKeys(times []float64, values []math.Vec3, cubic bool) anim.VecTrack {
	track := make(anim.VecTrack, 0, len(times))
	for i, t := range times {
		v, ok := keyValue(values, i, cubic)
		if !ok {
			break
		}
		track = append(track, anim.Key[math.Vec3]{Time: t, Value: v})
	}
	return dedupe(track)
}

func quatKeys(times []float64, values []math.Quat, cubic bool) anim.QuatTrack {
	track := make(anim.QuatTrack, 0, len(times))
	for i, t := range times {
		q, ok := keyValue(values, i, cubic)
		if !ok {
			break
		}
		track = append(track, anim.Key[math.Quat]{Time: t, Value: q.Normalize()})
	}
	return dedupe(track)
}

// dedupe drops keys whose time does not advance, keeping the first.
func dedupe[V any](keys []anim.Key[V]) []anim.Key[V] {
	if len(keys) < 2 {
		return keys
	}
	out := keys[:1]
	for _, k := range keys[1:] {
		if k.Time > out[len(out)-1].Time {
			out = append(out, k)
		}
	}
	return out
}

func toVec3s(data any) []math.Vec3 {
	v, ok := data.([][3]float32)
	if !ok {
		return nil
	}
	out := make([]math.Vec3, len(v))
	for i := range v {
		out[i] = math.Vec3FromArray(v[i])
	}
	return out
}

// toQuats decodes rotation outputs, including normalized integer storage.
func toQuats(data any) []math.Quat {
	var out []math.Quat
	switch v := data.(type) {
	case [][4]float32:
		out = make([]math.Quat, len(v))
		for i := range v {
			out[i] = math.QuatFromArray(v[i])
		}
	case [][4]int8:
		out = make([]math.Quat, len(v))
		for i := range v {
			out[i] = quatFromInts(v[i], 127, true)
		}
	case [][4]uint8:
		out = make([]math.Quat, len(v))
		for i := range v {
			out[i] = quatFromInts(v[i], 255, false)
		}
	case [][4]int16:
		out = make([]math.Quat, len(v))
		for i := range v {
			out[i] = quatFromInts(v[i], 32767, true)
		}
	case [][4]uint16:
		out = make([]math.Quat, len(v))
		for i := range v {
			out[i] = quatFromInts(v[i], 65535, false)
		}
	}
	return out
}

func quatFromInts[T int8 | uint8 | int16 | uint16](c [4]T, scale float32, signed bool) math.Quat {
	var f [4]float32
	for i := range c {
		f[i] = float32(c[i]) / scale
		if signed && f[i] < -1 {
			f[i] = -1
		}
	}
	return math.QuatFromArray(f)
}
