// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncplan

import "math"

// TimeOrigin is the reference point shared by every frame offset of a
// plan and its initial time offset: the absolute time of the first
// valid beat at a fixed sample rate. Offsets can only be derived
// through it, so the two outputs never disagree about where zero is.
type TimeOrigin struct {
	seconds    float64
	sampleRate int
}

// NewTimeOrigin returns the origin at seconds into the audio.
func NewTimeOrigin(seconds float64, sampleRate int) TimeOrigin {
	return TimeOrigin{seconds: seconds, sampleRate: sampleRate}
}

// Seconds is the absolute time of the origin.
func (o TimeOrigin) Seconds() float64 { return o.seconds }

// SampleRate is the frame rate of every offset derived from o.
func (o TimeOrigin) SampleRate() int { return o.sampleRate }

// FrameOffset converts seconds after the origin to frames.
func (o TimeOrigin) FrameOffset(relative float64) int64 {
	return int64(math.Round(relative * float64(o.sampleRate)))
}

// InitialTimeOffset is the whole-track shift, in frames, that moves the
// origin to time zero: -round(origin * sampleRate).
func (o TimeOrigin) InitialTimeOffset() int64 {
	return -o.FrameOffset(o.seconds)
}

// Absolute converts a frame offset relative to the origin back to an
// absolute time in seconds.
func (o TimeOrigin) Absolute(frameOffset int64) float64 {
	return o.seconds + float64(frameOffset)/float64(o.sampleRate)
}

// AbsoluteFrame is the frame position, in the unshifted track, of a
// frame offset relative to the origin.
func (o TimeOrigin) AbsoluteFrame(frameOffset int64) int64 {
	return frameOffset - o.InitialTimeOffset()
}
