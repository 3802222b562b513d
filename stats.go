/*
Copyright 2025 The FrameGen Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package framegen

import (
	"bytes"
	"fmt"
	"math"
	"sync/atomic"
)

// PerfStats aggregates observable engine side effects. All fields are
// written from the present path and read from anywhere, so everything is
// atomic; float32 values are stored as their bit patterns.
type PerfStats struct {
	presentMs  atomic.Uint32
	totalMs    atomic.Uint32
	gpuTempC   atomic.Uint32
	effFPS     atomic.Uint32

	framesGenerated atomic.Uint64
	framesDropped   atomic.Uint64
}

// StatsSnapshot is the exported point-in-time view.
type StatsSnapshot struct {
	PresentMs       float32
	TotalMs         float32
	GPUTempC        float32
	EffectiveFPS    float32
	TotalPresents   uint64
	DoubledPresents uint64
	FramesGenerated uint64
	FramesDropped   uint64
}

func storeFloat(a *atomic.Uint32, v float32) {
	a.Store(math.Float32bits(v))
}

func loadFloat(a *atomic.Uint32) float32 {
	return math.Float32frombits(a.Load())
}

func (s *PerfStats) observePresent(frameMs, tempC float32) {
	storeFloat(&s.presentMs, frameMs)
	storeFloat(&s.totalMs, frameMs)
	storeFloat(&s.gpuTempC, tempC)
	if frameMs > 0 {
		storeFloat(&s.effFPS, 1000/frameMs)
	}
}

// Stats returns a snapshot of the engine counters and timings.
func Stats() StatsSnapshot {
	return StatsSnapshot{
		PresentMs:       loadFloat(&layer.stats.presentMs),
		TotalMs:         loadFloat(&layer.stats.totalMs),
		GPUTempC:        loadFloat(&layer.stats.gpuTempC),
		EffectiveFPS:    loadFloat(&layer.stats.effFPS),
		TotalPresents:   layer.totalFrames.Load(),
		DoubledPresents: layer.totalDoubled.Load(),
		FramesGenerated: layer.stats.framesGenerated.Load(),
		FramesDropped:   layer.stats.framesDropped.Load(),
	}
}

// OverlayText is a one-line formatted view for on-screen overlays.
func (s StatsSnapshot) OverlayText() string {
	return fmt.Sprintf("%.1f fps | %.2f ms | %d/%d doubled | %.0fC",
		s.EffectiveFPS, s.TotalMs, s.DoubledPresents, s.TotalPresents, s.GPUTempC)
}

func (s StatsSnapshot) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")
	buff.WriteString(fmt.Sprintf("\"PresentMs\": %.2f,", s.PresentMs))
	buff.WriteString(fmt.Sprintf("\"TotalMs\": %.2f,", s.TotalMs))
	buff.WriteString(fmt.Sprintf("\"GPUTempC\": %.1f,", s.GPUTempC))
	buff.WriteString(fmt.Sprintf("\"EffectiveFPS\": %.1f,", s.EffectiveFPS))
	buff.WriteString(fmt.Sprintf("\"TotalPresents\": %d,", s.TotalPresents))
	buff.WriteString(fmt.Sprintf("\"DoubledPresents\": %d,", s.DoubledPresents))
	buff.WriteString(fmt.Sprintf("\"FramesGenerated\": %d,", s.FramesGenerated))
	buff.WriteString(fmt.Sprintf("\"FramesDropped\": %d", s.FramesDropped))
	buff.WriteString("}")
	return buff.Bytes(), nil
}
