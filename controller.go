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
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/framegen/framegen/internal/container"
)

const (
	historySize = 60

	tempCritical = 85.0
	tempThrottle = 75.0

	qualityStepDown = 0.15
	qualityStepUp   = 0.05
	scaleStepDown   = 0.10
	scaleStepUp     = 0.05

	scaleMin = 0.25
	scaleMax = 0.75
)

// TimingController watches per-present latency against a frame-time
// budget and a thermal sensor, and emits a quality scalar plus an
// engage/bypass decision. It never issues graphics calls itself.
//
// Ramp-down is fast and ramp-up slow on purpose: over-correction in
// either direction is a worse user experience than a brief dip.
type TimingController struct {
	mtx sync.Mutex

	history *container.Ring[float32]

	targetMs float32
	quality  float32
	scale    float32

	avgMs float32
	minMs float32
	maxMs float32

	overBudget  int
	underBudget int

	thermalProtection bool
	throttled         bool
	lastTempC         float32
	lastTempRead      time.Time

	// overridable sensor read, for hosts without sysfs thermal zones
	readTemp func() float32
}

// ControllerState is a point-in-time snapshot for stats and overlays.
type ControllerState struct {
	TargetMs  float32
	Quality   float32
	Scale     float32
	AvgMs     float32
	MinMs     float32
	MaxMs     float32
	Throttled bool
	TempC     float32
}

func (s ControllerState) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")
	buff.WriteString(fmt.Sprintf("\"TargetMs\": %.2f,", s.TargetMs))
	buff.WriteString(fmt.Sprintf("\"Quality\": %.2f,", s.Quality))
	buff.WriteString(fmt.Sprintf("\"Scale\": %.2f,", s.Scale))
	buff.WriteString(fmt.Sprintf("\"AvgMs\": %.2f,", s.AvgMs))
	buff.WriteString(fmt.Sprintf("\"MinMs\": %.2f,", s.MinMs))
	buff.WriteString(fmt.Sprintf("\"MaxMs\": %.2f,", s.MaxMs))
	buff.WriteString(fmt.Sprintf("\"Throttled\": %t,", s.Throttled))
	buff.WriteString(fmt.Sprintf("\"TempC\": %.1f", s.TempC))
	buff.WriteString("}")
	return buff.Bytes(), nil
}

// Configure seeds the controller from a validated config.
func (c *TimingController) Configure(cfg Config) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.history == nil {
		c.history = container.NewRing[float32](historySize)
	} else {
		c.history.Reset()
	}
	c.targetMs = cfg.TargetFrameTimeMs
	c.quality = cfg.Quality
	c.scale = cfg.ModelScale
	c.thermalProtection = cfg.ThermalProtection
	c.throttled = false
	c.overBudget = 0
	c.underBudget = 0

	layer.logger.IPrintf("controller: budget=%.2fms scale=%.2f quality=%.2f",
		c.targetMs, c.scale, c.quality)
}

// OnFrameComplete records one present-cycle latency sample and applies
// the adjustment rules. Returns true when the sample was on budget.
func (c *TimingController) OnFrameComplete(frameTimeMs float32) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.history == nil {
		c.history = container.NewRing[float32](historySize)
	}
	c.history.Push(frameTimeMs)
	c.recomputeStats()

	overBudget := frameTimeMs > c.targetMs
	if overBudget {
		c.overBudget++
		c.underBudget = 0
	} else {
		c.underBudget++
		c.overBudget = 0
	}

	if c.thermalProtection {
		temp := c.sampleTemperature()

		if temp >= tempCritical {
			c.scale = scaleMin
			c.quality = 0
			c.throttled = true
			layer.logger.WPrintf("thermal critical (%.1fC), minimum quality", temp)
			return false
		}

		if temp >= tempThrottle && c.overBudget >= 3 {
			c.stepDown()
			return false
		}
	}

	if c.overBudget >= 5 {
		c.stepDown()
		return false
	}

	if c.underBudget >= 30 && c.avgMs < c.targetMs*0.7 {
		c.stepUp()
	}

	return !overBudget
}

// Throttled reports whether the engine should bypass synthesis. Once
// throttled, the sensor is re-read (at most once a second) so the engine
// can resume after the device cools below the throttle threshold.
func (c *TimingController) Throttled() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.throttled {
		return false
	}
	if time.Since(c.lastTempRead) >= time.Second {
		if temp := c.sampleTemperature(); temp > 0 && temp < tempThrottle {
			c.throttled = false
			c.stepUp()
			layer.logger.IPrintf("thermal recovered (%.1fC)", temp)
		}
	}
	return c.throttled
}

func (c *TimingController) Quality() float32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.quality
}

func (c *TimingController) Scale() float32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.scale
}

func (c *TimingController) Temperature() float32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.lastTempC
}

func (c *TimingController) State() ControllerState {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return ControllerState{
		TargetMs:  c.targetMs,
		Quality:   c.quality,
		Scale:     c.scale,
		AvgMs:     c.avgMs,
		MinMs:     c.minMs,
		MaxMs:     c.maxMs,
		Throttled: c.throttled,
		TempC:     c.lastTempC,
	}
}

func (c *TimingController) recomputeStats() {
	var sum, maxMs float32
	minMs := float32(999)
	c.history.Do(func(v float32) {
		sum += v
		if v > maxMs {
			maxMs = v
		}
		if v < minMs {
			minMs = v
		}
	})
	c.avgMs = sum / float32(c.history.Len())
	c.minMs = minMs
	c.maxMs = maxMs
}

func (c *TimingController) stepDown() {
	c.scale = max(scaleMin, c.scale-scaleStepDown)
	c.quality = max(0, c.quality-qualityStepDown)
	c.overBudget = 0
	c.underBudget = 0
	layer.logger.IPrintf("quality down: scale=%.2f quality=%.2f (avg=%.2fms, budget=%.2fms)",
		c.scale, c.quality, c.avgMs, c.targetMs)
}

func (c *TimingController) stepUp() {
	c.scale = min(scaleMax, c.scale+scaleStepUp)
	c.quality = min(1, c.quality+qualityStepUp)
	c.overBudget = 0
	c.underBudget = 0
	layer.logger.IPrintf("quality up: scale=%.2f quality=%.2f (avg=%.2fms, budget=%.2fms)",
		c.scale, c.quality, c.avgMs, c.targetMs)
}

// sampleTemperature reads the platform sensor. 0 means unknown; a
// failed read never drives adjustment. Callers hold c.mtx.
func (c *TimingController) sampleTemperature() float32 {
	read := c.readTemp
	if read == nil {
		read = readPlatformTemperature
	}
	temp := read()
	c.lastTempC = temp
	c.lastTempRead = time.Now()
	return temp
}

// Preferred fixed thermal-zone paths; the GPU zone index varies by SoC.
var thermalZonePaths = []string{
	"/sys/class/thermal/thermal_zone0/temp",
	"/sys/class/thermal/thermal_zone1/temp",
	"/sys/class/thermal/thermal_zone3/temp",
	"/sys/devices/virtual/thermal/thermal_zone0/temp",
}

func readPlatformTemperature() float32 {
	if temps, err := host.SensorsTemperatures(); err == nil {
		for _, t := range temps {
			if strings.Contains(strings.ToLower(t.SensorKey), "gpu") && t.Temperature > 0 {
				return float32(t.Temperature)
			}
		}
	}

	for _, path := range thermalZonePaths {
		if temp := readThermalZone(path); temp > 0 {
			return temp
		}
	}

	if entries, err := os.ReadDir("/sys/class/thermal"); err == nil {
		for _, entry := range entries {
			base := "/sys/class/thermal/" + entry.Name()
			kind, err := os.ReadFile(base + "/type")
			if err != nil {
				continue
			}
			if strings.Contains(strings.ToLower(string(kind)), "gpu") {
				if temp := readThermalZone(base + "/temp"); temp > 0 {
					return temp
				}
			}
		}
	}

	return 0
}

func readThermalZone(path string) float32 {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1
	}
	var raw int
	if _, err := fmt.Sscanf(string(data), "%d", &raw); err != nil {
		return -1
	}
	// millidegrees on most platforms
	if raw > 1000 {
		return float32(raw) / 1000
	}
	return float32(raw)
}
