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
	"math"
	"testing"
)

func newTestController(temp float32) *TimingController {
	c := &TimingController{readTemp: func() float32 { return temp }}
	cfg := DefaultConfig()
	cfg.TargetFrameTimeMs = 8
	c.Configure(cfg)
	return c
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestControllerStepsDownAfterFiveOverBudget(t *testing.T) {
	c := newTestController(0)

	for i := 0; i < 4; i++ {
		c.OnFrameComplete(12)
		if !near(c.Quality(), 0.5) {
			t.Fatalf("quality moved after %d samples", i+1)
		}
	}
	c.OnFrameComplete(12)
	if !near(c.Quality(), 0.35) || !near(c.Scale(), 0.40) {
		t.Fatalf("after 5th over-budget: quality=%.2f scale=%.2f, want 0.35/0.40", c.Quality(), c.Scale())
	}

	// Counters reset; further over-budget samples accumulate again.
	for i := 0; i < 4; i++ {
		c.OnFrameComplete(12)
	}
	if !near(c.Quality(), 0.35) {
		t.Fatal("counters did not reset after step down")
	}
	c.OnFrameComplete(12)
	if !near(c.Quality(), 0.20) || !near(c.Scale(), 0.30) {
		t.Fatalf("after 10th over-budget: quality=%.2f scale=%.2f, want 0.20/0.30", c.Quality(), c.Scale())
	}
}

func TestControllerClampsAtMinimums(t *testing.T) {
	c := newTestController(0)

	for i := 0; i < 100; i++ {
		c.OnFrameComplete(20)
	}
	if !near(c.Quality(), 0) || !near(c.Scale(), 0.25) {
		t.Fatalf("quality=%.2f scale=%.2f, want clamped 0/0.25", c.Quality(), c.Scale())
	}
}

func TestControllerThermalCritical(t *testing.T) {
	c := newTestController(86)

	c.OnFrameComplete(5)
	if !near(c.Quality(), 0) || !near(c.Scale(), 0.25) {
		t.Fatalf("quality=%.2f scale=%.2f, want snapped 0/0.25", c.Quality(), c.Scale())
	}
	if !c.Throttled() {
		t.Fatal("throttled flag must be set at 86C")
	}
}

func TestControllerThermalThrottleBranch(t *testing.T) {
	c := newTestController(78)

	c.OnFrameComplete(12)
	c.OnFrameComplete(12)
	if !near(c.Quality(), 0.5) {
		t.Fatal("stepped down before 3 consecutive over-budget")
	}
	c.OnFrameComplete(12)
	if !near(c.Quality(), 0.35) || !near(c.Scale(), 0.40) {
		t.Fatalf("quality=%.2f scale=%.2f, want 0.35/0.40 after thermal branch", c.Quality(), c.Scale())
	}
}

func TestControllerThermalProtectionOff(t *testing.T) {
	c := &TimingController{readTemp: func() float32 { return 90 }}
	cfg := DefaultConfig()
	cfg.TargetFrameTimeMs = 8
	cfg.ThermalProtection = false
	c.Configure(cfg)

	for i := 0; i < 4; i++ {
		c.OnFrameComplete(12)
	}
	if c.Throttled() || !near(c.Quality(), 0.5) {
		t.Fatal("temperature branches must be skipped when protection is off")
	}
}

func TestControllerStepsUpSlowly(t *testing.T) {
	c := newTestController(0)

	for i := 0; i < 29; i++ {
		c.OnFrameComplete(4)
	}
	if !near(c.Quality(), 0.5) {
		t.Fatal("stepped up before 30 consecutive under-budget")
	}
	c.OnFrameComplete(4)
	if !near(c.Quality(), 0.55) || !near(c.Scale(), 0.55) {
		t.Fatalf("quality=%.2f scale=%.2f, want 0.55/0.55", c.Quality(), c.Scale())
	}
}

func TestControllerNoStepUpWithoutHeadroom(t *testing.T) {
	c := newTestController(0)

	// Under budget but above 70% of it: no headroom, no ramp.
	for i := 0; i < 40; i++ {
		c.OnFrameComplete(7)
	}
	if !near(c.Quality(), 0.5) {
		t.Fatal("stepped up without average headroom")
	}
}

func TestControllerUnknownTemperature(t *testing.T) {
	c := newTestController(0) // sensor read fails, 0 means unknown

	for i := 0; i < 3; i++ {
		c.OnFrameComplete(12)
	}
	if !near(c.Quality(), 0.5) {
		t.Fatal("unknown temperature must not drive the thermal branch")
	}
	if c.Throttled() {
		t.Fatal("unknown temperature must not throttle")
	}
}

func TestControllerStateSnapshot(t *testing.T) {
	c := newTestController(0)
	c.OnFrameComplete(6)
	c.OnFrameComplete(10)

	s := c.State()
	if !near(s.AvgMs, 8) || !near(s.MinMs, 6) || !near(s.MaxMs, 10) {
		t.Errorf("stats avg/min/max = %.2f/%.2f/%.2f, want 8/6/10", s.AvgMs, s.MinMs, s.MaxMs)
	}
	if !near(s.TargetMs, 8) {
		t.Errorf("target = %.2f", s.TargetMs)
	}
}
