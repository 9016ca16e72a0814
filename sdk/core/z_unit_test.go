// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"math"
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	for _, name := range []string{"pcg64", "pcg32"} {
		f, ok := Factory(name)
		if !ok {
			t.Fatalf("factory %s not found", name)
		}
		c1 := New(f.New(7))
		c2 := New(f.New(7))
		for i := 0; i < 16; i++ {
			if c1.Float64() != c2.Float64() {
				t.Fatalf("[%s] Float64 mismatch at %d", name, i)
			}
			if c1.Uniform(-3, 5) != c2.Uniform(-3, 5) {
				t.Fatalf("[%s] Uniform mismatch at %d", name, i)
			}
		}
	}
}

func TestFactoryUnknown(t *testing.T) {
	if _, ok := Factory("mt19937"); ok {
		t.Fatalf("expected unknown factory")
	}
}

func TestUniformRange(t *testing.T) {
	c := New(Default().New(3))
	for i := 0; i < 10000; i++ {
		v := c.Uniform(-2.5, 1.25)
		if v < -2.5 || v > 1.25 {
			t.Fatalf("uniform out of range: %v", v)
		}
		f := c.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("float64 out of range: %v", f)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	for _, name := range []string{"pcg64", "pcg32"} {
		f, _ := Factory(name)
		c := New(f.New(42))
		c.Float64()
		snap, err := c.Snapshot()
		if err != nil {
			t.Fatalf("[%s] snapshot: %v", name, err)
		}
		want := []float64{c.Float64(), c.Float64(), c.Float64()}

		other := New(f.New(1))
		if err := other.Restore(snap); err != nil {
			t.Fatalf("[%s] restore: %v", name, err)
		}
		for i, w := range want {
			if got := other.Float64(); got != w {
				t.Fatalf("[%s] restored stream diverged at %d: %v != %v", name, i, got, w)
			}
		}
	}
}

func TestPCG32RestoreRejectsBadLength(t *testing.T) {
	r := newPCG32WithSeed(1)
	if err := r.Restore([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short snapshot")
	}
}

func TestNormMoments(t *testing.T) {
	c := New(Default().New(2025))
	const n = 20000
	sum, sq := 0.0, 0.0
	for i := 0; i < n; i++ {
		v := c.Norm()
		sum += v
		sq += v * v
	}
	mean := sum / n
	variance := sq/n - mean*mean
	if math.Abs(mean) > 0.05 || math.Abs(variance-1) > 0.05 {
		t.Fatalf("mean=%v variance=%v", mean, variance)
	}
}
