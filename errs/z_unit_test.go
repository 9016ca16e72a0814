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

package errs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestWrapKeepsLevelOfSentinel(t *testing.T) {
	sentinel := NewWarn("bad input")
	err := WrapWithExtra(sentinel, "lag must >= 1", "lag=0")
	if err.ErrLv != Warn {
		t.Fatalf("expected warn level, got %s", ErrLv(err.ErrLv))
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is should match sentinel")
	}
	msg := err.Error()
	if !strings.Contains(msg, "lag must >= 1") || !strings.Contains(msg, "extra: lag=0") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestWrapForeignErrorIsFatal(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, "read trace")
	if err.ErrLv != Fatal {
		t.Fatalf("expected fatal, got %s", ErrLv(err.ErrLv))
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("cause lost")
	}
}

func TestLevel(t *testing.T) {
	if Level(nil) != None {
		t.Fatalf("nil should be None")
	}
	if Level(io.EOF) != Fatal {
		t.Fatalf("foreign error should be Fatal")
	}
	if Level(Warnf("w=%v", -1.0)) != Warn {
		t.Fatalf("warn lost")
	}
}
