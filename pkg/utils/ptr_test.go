// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	s := "standup"
	p := Ptr(s)
	if p == nil || *p != s {
		t.Fatalf("expected pointer to %q, got %v", s, p)
	}
	s = "changed"
	if *p != "standup" {
		t.Error("pointer should not alias the original variable")
	}
}

func TestValue(t *testing.T) {
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	if got := Value(Ptr(start)); !got.Equal(start) {
		t.Errorf("expected %v, got %v", start, got)
	}
	if got := Value[time.Time](nil); !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
	if got := Value[float64](nil); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := Value(Ptr(5.5)); got != 5.5 {
		t.Errorf("expected 5.5, got %v", got)
	}
}
