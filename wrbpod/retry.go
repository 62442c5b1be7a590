// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 Wrb Works
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wrbpod

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/wrb-works/wrbpod/fault"
)

// RetryPolicy - control of the write retry loop
//
// the zero value retries without bound and without pacing
type RetryPolicy struct {
	Attempts int           // maximum submissions per write, 0 = unlimited
	Limiter  *rate.Limiter // optional pacing between submissions
}

// pace - block until the limiter admits the next submission
func (r RetryPolicy) pace() error {
	if nil == r.Limiter {
		return nil
	}
	reservation := r.Limiter.Reserve()
	if !reservation.OK() {
		return fault.ErrRateLimiting
	}
	time.Sleep(reservation.Delay())
	return nil
}

// exhausted - true when attempt count has reached the bound
func (r RetryPolicy) exhausted(attempts int) bool {
	return r.Attempts > 0 && attempts >= r.Attempts
}
