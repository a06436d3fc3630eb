// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats provides a snapshot of time and memory allocation at a given point,
// against which the cost of some subsequent task can be measured.
type PerfStats struct {
	startTime time.Time
	startMem  uint64
	startGc   uint32
}

// NewPerfStats creates a new snapshot of the current amount of memory allocated.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	return &PerfStats{time.Now(), m.TotalAlloc, m.NumGC}
}

// Log logs the difference between the state now and as it was when the
// PerfStats object was created, at debug level.
func (p *PerfStats) Log(task string) {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	log.WithFields(log.Fields{
		"seconds":  time.Since(p.startTime).Seconds(),
		"alloc_mb": (m.TotalAlloc - p.startMem) / 1024 / 1024,
		"gcs":      m.NumGC - p.startGc,
		"heap_mb":  m.Alloc / 1024 / 1024,
	}).Debug(task)
}
