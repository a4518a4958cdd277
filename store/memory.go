/*
Copyright © 2019 the alfpp authors.
This file is part of alfpp.

alfpp is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

alfpp is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with alfpp.  If not, see <http://www.gnu.org/licenses/>.
*/

package store

import (
	"context"
	"sync"

	"github.com/spatialmodel/alfpp"
)

// Memory keeps records in memory.
type Memory struct {
	mu      sync.Mutex
	records []*alfpp.MetricRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return new(Memory) }

// Insert appends r to the store.
func (m *Memory) Insert(ctx context.Context, r *alfpp.MetricRecord) error {
	return m.InsertMany(ctx, []*alfpp.MetricRecord{r})
}

// InsertMany appends rs to the store.
func (m *Memory) InsertMany(_ context.Context, rs []*alfpp.MetricRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rs...)
	return nil
}

// All returns the records in insertion order.
func (m *Memory) All(_ context.Context) ([]*alfpp.MetricRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*alfpp.MetricRecord(nil), m.records...), nil
}

func (m *Memory) Close() error { return nil }
