/*
 * Copyright 2025 The txgbe daemon authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hal

import "sync"

// RegisterIO is 32-bit access to an adapter's BAR0 register space.
type RegisterIO interface {
	Read32(offset uint32) uint32
	Write32(offset uint32, value uint32)
}

// MemRegisters is an in-memory RegisterIO backing simulated adapters and
// tests. Unwritten offsets read as zero.
type MemRegisters struct {
	mu   sync.RWMutex
	regs map[uint32]uint32
}

func NewMemRegisters() *MemRegisters {
	return &MemRegisters{regs: make(map[uint32]uint32)}
}

func (m *MemRegisters) Read32(offset uint32) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.regs[offset]
}

func (m *MemRegisters) Write32(offset uint32, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[offset] = value
}
