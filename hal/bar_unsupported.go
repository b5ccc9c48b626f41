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

//go:build !linux

package hal

import "errors"

// BARRegisters is only available on Linux, where PCI resource files can
// be mapped from sysfs.
type BARRegisters struct{}

func OpenBAR(pciAddr string) (*BARRegisters, error) {
	return nil, errors.New("hal: PCI BAR access requires linux")
}

func (b *BARRegisters) Read32(offset uint32) uint32 { return 0 }

func (b *BARRegisters) Write32(offset uint32, value uint32) {}

func (b *BARRegisters) Close() error { return nil }
