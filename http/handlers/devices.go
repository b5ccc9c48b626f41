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

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Igorbunow/txgbe/adapter"
	"github.com/Igorbunow/txgbe/middleware/logging"
)

// DeviceInfo is one managed adapter in the /devices response.
type DeviceInfo struct {
	ID         int    `json:"id"`
	PCIAddress string `json:"pci_address"`
	Model      string `json:"model"`
	LanID      int    `json:"lan_id"`
	Monitoring bool   `json:"monitoring"`
	Hwmon      string `json:"hwmon,omitempty"`
}

// DevicesHandler handles GET /devices requests
func DevicesHandler(registry *adapter.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L()
		ctx := r.Context()

		adapters := registry.List()
		out := make([]DeviceInfo, 0, len(adapters))
		for _, a := range adapters {
			out = append(out, DeviceInfo{
				ID:         a.ID,
				PCIAddress: a.PCIAddress,
				Model:      a.Model,
				LanID:      a.LanID,
				Monitoring: a.Monitoring(),
				Hwmon:      a.HwmonName(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			log.Error("failed to encode devices response", zap.Error(err), zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
		}
	}
}
