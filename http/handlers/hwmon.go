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
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Igorbunow/txgbe/hwmon"
	"github.com/Igorbunow/txgbe/middleware/logging"
)

// HwmonHandler handles GET /hwmon/{device}/{attr} requests, serving the
// attribute file contents the way a sysfs read would.
func HwmonHandler(host *hwmon.Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L()
		ctx := r.Context()

		name := r.PathValue("device")
		attr := r.PathValue("attr")

		dev, ok := host.Device(name)
		if !ok {
			http.Error(w, "unknown hwmon device", http.StatusNotFound)
			return
		}

		out, err := dev.ReadFile(attr)
		if err != nil {
			if errors.Is(err, hwmon.ErrNotFound) {
				http.Error(w, "unknown attribute", http.StatusNotFound)
				return
			}
			log.Error("failed to read hwmon attribute",
				zap.String("device", name),
				zap.String("attr", attr),
				zap.Error(err),
				zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, out)
	}
}
