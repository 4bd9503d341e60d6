// Copyright 2025 Poiesic Systems
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
	"strconv"
)

// FormatNumber renders a number field for display. Whole numbers keep one
// decimal place (105 -> "105.0") and other values use the shortest exact
// decimal form (1234567.5). Magnitudes below 1e-4 or from 1e16 up switch to
// exponent form (1e-05, 1e+20).
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	if abs >= 1e16 || (abs < 1e-4 && v != 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
