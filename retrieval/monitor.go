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


package retrieval

import "github.com/poiesic/nutrirag/core"

// Monitor observes the stages of a lookup.
type Monitor interface {
	Start(tool, query string, maxResults int)
	AfterQuery(results []core.QueryResult)
	Finish(output string)
}

type noopMonitor struct{}

var _ Monitor = noopMonitor{}

func (noopMonitor) Start(_, _ string, _ int)        {}
func (noopMonitor) AfterQuery(_ []core.QueryResult) {}
func (noopMonitor) Finish(_ string)                 {}
