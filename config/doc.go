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


// Package config builds the application configuration.
//
// Values are layered, later sources winning:
//
//	defaults -> TOML file -> .env file -> environment -> command-line flags
//
// The .env file overrides variables already present in the process
// environment. Flags are applied by the caller on the returned Config before
// Validate is called. A Config is built once per process and passed by
// reference to whatever needs it.
package config
