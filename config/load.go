// Copyright 2026 The JazzPetri Authors
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

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a YAML payload. Fields missing from the
// payload keep the values of Default.
func Parse(data []byte) (Simulation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Simulation{}, fmt.Errorf("config: payload is empty")
	}

	sim := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sim); err != nil {
		return Simulation{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := sim.Validate(); err != nil {
		return Simulation{}, err
	}
	return sim, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Simulation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Simulation{}, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Simulation{}, fmt.Errorf("config: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Simulation{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	sim, err := Parse(data)
	if err != nil {
		return Simulation{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return sim, nil
}
