/*
Copyright 2024 The Siddar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config implements the optional per-repository defaults file
package config

// Defaults are repository-wide default option values, read from a
// `siddar.yaml` file in the repository directory. Command line flags
// always win over these
type Defaults struct {
	// Compression is the default volume compression: tar, gz or bz2
	Compression string `yaml:"compression,omitempty"`
	// PartSize is the default bound on a volume's size in bytes
	PartSize int64 `yaml:"partSize,omitempty"`
}
