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

package config

import (
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/2e8/siddar/pkg/backup"
	"github.com/2e8/siddar/pkg/backup/volume"
	"github.com/2e8/siddar/pkg/errors"
)

// FileName is the defaults file looked up inside the repository
const FileName = "siddar.yaml"

// Load reads the repository's defaults file if there is one.
// A missing file yields the built-in defaults; a malformed or invalid
// file is an error
func Load(repository string) (*Defaults, error) {
	defaults := &Defaults{
		Compression: volume.Plain.String(),
		PartSize:    backup.DefaultMaxPartSize,
	}
	raw, err := os.ReadFile(filepath.Join(repository, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, &errors.IOError{Path: filepath.Join(repository, FileName), Err: err}
	}
	if err := yaml.Unmarshal(raw, defaults); err != nil {
		return nil, errors.Wrapf(err, "malformed %s", FileName)
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	return defaults, nil
}

// Validate checks the defaults are usable
func (d *Defaults) Validate() error {
	if _, err := volume.ParseCodec(d.Compression); err != nil {
		return err
	}
	if d.PartSize < volume.RecordSize {
		return &errors.PreconditionError{
			Reason: "partSize in " + FileName + " is smaller than one tar record",
		}
	}
	return nil
}
