// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"
)

// Entry records one artifact of a manifest.
type Entry struct {
	Name   string `yaml:"name"`
	Size   int    `yaml:"size"`
	BLAKE3 string `yaml:"blake3"`
}

// Manifest lists the artifacts of one generation run with their digests.
type Manifest struct {
	Program string  `yaml:"program"`
	Target  string  `yaml:"target"`
	Files   []Entry `yaml:"files"`
}

// Digest returns the hex BLAKE3-256 digest of content.
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// NewManifest describes files.
func NewManifest(program, target string, files []File) *Manifest {
	m := &Manifest{Program: program, Target: target}
	for _, f := range files {
		m.Files = append(m.Files, Entry{Name: f.Name, Size: len(f.Content), BLAKE3: Digest(f.Content)})
	}
	return m
}

// ManifestName returns the manifest file name for a base name.
func ManifestName(base string) string {
	return base + ".manifest.yaml"
}

// Encode returns the YAML form of m.
func (m *Manifest) Encode() ([]byte, error) {
	return yaml.Marshal(m)
}

// DecodeManifest parses a YAML manifest.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Verify re-reads every listed artifact under dir and compares digests.
func (m *Manifest) Verify(ctx context.Context, w *Writer, dir string) error {
	for _, e := range m.Files {
		data, err := w.Read(ctx, dir, e.Name)
		if err != nil {
			return err
		}
		if got := Digest(data); got != e.BLAKE3 {
			return fmt.Errorf("%s: digest %s, manifest has %s", e.Name, got, e.BLAKE3)
		}
	}
	return nil
}
