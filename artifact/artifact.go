// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package artifact writes generated artifacts through an afs storage
// service, so the output location may be a local directory or any URL afs
// understands. A failed write removes whatever it already wrote.
package artifact

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
	"github.com/DemoGo/StarPlatWorkingBranch/internal/ctxlog"
)

// fileMode is the permission of written artifacts.
const fileMode = 0o644

// File is one named artifact.
type File struct {
	Name    string
	Content []byte
}

// Writer stores artifacts.
type Writer struct {
	fs afs.Service
}

// NewWriter returns a writer backed by the default afs service.
func NewWriter() *Writer {
	return &Writer{fs: afs.New()}
}

// Write stores files under dir in order. If any file cannot be written,
// the files already written are deleted and a codegen.ErrIO error is
// returned.
func (w *Writer) Write(ctx context.Context, dir string, files []File) error {
	logger := ctxlog.FromContext(ctx)
	written := make([]string, 0, len(files))
	for _, f := range files {
		location := url.Join(dir, f.Name)
		if err := w.fs.Upload(ctx, location, fileMode, bytes.NewReader(f.Content)); err != nil {
			w.remove(ctx, written)
			return codegen.Errorf(codegen.ErrIO, "write %s: %v", location, err)
		}
		logger.Debug("artifact written", "location", location, "bytes", len(f.Content))
		written = append(written, location)
	}
	return nil
}

// Read returns the content of the artifact name under dir.
func (w *Writer) Read(ctx context.Context, dir, name string) ([]byte, error) {
	location := url.Join(dir, name)
	data, err := w.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

func (w *Writer) remove(ctx context.Context, locations []string) {
	logger := ctxlog.FromContext(ctx)
	for i := len(locations) - 1; i >= 0; i-- {
		if err := w.fs.Delete(ctx, locations[i]); err != nil {
			logger.Warn("cannot remove partial artifact", "location", locations[i], "error", err)
		}
	}
}
