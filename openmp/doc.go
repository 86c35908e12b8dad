// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package openmp generates OpenMP target offload C++ from graph programs.
package openmp
