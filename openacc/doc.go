// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package openacc generates OpenACC annotated C++ from graph programs.
//
// Parallel regions are host loops under "#pragma acc parallel loop". Each
// function keeps its graph arrays and property parameters resident in one
// structured data region; buffers declared in the body use unstructured
// enter/exit data.
//
// OpenACC has no atomic compare. Minimum and maximum reductions swap the
// candidate in with atomic capture and retry while they displace a better
// value.
package openacc
