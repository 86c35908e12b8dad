// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package cuda generates CUDA C++ from graph programs.
//
// The output matches the hip package line for line except for the runtime
// prefix (cudaMalloc, cudaMemcpy, ...) and the kernel<<<grid, block>>>
// launch syntax. The implementation artifact has the .cu extension.
package cuda
