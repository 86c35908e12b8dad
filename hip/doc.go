// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hip generates HIP C++ from graph programs.
//
// HIP is AMD's portable GPU runtime. Every parallel region of a program
// becomes a __global__ kernel launched through hipLaunchKernelGGL, and the
// graph arrays a function uses are mirrored in device memory for the
// duration of the call.
//
// # Artifacts
//
// Compile produces an interface (<base>.h, guarded by GENHIP_<BASE>_H) and an
// implementation (<base>.cpp). The implementation holds the device helpers,
// the kernels and one host wrapper per function.
//
// # Usage
//
//	out, err := hip.Compile(ctx, programs.SSSP(), "sssp", hip.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(out.Implementation.String())
//
// # Launch Geometry
//
// Launches over all nodes use numBlocks blocks of numThreads threads, both
// derived from ThreadsPerBlock. Launches over edges or a BFS level size the
// grid from their own count.
package hip
