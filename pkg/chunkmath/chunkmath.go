// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package chunkmath

// AlignDown will align down the x by align. For example:
// AlignDown(1, 2) = 0
// AlignDown(29, 14) = 28
func AlignDown(x int64, align int64) int64 {
	return x / align * align
}

// CountChunks returns the number of chunks of chunkSize needed to cover size.
// The last chunk may be short.
func CountChunks(size, chunkSize int64) int64 {
	if size == 0 {
		return 0
	}
	return (size + chunkSize - 1) / chunkSize
}

// Max64 returns the larger of x or y.
func Max64(x, y int64) int64 {
	if x > y {
		return x
	}
	return y
}

// Min64 returns the smaller of x or y.
func Min64(x, y int64) int64 {
	if x < y {
		return x
	}
	return y
}

// Min returns the smaller of x or y.
func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}
