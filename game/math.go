package game

import "github.com/chewxy/math32"

// AbsInt returns the absolute value of a.
func AbsInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// CeilInt32 rounds a float32 up and returns it as an int.
func CeilInt32(v float32) int {
	return int(math32.Ceil(v))
}
