package assert

import "github.com/behold-mycode/komari/kerror"

// Enabled controls whether assertions panic. It mirrors a debug build: tests
// and development builds leave it on, a release binary may turn it off and
// rely on the dispatch layer upholding the preconditions instead.
var Enabled = true

func IsTrue(ok bool, message string, args ...interface{}) {
	if Enabled && !ok {
		panic(kerror.New(message, args...))
	}
}

// NotNil asserts that v is a usable non-nil value.
func NotNil(v interface{}, message string, args ...interface{}) {
	IsTrue(v != nil, message, args...)
}
