package db

import (
	"errors"
	"testing"
)

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("server selection timeout")
	err := &Error{Op: OpFind, Err: cause}

	if err.Error() != "find: server selection timeout" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(cause) = false")
	}
}
