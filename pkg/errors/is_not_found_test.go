package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"Entity NotFound", errors.NotFound("not found"), true},
		{"Generic NotFound", errors.New(errors.CodeNotFound, "gone"), true},
		{"Snapshot NotFound", errors.SnapshotNotFound("latest", nil), true},
		{"Build in progress", errors.BuildInProgress("x"), false},
		{"Internal Error", errors.Internal("internal error"), false},
		{"Wrapped NotFound", errors.Wrap(errors.NotFound("not found"), errors.CodeInternal, "wrapped"), true},
		{"Plain error", fmt.Errorf("plain error"), false},
		{"Nil error", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, errors.IsNotFound(tc.err))
		})
	}
}
