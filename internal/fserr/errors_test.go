package fserr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{NotFound("list", "/missing"), ErrNotFound},
		{AlreadyExists("create", "/x"), ErrAlreadyExists},
		{InvalidInput("list", "/x", "not a directory"), ErrInvalidInput},
		{IO("read", "/x", errors.New("boom")), ErrIO},
		{Watch("start", "/x", errors.New("too many open files")), ErrWatch},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.kind, tc.err.Error())
		wrapped := fmt.Errorf("outer: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.kind)
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "file not found: /missing", NotFound("list", "/missing").Error())
	assert.Equal(t, "invalid input: /x: not a directory", InvalidInput("list", "/x", "not a directory").Error())
	assert.Equal(t, "watcher error: start /x: boom", Watch("start", "/x", errors.New("boom")).Error())
}

func TestFromOS(t *testing.T) {
	_, err := os.Stat("/path/that/does/not/exist")
	require.Error(t, err)

	classified := FromOS("stat", "/path/that/does/not/exist", err)
	assert.ErrorIs(t, classified, ErrNotFound)
	assert.ErrorIs(t, classified, fs.ErrNotExist)

	var pathErr *PathError
	require.ErrorAs(t, classified, &pathErr)
	assert.Equal(t, "stat", pathErr.Op)

	assert.ErrorIs(t, FromOS("mkdir", "/x", fs.ErrExist), ErrAlreadyExists)
	assert.ErrorIs(t, FromOS("read", "/x", fs.ErrPermission), ErrIO)
	assert.NoError(t, FromOS("read", "/x", nil))
}
