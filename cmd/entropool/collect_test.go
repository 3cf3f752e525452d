package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCollection(t *testing.T) {
	dir := t.TempDir()
	data := []byte{0x00, 0xab, 0xff}

	hexPath := filepath.Join(dir, "out.hex")
	require.NoError(t, writeCollection(hexPath, "hex", data))
	got, err := os.ReadFile(hexPath)
	require.NoError(t, err)
	assert.Equal(t, "00abff\n", string(got))

	rawPath := filepath.Join(dir, "out.bin")
	require.NoError(t, writeCollection(rawPath, "raw", data))
	got, err = os.ReadFile(rawPath)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWriteCollectionBadPath(t *testing.T) {
	err := writeCollection(filepath.Join(t.TempDir(), "missing", "out"), "raw", []byte{1})
	assert.Error(t, err)
}
