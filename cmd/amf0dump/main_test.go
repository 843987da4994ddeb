package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwuhaolin/amf0kit/configure"
	"github.com/gwuhaolin/amf0kit/container/flv"
	"github.com/gwuhaolin/amf0kit/protocol/amf0"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunRaw(t *testing.T) {
	var data bytes.Buffer
	enc := amf0.NewEncoder(&data)
	require.NoError(t, enc.Encode("connect"))
	require.NoError(t, enc.Encode(1.0))
	require.NoError(t, enc.Encode(map[string]interface{}{"app": "live"}))

	c := &configure.Config{Input: writeFile(t, "in.amf", data.Bytes()), Format: configure.FormatRaw, Output: "json"}
	var out bytes.Buffer
	require.NoError(t, run(c, &out))
	assert.Contains(t, out.String(), "Dumping value 0:\n\"connect\"")
	assert.Contains(t, out.String(), "Dumping value 2:")
	assert.Contains(t, out.String(), `"app": "live"`)

	c.Limit = 1
	out.Reset()
	require.NoError(t, run(c, &out))
	assert.NotContains(t, out.String(), "value 1")
}

func TestRunRawTruncated(t *testing.T) {
	c := &configure.Config{Input: writeFile(t, "in.amf", []byte{0x00, 0x3f}), Format: configure.FormatRaw, Output: "pretty"}
	assert.Error(t, run(c, &bytes.Buffer{}))
}

func TestRunFLV(t *testing.T) {
	var file bytes.Buffer
	w, err := flv.NewWriter(&file, flv.Header{Version: 1, HasAudio: true, HasVideo: true})
	require.NoError(t, err)

	var meta bytes.Buffer
	enc := amf0.NewEncoder(&meta)
	require.NoError(t, enc.Encode(amf0.OnMetaData))
	require.NoError(t, enc.Encode(amf0.ECMAArray{
		{Key: "videocodecid", Value: amf0.Number(flv.VideoH264)},
		{Key: "width", Value: amf0.Number(640)},
	}))
	require.NoError(t, w.WriteTag(&flv.Tag{Type: flv.TagVideo, Data: []byte{0x17, 0x00}}))
	require.NoError(t, w.WriteTag(&flv.Tag{Type: flv.TagScriptDataAMF0, Timestamp: 40, Data: meta.Bytes()}))

	c := &configure.Config{Input: writeFile(t, "in.flv", file.Bytes()), Format: configure.FormatFLV, Output: "yaml"}
	var out bytes.Buffer
	require.NoError(t, run(c, &out))
	assert.Contains(t, out.String(), "# onMetaData at 40ms\n")
	assert.Contains(t, out.String(), "width: 640")

	c.Input = writeFile(t, "bad.flv", []byte("FLX\x01\x05\x00\x00\x00\x09"))
	assert.Equal(t, flv.ErrInvalidSignature, run(c, &out))

	c.Input = filepath.Join(t.TempDir(), "missing.flv")
	assert.Error(t, run(c, &out))
}
