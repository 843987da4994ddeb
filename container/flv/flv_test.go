package flv

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwuhaolin/amf0kit/protocol/amf0"
)

func script(t *testing.T, values ...interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := amf0.NewEncoder(&buf)
	for _, v := range values {
		require.NoError(t, enc.Encode(v))
	}
	return buf.Bytes()
}

func TestHeader(t *testing.T) {
	h := Header{Version: 1, HasAudio: true, HasVideo: true}
	b := h.Bytes()
	assert.Equal(t, []byte{0x46, 0x4c, 0x56, 0x01, 0x05, 0x00, 0x00, 0x00, 0x09}, b)

	got, n, err := ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, h, got)

	h.Extra = []byte{0xaa}
	got, n, err = ParseHeader(h.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, h, got)

	_, _, err = ParseHeader([]byte("FLX\x01\x05\x00\x00\x00\x09"))
	assert.Equal(t, ErrInvalidSignature, err)

	_, _, err = ParseHeader([]byte("FLV"))
	assert.Equal(t, ErrShortHeader, err)

	_, _, err = ParseHeader([]byte("FLV\x01\x05\x00\x00\x00\x02"))
	assert.Error(t, err)
}

func TestReadWriteTags(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Header{Version: 1, HasVideo: true})
	require.NoError(t, err)

	meta := script(t, amf0.SetDataFrame, amf0.OnMetaData, amf0.ECMAArray{{Key: "width", Value: amf0.Number(640)}})
	require.NoError(t, w.WriteTag(&Tag{Type: TagScriptDataAMF0, Data: meta}))
	require.NoError(t, w.WriteTag(&Tag{Type: TagVideo, Timestamp: 0x01020304, Data: []byte{0x17, 0x01}}))

	r := NewReader(&buf)
	h, err := r.Header()
	require.NoError(t, err)
	assert.True(t, h.HasVideo)
	assert.False(t, h.HasAudio)

	tag, err := r.ReadTag()
	require.NoError(t, err)
	assert.True(t, tag.IsScript())
	// stored script data carries no @setDataFrame
	assert.Equal(t, script(t, amf0.OnMetaData, amf0.ECMAArray{{Key: "width", Value: amf0.Number(640)}}), tag.Data)

	tag, err = r.ReadTag()
	require.NoError(t, err)
	assert.Equal(t, uint8(TagVideo), tag.Type)
	assert.Equal(t, uint32(0x01020304), tag.Timestamp)
	assert.Equal(t, []byte{0x17, 0x01}, tag.Data)

	_, err = r.ReadTag()
	assert.Equal(t, io.EOF, err)
}

func TestReadTruncatedTag(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Header{Version: 1, HasAudio: true})
	require.NoError(t, err)
	require.NoError(t, w.WriteTag(&Tag{Type: TagAudio, Data: []byte{0xaf, 0x01, 0x02, 0x03}}))

	data := buf.Bytes()[:buf.Len()-6]
	_, err = NewReader(bytes.NewReader(data)).ReadTag()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = NewReader(bytes.NewReader([]byte("FL"))).ReadTag()
	assert.Equal(t, ErrShortHeader, err)
}

func TestDemuxOnMetaData(t *testing.T) {
	data := script(t, amf0.OnMetaData, amf0.Object{{Key: "width", Value: amf0.Number(1280)}})

	s, err := DemuxScriptData(data)
	require.NoError(t, err)
	assert.Equal(t, amf0.OnMetaData, s.Name)
	require.NotNil(t, s.OnMetaData)
	require.NotNil(t, s.OnMetaData.Width)
	assert.Equal(t, 1280.0, *s.OnMetaData.Width)
	assert.Nil(t, s.OnMetaData.Height)
	assert.Nil(t, s.OnMetaData.AudioCodecID)
	assert.Empty(t, s.OnMetaData.Other)
	assert.Nil(t, s.OnXMPData)
	assert.Nil(t, s.Data)
}

func TestDemuxOnMetaDataFull(t *testing.T) {
	data := script(t, amf0.SetDataFrame, amf0.OnMetaData, amf0.ECMAArray{
		{Key: "duration", Value: amf0.Number(10.5)},
		{Key: "audiocodecid", Value: amf0.Number(SoundAAC)},
		{Key: "videocodecid", Value: amf0.Number(0x68766331)},
		{Key: "stereo", Value: amf0.Boolean(true)},
		{Key: "canSeekToEnd", Value: amf0.Null{}},
		{Key: "encoder", Value: amf0.String("Lavf58")},
		{Key: "videoTrackIdInfoMap", Value: amf0.Object{{Key: "1", Value: amf0.Object{}}}},
	})

	s, err := DemuxScriptData(data)
	require.NoError(t, err)
	m := s.OnMetaData
	require.NotNil(t, m)

	require.NotNil(t, m.Duration)
	assert.Equal(t, 10.5, *m.Duration)
	require.NotNil(t, m.AudioCodecID)
	assert.False(t, m.AudioCodecID.IsFourCC())
	assert.Equal(t, "aac", m.AudioCodecID.AudioName())
	require.NotNil(t, m.VideoCodecID)
	assert.True(t, m.VideoCodecID.IsFourCC())
	assert.Equal(t, "hvc1", m.VideoCodecID.VideoName())
	require.NotNil(t, m.Stereo)
	assert.True(t, *m.Stereo)
	assert.Nil(t, m.CanSeekToEnd)
	assert.Equal(t, amf0.Object{{Key: "1", Value: amf0.Object{}}}, m.VideoTrackIDInfoMap)
	assert.Equal(t, amf0.Object{{Key: "encoder", Value: amf0.String("Lavf58")}}, m.Other)
}

func TestDemuxOnXMPData(t *testing.T) {
	data := script(t, amf0.OnXMPData, amf0.Object{
		{Key: "liveXML", Value: amf0.String("<x:xmpmeta/>")},
		{Key: "extra", Value: amf0.Boolean(false)},
	})

	s, err := DemuxScriptData(data)
	require.NoError(t, err)
	require.NotNil(t, s.OnXMPData)
	require.NotNil(t, s.OnXMPData.LiveXML)
	assert.Equal(t, "<x:xmpmeta/>", *s.OnXMPData.LiveXML)
	assert.Equal(t, amf0.Object{{Key: "extra", Value: amf0.Boolean(false)}}, s.OnXMPData.Other)
}

func TestDemuxOtherScript(t *testing.T) {
	data := script(t, "onCuePoint", amf0.Object{{Key: "name", Value: amf0.String("cue")}}, 3.0)

	s, err := DemuxScriptData(data)
	require.NoError(t, err)
	assert.Equal(t, "onCuePoint", s.Name)
	assert.Nil(t, s.OnMetaData)
	assert.Equal(t, []amf0.Value{
		amf0.Object{{Key: "name", Value: amf0.String("cue")}},
		amf0.Number(3),
	}, s.Data)

	out, err := amf0.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestScriptDataRoundTrip(t *testing.T) {
	width, rate := 1920.0, 30.0
	in := ScriptData{
		Name: amf0.OnMetaData,
		OnMetaData: &OnMetaData{
			Width:     &width,
			FrameRate: &rate,
			Other:     amf0.Object{{Key: "encoder", Value: amf0.String("x")}},
		},
	}
	data, err := amf0.Marshal(in)
	require.NoError(t, err)

	values, err := amf0.UnmarshalAll(data)
	require.NoError(t, err)
	assert.Equal(t, []amf0.Value{
		amf0.String(amf0.OnMetaData),
		amf0.Object{
			{Key: "framerate", Value: amf0.Number(30)},
			{Key: "width", Value: amf0.Number(1920)},
			{Key: "encoder", Value: amf0.String("x")},
		},
	}, values)

	out, err := DemuxScriptData(data)
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestDemuxScriptErrors(t *testing.T) {
	_, err := DemuxScriptData(script(t, 1.0))
	assert.Error(t, err)

	_, err = DemuxScriptData(script(t, amf0.OnMetaData, "not an object"))
	var unexpected *amf0.UnexpectedTypeError
	assert.ErrorAs(t, err, &unexpected)
}

func TestCodecIDNames(t *testing.T) {
	assert.Equal(t, "h264", CodecID(VideoH264).VideoName())
	assert.Equal(t, "mp3", CodecID(SoundMP3).AudioName())
	assert.Equal(t, "codec(99)", CodecID(99).AudioName())
	assert.Equal(t, "Opus", CodecID(0x4f707573).AudioName())
}
