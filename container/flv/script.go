package flv

import (
	"encoding/binary"
	"fmt"

	"github.com/gwuhaolin/amf0kit/protocol/amf0"
)

// CodecID is the audiocodecid or videocodecid of onMetaData. Values up
// to 255 are legacy codec numbers, larger ones are enhanced FourCCs.
type CodecID uint32

// IsFourCC reports whether c is an enhanced FourCC
func (c CodecID) IsFourCC() bool { return c > 0xff }

// FourCC returns the four characters of an enhanced codec id
func (c CodecID) FourCC() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return string(b[:])
}

// AudioName names c as an audio codec
func (c CodecID) AudioName() string {
	return c.name(soundNames)
}

// VideoName names c as a video codec
func (c CodecID) VideoName() string {
	return c.name(videoNames)
}

func (c CodecID) name(legacy map[CodecID]string) string {
	if c.IsFourCC() {
		return c.FourCC()
	}
	if n, ok := legacy[c]; ok {
		return n
	}
	return fmt.Sprintf("codec(%d)", uint32(c))
}

// OnMetaData is the body of an onMetaData script tag. Every field is
// optional, unknown keys are kept in Other.
type OnMetaData struct {
	AudioCodecID    *CodecID `amf0:"audiocodecid,omitempty"`
	AudioDataRate   *float64 `amf0:"audiodatarate,omitempty"`
	AudioDelay      *float64 `amf0:"audiodelay,omitempty"`
	AudioSampleRate *float64 `amf0:"audiosamplerate,omitempty"`
	AudioSampleSize *float64 `amf0:"audiosamplesize,omitempty"`
	CanSeekToEnd    *bool    `amf0:"canSeekToEnd,omitempty"`
	CreationDate    *string  `amf0:"creationdate,omitempty"`
	Duration        *float64 `amf0:"duration,omitempty"`
	FileSize        *float64 `amf0:"filesize,omitempty"`
	FrameRate       *float64 `amf0:"framerate,omitempty"`
	Height          *float64 `amf0:"height,omitempty"`
	Stereo          *bool    `amf0:"stereo,omitempty"`
	VideoCodecID    *CodecID `amf0:"videocodecid,omitempty"`
	VideoDataRate   *float64 `amf0:"videodatarate,omitempty"`
	Width           *float64 `amf0:"width,omitempty"`

	// track maps are keyed by track id
	AudioTrackIDInfoMap amf0.Object `amf0:"audioTrackIdInfoMap,omitempty"`
	VideoTrackIDInfoMap amf0.Object `amf0:"videoTrackIdInfoMap,omitempty"`

	Other amf0.Object `amf0:",rest"`
}

// OnXMPData is the body of an onXMPData script tag
type OnXMPData struct {
	LiveXML *string     `amf0:"liveXML,omitempty"`
	Other   amf0.Object `amf0:",rest"`
}

// ScriptData is one decoded script tag: a name followed by its values.
// Exactly one of OnMetaData, OnXMPData and Data is set.
type ScriptData struct {
	Name       string
	OnMetaData *OnMetaData
	OnXMPData  *OnXMPData
	// Data holds the values of any other script
	Data []amf0.Value
}

// DemuxScriptData decodes the body of a script tag, with or without a
// leading @setDataFrame
func DemuxScriptData(p []byte) (*ScriptData, error) {
	p, err := amf0.MetaDataReform(p, amf0.DEL)
	if err != nil {
		return nil, err
	}
	var s ScriptData
	if err := amf0.Unmarshal(p, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UnmarshalAMF0 reads the name then the rest of the input
func (s *ScriptData) UnmarshalAMF0(d *amf0.Decoder) error {
	name, err := d.DecodeString()
	if err != nil {
		return err
	}
	*s = ScriptData{Name: name}

	switch name {
	case amf0.OnMetaData:
		s.OnMetaData = new(OnMetaData)
		return d.Decode(s.OnMetaData)
	case amf0.OnXMPData:
		s.OnXMPData = new(OnXMPData)
		return d.Decode(s.OnXMPData)
	}
	var rest amf0.MultiValue[[]amf0.Value]
	if err := d.Decode(&rest); err != nil {
		return err
	}
	s.Data = rest.Values
	return nil
}

// MarshalAMF0 writes the name followed by the body
func (s ScriptData) MarshalAMF0(e *amf0.Encoder) error {
	if err := e.EncodeString(s.Name); err != nil {
		return err
	}
	switch {
	case s.OnMetaData != nil:
		return e.Encode(s.OnMetaData)
	case s.OnXMPData != nil:
		return e.Encode(s.OnXMPData)
	}
	return e.Encode(amf0.MultiValue[[]amf0.Value]{Values: s.Data})
}
