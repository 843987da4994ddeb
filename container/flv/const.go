package flv

// Tag definitions
const (
	// TagAudio denotes the audio tag
	TagAudio = 8
	// TagVideo denotes the video tag
	TagVideo = 9
	// TagScriptDataAMF0 denotes the script data AMF0 tag
	TagScriptDataAMF0 = 18
)

// Sound format definitions, as found in audiocodecid
const (
	// SoundMP3 denotes the codec of sound is MP3
	SoundMP3 = 2
	// SoundNellymoser denotes the codec of sound is Nellymoser
	SoundNellymoser = 6
	// SoundALaw denotes the codec of sound is A-law
	SoundALaw = 7
	// SoundMuLaw denotes the codec of sound is Mu-law
	SoundMuLaw = 8
	// SoundAAC denotes the codec of sound is acc
	SoundAAC = 10
	// SoundSpeex denotes the codec of sound is speex
	SoundSpeex = 11
)

// Video codec definitions, as found in videocodecid
const (
	// VideoSorensonH263 denotes the video is Sorenson H.263
	VideoSorensonH263 = 2
	// VideoScreen denotes the video is screen video
	VideoScreen = 3
	// VideoVP6 denotes the video is On2 VP6
	VideoVP6 = 4
	// VideoH264 denotes the video is H.264
	VideoH264 = 7
)

const (
	headerLen    = 9
	tagHeaderLen = 11
	prevSizeLen  = 4
)

var soundNames = map[CodecID]string{
	SoundMP3:        "mp3",
	SoundNellymoser: "nellymoser",
	SoundALaw:       "alaw",
	SoundMuLaw:      "mulaw",
	SoundAAC:        "aac",
	SoundSpeex:      "speex",
}

var videoNames = map[CodecID]string{
	VideoSorensonH263: "h263",
	VideoScreen:       "screen",
	VideoVP6:          "vp6",
	VideoH264:         "h264",
}
