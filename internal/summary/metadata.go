package summary

import (
	"github.com/maauso/audiosummary/internal/summarypb"
)

const (
	// PluginName identifies audio summaries to consumers.
	PluginName = "audio"
	// PluginDataVersion is the version of the AudioPluginData payload.
	PluginDataVersion = 0
	// TagSuffix is appended to the summary name to form the value tag.
	TagSuffix = "audio_summary"
	// DefaultMaxOutputs is used when Options.MaxOutputs is zero.
	DefaultMaxOutputs = 3
)

// Encoding is the container format of the encoded clips.
// Values match the audio plugin schema.
type Encoding int32

const (
	// EncodingUnknown is the zero value and is never produced by the builder.
	EncodingUnknown Encoding = 0
	// EncodingWAV is RIFF/WAVE with 16-bit PCM samples.
	EncodingWAV Encoding = 11
)

// String returns the lowercase name used in options.
func (e Encoding) String() string {
	switch e {
	case EncodingWAV:
		return "wav"
	default:
		return "unknown"
	}
}

// ParseEncoding resolves the encoding option. The empty string selects WAV.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "wav":
		return EncodingWAV, nil
	default:
		return EncodingUnknown, &UnsupportedEncodingError{Requested: s}
	}
}

// Metadata describes how to decode and present a record.
type Metadata struct {
	DisplayName string
	// Description is Markdown.
	Description string
	Encoding    Encoding
}

// Proto returns the wire form of the metadata.
func (m Metadata) Proto() *summarypb.SummaryMetadata {
	content := (&summarypb.AudioPluginData{
		Version:  PluginDataVersion,
		Encoding: int32(m.Encoding),
	}).Marshal()

	return &summarypb.SummaryMetadata{
		PluginData: &summarypb.PluginData{
			PluginName: PluginName,
			Content:    content,
		},
		DisplayName:        m.DisplayName,
		SummaryDescription: m.Description,
	}
}

// MetadataFromProto recovers metadata written by Proto.
func MetadataFromProto(pb *summarypb.SummaryMetadata) (Metadata, error) {
	if pb == nil || pb.PluginData == nil || pb.PluginData.PluginName != PluginName {
		return Metadata{}, ErrNotAudio
	}
	data, err := summarypb.UnmarshalAudioPluginData(pb.PluginData.Content)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		DisplayName: pb.DisplayName,
		Description: pb.SummaryDescription,
		Encoding:    Encoding(data.Encoding),
	}, nil
}
