// Package summarypb encodes and decodes the protocol buffer messages that
// carry audio summaries: Summary, Summary.Value, SummaryMetadata,
// TensorProto and the audio plugin's AudioPluginData.
//
// Only the fields used by audio summaries are modelled. Unknown fields are
// skipped when decoding. Field numbers follow the upstream .proto files so
// the output can be read by any consumer of those schemas.
package summarypb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// DTString is the TensorProto dtype of string tensors.
const DTString int32 = 7

// ErrMalformed is returned when bytes cannot be decoded as the expected message.
var ErrMalformed = errors.New("summarypb: malformed message")

// Summary is a set of tagged values emitted together.
type Summary struct {
	Values []*Value
}

// Value is one tagged tensor with its metadata.
type Value struct {
	Tag      string
	Metadata *SummaryMetadata
	Tensor   *TensorProto
}

// SummaryMetadata tells consumers which plugin owns a value and how to show it.
type SummaryMetadata struct {
	PluginData         *PluginData
	DisplayName        string
	SummaryDescription string
}

// PluginData names the owning plugin and carries its private payload.
type PluginData struct {
	PluginName string
	Content    []byte
}

// TensorProto is a string tensor. Numeric payloads are not modelled.
type TensorProto struct {
	Dtype     int32
	Shape     []int64
	StringVal [][]byte
}

// AudioPluginData is the audio plugin's payload inside PluginData.Content.
type AudioPluginData struct {
	Version  uint32
	Encoding int32
}

// Field numbers.
const (
	summaryValue protowire.Number = 1

	valueTag      protowire.Number = 1
	valueTensor   protowire.Number = 8
	valueMetadata protowire.Number = 9

	metadataPluginData  protowire.Number = 1
	metadataDisplayName protowire.Number = 2
	metadataDescription protowire.Number = 3

	pluginDataName    protowire.Number = 1
	pluginDataContent protowire.Number = 2

	tensorDtype     protowire.Number = 1
	tensorShape     protowire.Number = 2
	tensorStringVal protowire.Number = 8

	shapeDim     protowire.Number = 2
	shapeDimSize protowire.Number = 1

	audioVersion  protowire.Number = 1
	audioEncoding protowire.Number = 2
)

// Marshal encodes the summary in protobuf wire format.
func (s *Summary) Marshal() []byte {
	var b []byte
	for _, v := range s.Values {
		b = appendMessage(b, summaryValue, v.marshal())
	}
	return b
}

func (v *Value) marshal() []byte {
	var b []byte
	b = appendString(b, valueTag, v.Tag)
	if v.Tensor != nil {
		b = appendMessage(b, valueTensor, v.Tensor.marshal())
	}
	if v.Metadata != nil {
		b = appendMessage(b, valueMetadata, v.Metadata.marshal())
	}
	return b
}

func (m *SummaryMetadata) marshal() []byte {
	var b []byte
	if m.PluginData != nil {
		b = appendMessage(b, metadataPluginData, m.PluginData.marshal())
	}
	b = appendString(b, metadataDisplayName, m.DisplayName)
	b = appendString(b, metadataDescription, m.SummaryDescription)
	return b
}

func (p *PluginData) marshal() []byte {
	var b []byte
	b = appendString(b, pluginDataName, p.PluginName)
	if len(p.Content) > 0 {
		b = protowire.AppendTag(b, pluginDataContent, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Content)
	}
	return b
}

func (t *TensorProto) marshal() []byte {
	var b []byte
	if t.Dtype != 0 {
		b = protowire.AppendTag(b, tensorDtype, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(t.Dtype))
	}

	var shape []byte
	for _, d := range t.Shape {
		var dim []byte
		if d != 0 {
			dim = protowire.AppendTag(dim, shapeDimSize, protowire.VarintType)
			dim = protowire.AppendVarint(dim, uint64(d))
		}
		shape = appendMessage(shape, shapeDim, dim)
	}
	b = appendMessage(b, tensorShape, shape)

	for _, s := range t.StringVal {
		b = protowire.AppendTag(b, tensorStringVal, protowire.BytesType)
		b = protowire.AppendBytes(b, s)
	}
	return b
}

// Marshal encodes the plugin payload in protobuf wire format.
func (a *AudioPluginData) Marshal() []byte {
	var b []byte
	if a.Version != 0 {
		b = protowire.AppendTag(b, audioVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.Version))
	}
	if a.Encoding != 0 {
		b = protowire.AppendTag(b, audioEncoding, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.Encoding))
	}
	return b
}

// Unmarshal decodes a Summary from protobuf wire format.
func Unmarshal(b []byte) (*Summary, error) {
	fs, err := fields(b)
	if err != nil {
		return nil, err
	}

	s := &Summary{}
	for _, f := range fs {
		if f.num != summaryValue {
			continue
		}
		raw, err := f.message()
		if err != nil {
			return nil, err
		}
		v, err := unmarshalValue(raw)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", len(s.Values), err)
		}
		s.Values = append(s.Values, v)
	}
	return s, nil
}

func unmarshalValue(b []byte) (*Value, error) {
	fs, err := fields(b)
	if err != nil {
		return nil, err
	}

	v := &Value{}
	for _, f := range fs {
		switch f.num {
		case valueTag:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			v.Tag = string(raw)
		case valueTensor:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			if v.Tensor, err = unmarshalTensor(raw); err != nil {
				return nil, fmt.Errorf("tensor: %w", err)
			}
		case valueMetadata:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			if v.Metadata, err = unmarshalMetadata(raw); err != nil {
				return nil, fmt.Errorf("metadata: %w", err)
			}
		}
	}
	return v, nil
}

func unmarshalMetadata(b []byte) (*SummaryMetadata, error) {
	fs, err := fields(b)
	if err != nil {
		return nil, err
	}

	m := &SummaryMetadata{}
	for _, f := range fs {
		switch f.num {
		case metadataPluginData:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			if m.PluginData, err = unmarshalPluginData(raw); err != nil {
				return nil, fmt.Errorf("plugin data: %w", err)
			}
		case metadataDisplayName:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			m.DisplayName = string(raw)
		case metadataDescription:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			m.SummaryDescription = string(raw)
		}
	}
	return m, nil
}

func unmarshalPluginData(b []byte) (*PluginData, error) {
	fs, err := fields(b)
	if err != nil {
		return nil, err
	}

	p := &PluginData{}
	for _, f := range fs {
		switch f.num {
		case pluginDataName:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			p.PluginName = string(raw)
		case pluginDataContent:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			p.Content = raw
		}
	}
	return p, nil
}

func unmarshalTensor(b []byte) (*TensorProto, error) {
	fs, err := fields(b)
	if err != nil {
		return nil, err
	}

	t := &TensorProto{}
	for _, f := range fs {
		switch f.num {
		case tensorDtype:
			x, err := f.scalar()
			if err != nil {
				return nil, err
			}
			t.Dtype = int32(x)
		case tensorShape:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			if t.Shape, err = unmarshalShape(raw); err != nil {
				return nil, fmt.Errorf("shape: %w", err)
			}
		case tensorStringVal:
			raw, err := f.message()
			if err != nil {
				return nil, err
			}
			t.StringVal = append(t.StringVal, raw)
		}
	}
	return t, nil
}

func unmarshalShape(b []byte) ([]int64, error) {
	fs, err := fields(b)
	if err != nil {
		return nil, err
	}

	shape := []int64{}
	for _, f := range fs {
		if f.num != shapeDim {
			continue
		}
		raw, err := f.message()
		if err != nil {
			return nil, err
		}
		dfs, err := fields(raw)
		if err != nil {
			return nil, err
		}
		var size int64
		for _, df := range dfs {
			if df.num != shapeDimSize {
				continue
			}
			x, err := df.scalar()
			if err != nil {
				return nil, err
			}
			size = int64(x)
		}
		shape = append(shape, size)
	}
	return shape, nil
}

// UnmarshalAudioPluginData decodes the audio plugin payload.
func UnmarshalAudioPluginData(b []byte) (*AudioPluginData, error) {
	fs, err := fields(b)
	if err != nil {
		return nil, err
	}

	a := &AudioPluginData{}
	for _, f := range fs {
		switch f.num {
		case audioVersion:
			x, err := f.scalar()
			if err != nil {
				return nil, err
			}
			a.Version = uint32(x)
		case audioEncoding:
			x, err := f.scalar()
			if err != nil {
				return nil, err
			}
			a.Encoding = int32(x)
		}
	}
	return a, nil
}

// field is one decoded key/value pair of a message.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	raw    []byte
	varint uint64
}

func (f field) message() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, fmt.Errorf("%w: field %d has wire type %d, want bytes", ErrMalformed, f.num, f.typ)
	}
	return f.raw, nil
}

func (f field) scalar() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, fmt.Errorf("%w: field %d has wire type %d, want varint", ErrMalformed, f.num, f.typ)
	}
	return f.varint, nil
}

// fields splits b into its top-level fields.
func fields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
		out = append(out, f)
	}
	return out, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
