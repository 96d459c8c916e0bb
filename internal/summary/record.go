package summary

import (
	"errors"
	"fmt"

	"github.com/maauso/audiosummary/internal/summarypb"
)

// Row pairs one encoded clip with its label.
type Row struct {
	EncodedAudio []byte
	// Label is UTF-8 Markdown; empty when no label was given.
	Label string
}

// Record is the output of a build: a [k, 2] table of (encoded audio, label)
// rows tagged with the summary name, plus metadata.
type Record struct {
	Tag      string
	Rows     []Row
	Metadata Metadata
}

// Tag returns the value tag for a summary called name.
func Tag(name string) string {
	return name + "/" + TagSuffix
}

// Labels returns the label column.
func (r *Record) Labels() []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Label
	}
	return out
}

// Proto returns the record as a single-value Summary. The tensor is the
// row-major string table [k, 2].
func (r *Record) Proto() *summarypb.Summary {
	vals := make([][]byte, 0, 2*len(r.Rows))
	for _, row := range r.Rows {
		vals = append(vals, row.EncodedAudio, []byte(row.Label))
	}

	return &summarypb.Summary{Values: []*summarypb.Value{{
		Tag:      r.Tag,
		Metadata: r.Metadata.Proto(),
		Tensor: &summarypb.TensorProto{
			Dtype:     summarypb.DTString,
			Shape:     []int64{int64(len(r.Rows)), 2},
			StringVal: vals,
		},
	}}}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *Record) MarshalBinary() ([]byte, error) {
	return r.Proto().Marshal(), nil
}

// RecordsFromProto recovers the audio records held in a summary.
// Values owned by other plugins are skipped.
func RecordsFromProto(s *summarypb.Summary) ([]*Record, error) {
	var out []*Record
	for _, v := range s.Values {
		md, err := MetadataFromProto(v.Metadata)
		if errors.Is(err, ErrNotAudio) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Tag, err)
		}
		if v.Tensor == nil || v.Tensor.Dtype != summarypb.DTString {
			return nil, fmt.Errorf("%s: %w: tensor is not a string tensor", v.Tag, ErrNotAudio)
		}
		n := len(v.Tensor.StringVal)
		if len(v.Tensor.Shape) != 2 || v.Tensor.Shape[1] != 2 || v.Tensor.Shape[0] < 0 ||
			n%2 != 0 || v.Tensor.Shape[0] != int64(n/2) {
			return nil, fmt.Errorf("%s: %w: tensor shape %v does not hold %d values as [k 2]",
				v.Tag, ErrNotAudio, v.Tensor.Shape, len(v.Tensor.StringVal))
		}

		rows := make([]Row, n/2)
		for i := range rows {
			rows[i] = Row{
				EncodedAudio: v.Tensor.StringVal[2*i],
				Label:        string(v.Tensor.StringVal[2*i+1]),
			}
		}
		out = append(out, &Record{Tag: v.Tag, Rows: rows, Metadata: md})
	}
	return out, nil
}

// UnmarshalRecords decodes serialized summary bytes into audio records.
func UnmarshalRecords(b []byte) ([]*Record, error) {
	s, err := summarypb.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return RecordsFromProto(s)
}
