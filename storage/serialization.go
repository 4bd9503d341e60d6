// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"encoding/json"
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/nutrirag/core"
)

// StoredDocument is a document as persisted by a backend: the document, its
// embedding and the insertion sequence used to break similarity ties.
type StoredDocument struct {
	Document *core.Document
	Vector   []float32
	Seq      uint64
}

// StoredCollection is the persisted description of a collection.
type StoredCollection struct {
	Name     string
	Metadata core.Metadata
}

// metadataValue keeps the scalar type of a metadata value across encoding,
// so an int stays an int and a float with no fraction stays a float.
// Exactly one field is set.
type metadataValue struct {
	S *string  `json:"s,omitempty"`
	N *float64 `json:"n,omitempty"`
	I *int     `json:"i,omitempty"`
	B *bool    `json:"b,omitempty"`
}

// Kind tags written ahead of each binary metadata value.
const (
	kindString byte = iota + 1
	kindFloat
	kindInt
	kindBool
)

func (v metadataValue) kind() byte {
	switch {
	case v.S != nil:
		return kindString
	case v.N != nil:
		return kindFloat
	case v.I != nil:
		return kindInt
	case v.B != nil:
		return kindBool
	}
	return 0
}

// metadataValueSerializer encodes a metadataValue as a varint kind tag
// followed by the value.
type metadataValueSerializer struct{}

var _ mus.Serializer[metadataValue] = metadataValueSerializer{}

func (metadataValueSerializer) Marshal(v metadataValue, bs []byte) (n int) {
	n = varint.Byte.Marshal(v.kind(), bs)
	switch v.kind() {
	case kindString:
		n += ord.String.Marshal(*v.S, bs[n:])
	case kindFloat:
		n += raw.Float64.Marshal(*v.N, bs[n:])
	case kindInt:
		n += varint.Int.Marshal(*v.I, bs[n:])
	case kindBool:
		n += ord.Bool.Marshal(*v.B, bs[n:])
	}
	return
}

func (metadataValueSerializer) Unmarshal(bs []byte) (v metadataValue, n int, err error) {
	kind, n, err := varint.Byte.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	switch kind {
	case kindString:
		var s string
		s, n1, err = ord.String.Unmarshal(bs[n:])
		v.S = &s
	case kindFloat:
		var f float64
		f, n1, err = raw.Float64.Unmarshal(bs[n:])
		v.N = &f
	case kindInt:
		var i int
		i, n1, err = varint.Int.Unmarshal(bs[n:])
		v.I = &i
	case kindBool:
		var b bool
		b, n1, err = ord.Bool.Unmarshal(bs[n:])
		v.B = &b
	default:
		err = fmt.Errorf("unknown metadata kind %d", kind)
	}
	n += n1
	return
}

func (metadataValueSerializer) Size(v metadataValue) (size int) {
	size = varint.Byte.Size(v.kind())
	switch v.kind() {
	case kindString:
		size += ord.String.Size(*v.S)
	case kindFloat:
		size += raw.Float64.Size(*v.N)
	case kindInt:
		size += varint.Int.Size(*v.I)
	case kindBool:
		size += ord.Bool.Size(*v.B)
	}
	return
}

func (metadataValueSerializer) Skip(bs []byte) (n int, err error) {
	kind, n, err := varint.Byte.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	switch kind {
	case kindString:
		n1, err = ord.String.Skip(bs[n:])
	case kindFloat:
		n1, err = raw.Float64.Skip(bs[n:])
	case kindInt:
		n1, err = varint.Int.Skip(bs[n:])
	case kindBool:
		n1, err = ord.Bool.Skip(bs[n:])
	default:
		err = fmt.Errorf("unknown metadata kind %d", kind)
	}
	n += n1
	return
}

var (
	metadataMUS = ord.NewMapSer[string, metadataValue](ord.String, metadataValueSerializer{})
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
)

type documentRecord struct {
	ID       string
	Text     string
	Metadata map[string]metadataValue
	Vector   []float32
	Seq      uint64
}

// documentSerializer encodes a documentRecord field by field.
type documentSerializer struct{}

var documentMUS mus.Serializer[documentRecord] = documentSerializer{}

func (documentSerializer) Marshal(v documentRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += metadataMUS.Marshal(v.Metadata, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += varint.Uint64.Marshal(v.Seq, bs[n:])
	return
}

func (documentSerializer) Unmarshal(bs []byte) (v documentRecord, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Seq, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	return
}

func (documentSerializer) Size(v documentRecord) (size int) {
	size = ord.String.Size(v.ID)
	size += ord.String.Size(v.Text)
	size += metadataMUS.Size(v.Metadata)
	size += vectorMUS.Size(v.Vector)
	return size + varint.Uint64.Size(v.Seq)
}

func (documentSerializer) Skip(bs []byte) (n int, err error) {
	skips := []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, metadataMUS.Skip, vectorMUS.Skip, varint.Uint64.Skip,
	}
	for _, skip := range skips {
		var n1 int
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type collectionRecord struct {
	Name     string
	Metadata map[string]metadataValue
}

// collectionSerializer encodes a collectionRecord field by field.
type collectionSerializer struct{}

var collectionMUS mus.Serializer[collectionRecord] = collectionSerializer{}

func (collectionSerializer) Marshal(v collectionRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += metadataMUS.Marshal(v.Metadata, bs[n:])
	return
}

func (collectionSerializer) Unmarshal(bs []byte) (v collectionRecord, n int, err error) {
	v.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (collectionSerializer) Size(v collectionRecord) (size int) {
	return ord.String.Size(v.Name) + metadataMUS.Size(v.Metadata)
}

func (collectionSerializer) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = metadataMUS.Skip(bs[n:])
	n += n1
	return
}

// MarshalMetadata serializes metadata as JSON with its scalar types
// preserved, for backends that keep metadata in a JSON column.
func MarshalMetadata(m core.Metadata) ([]byte, error) {
	values, err := encodeMetadata(m)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalMetadata deserializes metadata written by MarshalMetadata.
func UnmarshalMetadata(data []byte) (core.Metadata, error) {
	var values map[string]metadataValue
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return decodeMetadata(values)
}

// MarshalDocument serializes a stored document to bytes.
func MarshalDocument(sd *StoredDocument) ([]byte, error) {
	if sd == nil || sd.Document == nil {
		return nil, fmt.Errorf("%w: document is nil", ErrSerializationFailed)
	}
	values, err := encodeMetadata(sd.Document.Metadata)
	if err != nil {
		return nil, err
	}
	rec := documentRecord{
		ID:       sd.Document.ID,
		Text:     sd.Document.Text,
		Metadata: values,
		Vector:   sd.Vector,
		Seq:      sd.Seq,
	}
	buf := make([]byte, documentMUS.Size(rec))
	documentMUS.Marshal(rec, buf)
	return buf, nil
}

// UnmarshalDocument deserializes a stored document from bytes.
func UnmarshalDocument(data []byte) (*StoredDocument, error) {
	rec, _, err := documentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	metadata, err := decodeMetadata(rec.Metadata)
	if err != nil {
		return nil, err
	}
	return &StoredDocument{
		Document: &core.Document{ID: rec.ID, Text: rec.Text, Metadata: metadata},
		Vector:   rec.Vector,
		Seq:      rec.Seq,
	}, nil
}

// MarshalCollection serializes a collection description to bytes.
func MarshalCollection(sc *StoredCollection) ([]byte, error) {
	values, err := encodeMetadata(sc.Metadata)
	if err != nil {
		return nil, err
	}
	rec := collectionRecord{Name: sc.Name, Metadata: values}
	buf := make([]byte, collectionMUS.Size(rec))
	collectionMUS.Marshal(rec, buf)
	return buf, nil
}

// UnmarshalCollection deserializes a collection description from bytes.
func UnmarshalCollection(data []byte) (*StoredCollection, error) {
	rec, _, err := collectionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	metadata, err := decodeMetadata(rec.Metadata)
	if err != nil {
		return nil, err
	}
	return &StoredCollection{Name: rec.Name, Metadata: metadata}, nil
}

func encodeMetadata(m core.Metadata) (map[string]metadataValue, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]metadataValue, len(m))
	for k, v := range m {
		switch tv := v.(type) {
		case string:
			out[k] = metadataValue{S: &tv}
		case float64:
			out[k] = metadataValue{N: &tv}
		case int:
			out[k] = metadataValue{I: &tv}
		case bool:
			out[k] = metadataValue{B: &tv}
		default:
			return nil, fmt.Errorf("%w: metadata field %q has unsupported type %T", ErrSerializationFailed, k, v)
		}
	}
	return out, nil
}

func decodeMetadata(values map[string]metadataValue) (core.Metadata, error) {
	if len(values) == 0 {
		return core.Metadata{}, nil
	}
	out := make(core.Metadata, len(values))
	for k, v := range values {
		switch {
		case v.S != nil:
			out[k] = *v.S
		case v.N != nil:
			out[k] = *v.N
		case v.I != nil:
			out[k] = *v.I
		case v.B != nil:
			out[k] = *v.B
		default:
			return nil, fmt.Errorf("%w: metadata field %q has no value", ErrSerializationFailed, k)
		}
	}
	return out, nil
}
