package core

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the records persisted by the storage
// layer. Field order is part of the stored format; append new fields at the
// end only.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// SchemeDocumentMUS serializes SchemeDocument values.
var SchemeDocumentMUS = schemeDocumentMUS{}

type schemeDocumentMUS struct{}

func (schemeDocumentMUS) Marshal(doc SchemeDocument, bs []byte) int {
	n := IDMUS.Marshal(doc.Id, bs)
	n += ord.String.Marshal(doc.SchemeName, bs[n:])
	n += ord.String.Marshal(doc.Text, bs[n:])
	n += ord.String.Marshal(doc.SourceFile, bs[n:])
	n += marshalVector(doc.Vector, bs[n:])
	n += marshalTime(doc.InsertedAt, bs[n:])
	n += marshalTime(doc.UpdatedAt, bs[n:])
	return n
}

func (schemeDocumentMUS) Unmarshal(bs []byte) (doc SchemeDocument, n int, err error) {
	doc.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	if doc.SchemeName, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return doc, n + m, err
	}
	n += m
	if doc.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return doc, n + m, err
	}
	n += m
	if doc.SourceFile, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return doc, n + m, err
	}
	n += m
	if doc.Vector, m, err = unmarshalVector(bs[n:]); err != nil {
		return doc, n + m, err
	}
	n += m
	if doc.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return doc, n + m, err
	}
	n += m
	if doc.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return doc, n + m, err
	}
	n += m
	return doc, n, nil
}

func (schemeDocumentMUS) Size(doc SchemeDocument) int {
	size := IDMUS.Size(doc.Id)
	size += ord.String.Size(doc.SchemeName)
	size += ord.String.Size(doc.Text)
	size += ord.String.Size(doc.SourceFile)
	size += sizeVector(doc.Vector)
	size += sizeTime(doc.InsertedAt)
	size += sizeTime(doc.UpdatedAt)
	return size
}

// IndexInfoMUS serializes IndexInfo values.
var IndexInfoMUS = indexInfoMUS{}

type indexInfoMUS struct{}

func (indexInfoMUS) Marshal(info IndexInfo, bs []byte) int {
	n := ord.String.Marshal(info.EmbeddingModel, bs)
	n += varint.Int.Marshal(info.Dimension, bs[n:])
	n += marshalTime(info.UpdatedAt, bs[n:])
	return n
}

func (indexInfoMUS) Unmarshal(bs []byte) (info IndexInfo, n int, err error) {
	info.EmbeddingModel, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	if info.Dimension, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return info, n + m, err
	}
	n += m
	if info.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return info, n + m, err
	}
	n += m
	return info, n, nil
}

func (indexInfoMUS) Size(info IndexInfo) int {
	return ord.String.Size(info.EmbeddingModel) + varint.Int.Size(info.Dimension) + sizeTime(info.UpdatedAt)
}

// Vectors are stored as a varint length followed by the raw float32 bits of
// each element, varint-encoded.

func marshalVector(vec []float32, bs []byte) int {
	n := varint.Int.Marshal(len(vec), bs)
	for _, v := range vec {
		n += varint.Uint32.Marshal(math.Float32bits(v), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, fmt.Errorf("invalid vector length %d", length)
	}
	if length == 0 {
		return nil, n, nil
	}
	vec := make([]float32, length)
	for i := range vec {
		bits, m, err := varint.Uint32.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + m, err
		}
		n += m
		vec[i] = math.Float32frombits(bits)
	}
	return vec, n, nil
}

func sizeVector(vec []float32) int {
	size := varint.Int.Size(len(vec))
	for _, v := range vec {
		size += varint.Uint32.Size(math.Float32bits(v))
	}
	return size
}

// Timestamps are stored as Unix microseconds.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}
