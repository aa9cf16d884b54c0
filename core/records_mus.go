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


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for stored records. Field order is the wire order; append
// new fields at the end of a record.
var (
	IDMUS                 = idMUS{}
	EpisodeMUS            = episodeMUS{}
	EntityRecordMUS       = entityRecordMUS{}
	SourceRecordMUS       = sourceRecordMUS{}
	RelationshipRecordMUS = relationshipRecordMUS{}
	DetailRecordMUS       = detailRecordMUS{}

	timeMUS     = timeMicroMUS{}
	durationMUS = durationNanoMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	return ID(tmp), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// timeMicroMUS stores a time as Unix microseconds, always decoded as UTC.
type timeMicroMUS struct{}

func (s timeMicroMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMicroMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func (s timeMicroMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

type durationNanoMUS struct{}

func (s durationNanoMUS) Marshal(v time.Duration, bs []byte) (n int) {
	return varint.Int64.Marshal(int64(v), bs)
}

func (s durationNanoMUS) Unmarshal(bs []byte) (v time.Duration, n int, err error) {
	tmp, n, err := varint.Int64.Unmarshal(bs)
	return time.Duration(tmp), n, err
}

func (s durationNanoMUS) Size(v time.Duration) (size int) {
	return varint.Int64.Size(int64(v))
}

type episodeMUS struct{}

func (s episodeMUS) Marshal(v Episode, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return n + timeMUS.Marshal(v.ProcessedAt, bs[n:])
}

func (s episodeMUS) Unmarshal(bs []byte) (v Episode, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var status int
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = EpisodeStatus(status)
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ProcessedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s episodeMUS) Size(v Episode) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.URL)
	size += varint.Int.Size(int(v.Status))
	size += timeMUS.Size(v.InsertedAt)
	return size + timeMUS.Size(v.ProcessedAt)
}

type entityRecordMUS struct{}

func (s entityRecordMUS) Marshal(v EntityRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(string(v.Type), bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return n + timeMUS.Marshal(v.UpdatedAt, bs[n:])
}

func (s entityRecordMUS) Unmarshal(bs []byte) (v EntityRecord, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var entityType string
	entityType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type = EntityType(entityType)
	v.Summary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s entityRecordMUS) Size(v EntityRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(string(v.Type))
	size += ord.String.Size(v.Summary)
	size += timeMUS.Size(v.InsertedAt)
	return size + timeMUS.Size(v.UpdatedAt)
}

type sourceRecordMUS struct{}

func (s sourceRecordMUS) Marshal(v SourceRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.EpisodeID, bs[n:])
	n += durationMUS.Marshal(v.Start, bs[n:])
	return n + durationMUS.Marshal(v.End, bs[n:])
}

func (s sourceRecordMUS) Unmarshal(bs []byte) (v SourceRecord, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.EpisodeID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Start, n1, err = durationMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.End, n1, err = durationMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s sourceRecordMUS) Size(v SourceRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.EpisodeID)
	size += durationMUS.Size(v.Start)
	return size + durationMUS.Size(v.End)
}

type relationshipRecordMUS struct{}

func (s relationshipRecordMUS) Marshal(v RelationshipRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.SourceEntityID, bs[n:])
	n += IDMUS.Marshal(v.TargetEntityID, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	return n + IDMUS.Marshal(v.SourceID, bs[n:])
}

func (s relationshipRecordMUS) Unmarshal(bs []byte) (v RelationshipRecord, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.SourceEntityID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TargetEntityID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s relationshipRecordMUS) Size(v RelationshipRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.SourceEntityID)
	size += IDMUS.Size(v.TargetEntityID)
	size += ord.String.Size(v.Description)
	return size + IDMUS.Size(v.SourceID)
}

type detailRecordMUS struct{}

func (s detailRecordMUS) Marshal(v DetailRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.EntityID, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return n + IDMUS.Marshal(v.SourceID, bs[n:])
}

func (s detailRecordMUS) Unmarshal(bs []byte) (v DetailRecord, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.EntityID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s detailRecordMUS) Size(v DetailRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.EntityID)
	size += ord.String.Size(v.Text)
	return size + IDMUS.Size(v.SourceID)
}
