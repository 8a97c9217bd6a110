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
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types. These follow the standard
// Marshal/Unmarshal/Size serializer shape so storage code can treat them
// uniformly. Timestamps are encoded at microsecond precision; the zero
// time round-trips as the zero time.

var (
	// IDMUS serializes IDs as varint-encoded uint64.
	IDMUS = idMUS{}

	// DocumentMUS serializes Documents.
	DocumentMUS = documentMUS{}

	// OpportunityRecordMUS serializes OpportunityRecords.
	OpportunityRecordMUS = opportunityRecordMUS{}

	// ProfileRecordMUS serializes ProfileRecords.
	ProfileRecordMUS = profileRecordMUS{}

	vectorMUS  = ord.NewSliceSer[float32](raw.Float32)
	stringsMUS = ord.NewSliceSer[string](ord.String)
	idSliceMUS = ord.NewSliceSer[ID](IDMUS)
	timeMUS    = timeMicroMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// timeMicroMUS encodes a time.Time as a validity flag plus UnixMicro.
// The flag keeps the zero time distinguishable from the epoch.
type timeMicroMUS struct{}

func (timeMicroMUS) Marshal(t time.Time, bs []byte) (n int) {
	n = ord.Bool.Marshal(!t.IsZero(), bs)
	if !t.IsZero() {
		n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	}
	return n
}

func (timeMicroMUS) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	valid, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !valid {
		return time.Time{}, n, err
	}
	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (timeMicroMUS) Size(t time.Time) (size int) {
	size = ord.Bool.Size(!t.IsZero())
	if !t.IsZero() {
		size += varint.Int64.Size(t.UnixMicro())
	}
	return size
}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += IDMUS.Marshal(d.ProfileId, bs[n:])
	n += ord.String.Marshal(d.Name, bs[n:])
	n += ord.String.Marshal(d.RawText, bs[n:])
	n += ord.String.Marshal(d.URL, bs[n:])
	n += varint.Int.Marshal(int(d.Source), bs[n:])
	n += IDMUS.Marshal(d.Fingerprint, bs[n:])
	n += vectorMUS.Marshal(d.Vector, bs[n:])
	n += timeMUS.Marshal(d.AddedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	if d.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return d, n, err
	}
	if d.ProfileId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.RawText, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	var source int
	if source, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Source = SourceType(source)
	n += n1
	if d.Fingerprint, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.AddedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (documentMUS) Size(d Document) (size int) {
	size = IDMUS.Size(d.Id)
	size += IDMUS.Size(d.ProfileId)
	size += ord.String.Size(d.Name)
	size += ord.String.Size(d.RawText)
	size += ord.String.Size(d.URL)
	size += varint.Int.Size(int(d.Source))
	size += IDMUS.Size(d.Fingerprint)
	size += vectorMUS.Size(d.Vector)
	size += timeMUS.Size(d.AddedAt)
	return size
}

type opportunityRecordMUS struct{}

func (opportunityRecordMUS) Marshal(o OpportunityRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(o.Id, bs)
	n += ord.String.Marshal(o.Title, bs[n:])
	n += ord.String.Marshal(o.Description, bs[n:])
	n += ord.String.Marshal(o.Agency, bs[n:])
	n += stringsMUS.Marshal(o.Keywords, bs[n:])
	n += timeMUS.Marshal(o.Deadline, bs[n:])
	n += ord.String.Marshal(o.URL, bs[n:])
	n += varint.Int.Marshal(int(o.Status), bs[n:])
	n += IDMUS.Marshal(o.Fingerprint, bs[n:])
	n += vectorMUS.Marshal(o.Vector, bs[n:])
	n += varint.Uint64.Marshal(o.Seq, bs[n:])
	n += timeMUS.Marshal(o.InsertedAt, bs[n:])
	n += timeMUS.Marshal(o.UpdatedAt, bs[n:])
	return n
}

func (opportunityRecordMUS) Unmarshal(bs []byte) (o OpportunityRecord, n int, err error) {
	var n1 int
	if o.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return o, n, err
	}
	if o.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.Agency, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.Keywords, n1, err = stringsMUS.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.Deadline, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	var status int
	if status, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	o.Status = OpportunityStatus(status)
	n += n1
	if o.Fingerprint, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.Seq, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	return o, n, nil
}

func (opportunityRecordMUS) Size(o OpportunityRecord) (size int) {
	size = IDMUS.Size(o.Id)
	size += ord.String.Size(o.Title)
	size += ord.String.Size(o.Description)
	size += ord.String.Size(o.Agency)
	size += stringsMUS.Size(o.Keywords)
	size += timeMUS.Size(o.Deadline)
	size += ord.String.Size(o.URL)
	size += varint.Int.Size(int(o.Status))
	size += IDMUS.Size(o.Fingerprint)
	size += vectorMUS.Size(o.Vector)
	size += varint.Uint64.Size(o.Seq)
	size += timeMUS.Size(o.InsertedAt)
	size += timeMUS.Size(o.UpdatedAt)
	return size
}

type profileRecordMUS struct{}

func (profileRecordMUS) Marshal(p ProfileRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(p.Id, bs)
	n += ord.String.Marshal(p.Name, bs[n:])
	n += stringsMUS.Marshal(p.Interests, bs[n:])
	n += idSliceMUS.Marshal(p.Documents, bs[n:])
	n += stringsMUS.Marshal(p.URLs, bs[n:])
	n += vectorMUS.Marshal(p.Vector, bs[n:])
	n += timeMUS.Marshal(p.EmbeddedAt, bs[n:])
	n += timeMUS.Marshal(p.InsertedAt, bs[n:])
	n += timeMUS.Marshal(p.UpdatedAt, bs[n:])
	return n
}

func (profileRecordMUS) Unmarshal(bs []byte) (p ProfileRecord, n int, err error) {
	var n1 int
	if p.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return p, n, err
	}
	if p.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.Interests, n1, err = stringsMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.Documents, n1, err = idSliceMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.URLs, n1, err = stringsMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.EmbeddedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	return p, n, nil
}

func (profileRecordMUS) Size(p ProfileRecord) (size int) {
	size = IDMUS.Size(p.Id)
	size += ord.String.Size(p.Name)
	size += stringsMUS.Size(p.Interests)
	size += idSliceMUS.Size(p.Documents)
	size += stringsMUS.Size(p.URLs)
	size += vectorMUS.Size(p.Vector)
	size += timeMUS.Size(p.EmbeddedAt)
	size += timeMUS.Size(p.InsertedAt)
	size += timeMUS.Size(p.UpdatedAt)
	return size
}
