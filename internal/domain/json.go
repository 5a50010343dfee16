package domain

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// Members modelled by the document types. Anything else is carried in Extra.
var (
	documentKeys = []string{"testtype", "fields", "steps", "xray_test_repository_folder", "xray_test_sets"}
	fieldKeys    = []string{"project", "summary", "description"}
	projectKeys  = []string{"key"}
	stepKeys     = []string{"action", "data", "result"}
)

func (d *TestDocument) UnmarshalJSON(data []byte) error {
	type plain TestDocument
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownMembers(data, documentKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*d = TestDocument(p)
	return nil
}

func (d TestDocument) MarshalJSON() ([]byte, error) {
	type plain TestDocument
	return withMembers(plain(d), d.Extra)
}

func (f *TestFields) UnmarshalJSON(data []byte) error {
	type plain TestFields
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownMembers(data, fieldKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*f = TestFields(p)
	return nil
}

func (f TestFields) MarshalJSON() ([]byte, error) {
	type plain TestFields
	return withMembers(plain(f), f.Extra)
}

func (r *ProjectRef) UnmarshalJSON(data []byte) error {
	type plain ProjectRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownMembers(data, projectKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*r = ProjectRef(p)
	return nil
}

func (r ProjectRef) MarshalJSON() ([]byte, error) {
	type plain ProjectRef
	return withMembers(plain(r), r.Extra)
}

func (s *StepRecord) UnmarshalJSON(data []byte) error {
	type plain StepRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownMembers(data, stepKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*s = StepRecord(p)
	return nil
}

func (s StepRecord) MarshalJSON() ([]byte, error) {
	type plain StepRecord
	return withMembers(plain(s), s.Extra)
}

// unknownMembers returns the members of the JSON object data whose names are
// not in known, or nil when there are none.
func unknownMembers(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// withMembers encodes v, an object, and appends extra after its own members
// in name order. HTML characters are not escaped.
func withMembers(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.MarshalNoEscape(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.Write(b[:len(b)-1])
	for _, name := range names {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.MarshalNoEscape(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(extra[name])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
