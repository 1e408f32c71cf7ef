package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"memo-registry/src/validator"
)

// DateLayout is the calendar-date format used for MemoRecord.Date
const DateLayout = "2006-01-02"

var recordValidator = validator.NewCustomValidator()

// MemoRecord represents one tracked memorandum
type MemoRecord struct {
	ID         string      `json:"id" validate:"required,record_id"`
	MemoNumber string      `json:"memoNumber" validate:"required,max=50,safe_text"`
	Date       string      `json:"date" validate:"required,datetime=2006-01-02"`
	Teacher    string      `json:"teacher" validate:"required,max=100,safe_text"`
	Subject    string      `json:"subject" validate:"required,max=200,safe_text"`
	Department string      `json:"department" validate:"required,max=50,safe_label"`
	Attachment *Attachment `json:"attachment,omitempty" validate:"omitempty"`
}

// Attachment is a file embedded inline as a data URL
type Attachment struct {
	Name string `json:"name" validate:"required,max=255,safe_filename"`
	Data string `json:"data" validate:"required,startswith=data:"`
}

// MemoFields holds every editable field of a MemoRecord
type MemoFields struct {
	MemoNumber string
	Date       string
	Teacher    string
	Subject    string
	Department string
	Attachment *Attachment
}

// NewMemoRecord builds a validated MemoRecord with the given id
func NewMemoRecord(id string, f MemoFields) (MemoRecord, error) {
	rec := MemoRecord{
		ID:         id,
		MemoNumber: f.MemoNumber,
		Date:       f.Date,
		Teacher:    f.Teacher,
		Subject:    f.Subject,
		Department: f.Department,
	}
	if f.Attachment != nil {
		att := *f.Attachment
		rec.Attachment = &att
	}
	if err := recordValidator.Validate(&rec); err != nil {
		return MemoRecord{}, err
	}
	return rec, nil
}

// UnmarshalJSON accepts the id as either a JSON string or a JSON number.
// Numeric ids are kept as their literal text.
func (m *MemoRecord) UnmarshalJSON(data []byte) error {
	type plain MemoRecord
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number: %w", err)
	}
	return n.String(), nil
}

// Fields returns the editable fields of the record
func (m MemoRecord) Fields() MemoFields {
	return MemoFields{
		MemoNumber: m.MemoNumber,
		Date:       m.Date,
		Teacher:    m.Teacher,
		Subject:    m.Subject,
		Department: m.Department,
		Attachment: m.Attachment.Clone(),
	}
}

// ParsedDate parses Date at day granularity in UTC.
// ok is false when the stored value is not a valid calendar date.
func (m MemoRecord) ParsedDate() (t time.Time, ok bool) {
	return ParseDate(m.Date)
}

// Clone returns a deep copy of the record
func (m MemoRecord) Clone() MemoRecord {
	m.Attachment = m.Attachment.Clone()
	return m
}

// Clone returns a copy of the attachment, or nil
func (a *Attachment) Clone() *Attachment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CloneRecords deep-copies a slice of records
func CloneRecords(records []MemoRecord) []MemoRecord {
	out := make([]MemoRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
