package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"memo-registry/src/domain"
	"memo-registry/src/repository"
	"memo-registry/src/validator"
)

var idValidator = validator.NewCustomValidator()

var (
	ErrSubmitInProgress   = errors.New("a submit for this memo is already in progress")
	ErrAttachmentTooLarge = errors.New("attachment exceeds the size limit")
)

// DefaultMaxAttachmentBytes bounds an attachment before encoding
const DefaultMaxAttachmentBytes int64 = 5 << 20

// Mode is the editor state
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Repository is the write side the editor commits to
type Repository interface {
	Add(ctx context.Context, rec domain.MemoRecord) error
	Update(ctx context.Context, rec domain.MemoRecord) error
}

// Form is the staged text input of the memo form
type Form struct {
	MemoNumber string `json:"memoNumber"`
	Date       string `json:"date"`
	Teacher    string `json:"teacher"`
	Subject    string `json:"subject"`
	Department string `json:"department"`
}

type pendingFile struct {
	name string
	r    io.Reader
}

// Editor stages edits to one memo record and commits them on Submit.
// Setters are not safe for concurrent use; Submit rejects reentry.
type Editor struct {
	mode     Mode
	id       string
	previous *domain.Attachment
	form     Form
	pending  *pendingFile
	encoded  *domain.Attachment
	clear    bool

	repo     Repository
	ids      IDGen
	maxBytes int64

	submitting atomic.Bool
}

// Option configures an Editor
type Option func(*Editor)

// WithMaxAttachmentBytes overrides DefaultMaxAttachmentBytes
func WithMaxAttachmentBytes(n int64) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// NewCreate starts an empty form for a new record
func NewCreate(repo Repository, ids IDGen, opts ...Option) *Editor {
	e := &Editor{mode: ModeCreate, repo: repo, ids: ids, maxBytes: DefaultMaxAttachmentBytes}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEdit loads existing as the initial form state
func NewEdit(repo Repository, existing domain.MemoRecord, opts ...Option) *Editor {
	e := &Editor{
		mode:     ModeEdit,
		id:       existing.ID,
		previous: existing.Attachment.Clone(),
		form: Form{
			MemoNumber: existing.MemoNumber,
			Date:       existing.Date,
			Teacher:    existing.Teacher,
			Subject:    existing.Subject,
			Department: existing.Department,
		},
		repo:     repo,
		maxBytes: DefaultMaxAttachmentBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) Mode() Mode { return e.mode }

// ID is empty until a create-mode editor has committed
func (e *Editor) ID() string { return e.id }

func (e *Editor) Form() Form { return e.form }

func (e *Editor) SetForm(f Form) { e.form = f }

// Attach stages a new file; it is read and encoded on Submit
func (e *Editor) Attach(name string, r io.Reader) {
	e.pending = &pendingFile{name: name, r: r}
	e.encoded = nil
	e.clear = false
}

// ClearAttachment drops both the staged file and the previous attachment
func (e *Editor) ClearAttachment() {
	e.pending = nil
	e.encoded = nil
	e.clear = true
}

// Submit encodes any staged file, builds the record and commits it.
// A *repository.PersistError from the repository is returned together with
// the committed record. After a successful create the editor switches to
// edit mode on the new record.
func (e *Editor) Submit(ctx context.Context) (domain.MemoRecord, error) {
	if !e.submitting.CompareAndSwap(false, true) {
		return domain.MemoRecord{}, ErrSubmitInProgress
	}
	defer e.submitting.Store(false)

	attachment, err := e.resolveAttachment(ctx)
	if err != nil {
		return domain.MemoRecord{}, err
	}

	id := e.id
	if e.mode == ModeCreate {
		if id, err = e.ids.New(); err != nil {
			return domain.MemoRecord{}, fmt.Errorf("failed to generate id: %w", err)
		}
		// 新規発行のIDだけはULIDであることを要求する
		if !idValidator.IsULID(id) {
			return domain.MemoRecord{}, fmt.Errorf("generated id %q is not a ULID", id)
		}
	}

	rec, err := domain.NewMemoRecord(id, domain.MemoFields{
		MemoNumber: e.form.MemoNumber,
		Date:       e.form.Date,
		Teacher:    e.form.Teacher,
		Subject:    e.form.Subject,
		Department: e.form.Department,
		Attachment: attachment,
	})
	if err != nil {
		return domain.MemoRecord{}, err
	}

	if e.mode == ModeCreate {
		err = e.repo.Add(ctx, rec)
	} else {
		err = e.repo.Update(ctx, rec)
	}
	if err != nil && !isPersistError(err) {
		return domain.MemoRecord{}, err
	}

	e.mode = ModeEdit
	e.id = rec.ID
	e.previous = rec.Attachment.Clone()
	e.pending = nil
	e.encoded = nil
	e.clear = false
	return rec, err
}

func (e *Editor) resolveAttachment(ctx context.Context) (*domain.Attachment, error) {
	switch {
	case e.pending != nil:
		att, err := e.encode(ctx, e.pending)
		if err != nil {
			return nil, err
		}
		// 読み込み済みのファイルは再送信時に再利用する
		e.pending = nil
		e.encoded = att
		return att.Clone(), nil
	case e.encoded != nil:
		return e.encoded.Clone(), nil
	case e.clear:
		return nil, nil
	default:
		return e.previous.Clone(), nil
	}
}

func (e *Editor) encode(ctx context.Context, f *pendingFile) (*domain.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(f.r, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, ErrAttachmentTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domain.Attachment{Name: f.name, Data: EncodeDataURL(data)}, nil
}

func isPersistError(err error) bool {
	var pe *repository.PersistError
	return errors.As(err, &pe)
}
