package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"memo-registry/src/domain"
	"memo-registry/src/editor"
	"memo-registry/src/query"
	"memo-registry/src/repository"
	"memo-registry/src/stats"

	"github.com/sirupsen/logrus"
)

// WarningPersistFailed is shown when a change was applied but not saved
const WarningPersistFailed = "変更は反映されましたが保存に失敗しました。時間をおいて再同期してください"

// FileInput is an uploaded attachment awaiting encoding
type FileInput struct {
	Name   string
	Reader io.Reader
}

// Result is a committed record plus an optional non-fatal warning
type Result struct {
	Memo    domain.MemoRecord `json:"memo"`
	Warning string            `json:"warning,omitempty"`
}

// Options configures a Registry
type Options struct {
	IDs                editor.IDGen
	Clock              Clock
	Notifier           Notifier
	PageSize           int
	MaxAttachmentBytes int64
}

// Registry owns the memo repository and the state of the main view.
// Presentation code reads snapshots and mutates only through its methods.
type Registry struct {
	repo     *repository.MemoRepository
	ids      editor.IDGen
	clock    Clock
	notifier Notifier
	logger   *logrus.Logger

	pageSize           int
	maxAttachmentBytes int64

	viewMu sync.Mutex
	view   View

	inflightMu sync.Mutex
	inflight   map[string]bool
}

// NewRegistry creates the controller
func NewRegistry(repo *repository.MemoRepository, logger *logrus.Logger, opts Options) *Registry {
	if opts.IDs == nil {
		opts.IDs = editor.NewULIDGen()
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Logger: logger}
	}
	if opts.PageSize <= 0 {
		opts.PageSize = domain.DefaultPageSize
	}
	if opts.MaxAttachmentBytes <= 0 {
		opts.MaxAttachmentBytes = editor.DefaultMaxAttachmentBytes
	}

	return &Registry{
		repo:               repo,
		ids:                opts.IDs,
		clock:              opts.Clock,
		notifier:           opts.Notifier,
		logger:             logger,
		pageSize:           opts.PageSize,
		maxAttachmentBytes: opts.MaxAttachmentBytes,
		view:               newView(opts.PageSize),
		inflight:           make(map[string]bool),
	}
}

// CreateMemo commits a new record built from form and an optional file
func (r *Registry) CreateMemo(ctx context.Context, form editor.Form, file *FileInput) (Result, error) {
	ed := editor.NewCreate(r.repo, r.ids, editor.WithMaxAttachmentBytes(r.maxAttachmentBytes))
	return r.submit(ctx, ed, form, file, false)
}

// UpdateMemo replaces every field of record id except the id itself.
// Without a new file the previous attachment is kept unless clear is set.
// A second update of the same id while one is running fails with
// editor.ErrSubmitInProgress.
func (r *Registry) UpdateMemo(ctx context.Context, id string, form editor.Form, file *FileInput, clear bool) (Result, error) {
	if !r.acquire(id) {
		return Result{}, editor.ErrSubmitInProgress
	}
	defer r.release(id)

	existing, err := r.repo.Get(id)
	if err != nil {
		return Result{}, err
	}

	ed := editor.NewEdit(r.repo, existing, editor.WithMaxAttachmentBytes(r.maxAttachmentBytes))
	return r.submit(ctx, ed, form, file, clear)
}

func (r *Registry) submit(ctx context.Context, ed *editor.Editor, form editor.Form, file *FileInput, clear bool) (Result, error) {
	ed.SetForm(form)
	if clear {
		ed.ClearAttachment()
	}
	if file != nil {
		ed.Attach(file.Name, file.Reader)
	}

	rec, err := ed.Submit(ctx)
	res := Result{Memo: rec}
	if err != nil {
		if !r.warnIfPersist(ctx, err) {
			return Result{}, err
		}
		res.Warning = WarningPersistFailed
	}

	r.logger.WithFields(logrus.Fields{
		"memo_id": rec.ID,
		"mode":    ed.Mode().String(),
	}).Info("メモを保存しました")
	return res, nil
}

// GetMemo returns one record
func (r *Registry) GetMemo(id string) (domain.MemoRecord, error) {
	return r.repo.Get(id)
}

// DeleteMemo removes record id once confirmer approves. A declined
// confirmation is a no-op and reports deleted == false.
func (r *Registry) DeleteMemo(ctx context.Context, id string, confirmer Confirmer) (deleted bool, warning string, err error) {
	rec, err := r.repo.Get(id)
	if err != nil {
		return false, "", err
	}

	prompt := fmt.Sprintf("文書番号 %s を削除しますか？", rec.MemoNumber)
	if confirmer == nil || !confirmer.Confirm(ctx, prompt) {
		r.logger.WithField("memo_id", id).Info("削除がキャンセルされました")
		return false, "", nil
	}

	if err := r.repo.Remove(ctx, id); err != nil {
		if !r.warnIfPersist(ctx, err) {
			return false, "", err
		}
		warning = WarningPersistFailed
	}
	return true, warning, nil
}

// ListMemos runs the filter, sort and page pipeline without touching the
// main view state
func (r *Registry) ListMemos(c domain.FilterCriteria, spec domain.SortSpec, page int) query.Result {
	return query.Run(r.repo.List(), c, spec, domain.PageState{Page: page, Size: r.pageSize})
}

// Departments returns the department list in insertion order
func (r *Registry) Departments() []string {
	return r.repo.Departments()
}

// AddDepartment appends name; blanks and duplicates are silently ignored.
// A name that no record could carry fails with validator.ValidationErrors.
func (r *Registry) AddDepartment(ctx context.Context, name string) (added bool, warning string, err error) {
	if name != "" {
		if err := domain.ValidateDepartmentName(name); err != nil {
			return false, "", err
		}
	}

	added, err = r.repo.AddDepartment(ctx, name)
	if err != nil {
		if !r.warnIfPersist(ctx, err) {
			return false, "", err
		}
		warning = WarningPersistFailed
	}
	return added, warning, nil
}

// DepartmentStats counts the records matching c per department
func (r *Registry) DepartmentStats(c domain.FilterCriteria) stats.DepartmentCounts {
	return stats.CountsByDepartment(query.Filter(r.repo.List(), c), r.repo.Departments())
}

// Timeline buckets the records matching c around the current time
func (r *Registry) Timeline(kind stats.BucketKind, c domain.FilterCriteria) (stats.Timeline, error) {
	return stats.CountsByTimeBucket(query.Filter(r.repo.List(), c), kind, r.clock.Now())
}

// Dashboard summarises the whole registry
func (r *Registry) Dashboard() stats.Summary {
	return stats.Summarize(r.repo.List(), r.repo.Departments(), r.clock.Now())
}

// Sync retries persistence of both slots
func (r *Registry) Sync(ctx context.Context) error {
	if err := r.repo.Sync(ctx); err != nil {
		return err
	}
	r.logger.Info("台帳を再同期しました")
	return nil
}

// Dirty reports whether memory and storage have diverged
func (r *Registry) Dirty() bool {
	return r.repo.Dirty()
}

func (r *Registry) warnIfPersist(ctx context.Context, err error) bool {
	var pe *repository.PersistError
	if !errors.As(err, &pe) {
		return false
	}
	r.notifier.Warn(ctx, WarningPersistFailed, err)
	return true
}

func (r *Registry) acquire(id string) bool {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()

	if r.inflight[id] {
		return false
	}
	r.inflight[id] = true
	return true
}

func (r *Registry) release(id string) {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()

	delete(r.inflight, id)
}
