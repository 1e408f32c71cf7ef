package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"memo-registry/src/domain"
	"memo-registry/src/storage"

	"github.com/sirupsen/logrus"
)

var (
	ErrRecordNotFound = errors.New("memo record not found")
	ErrDuplicateID    = errors.New("memo record id already exists")
)

// PersistError reports a failed slot write after the in-memory state was
// already updated. It is non-fatal: the repository stays dirty until the
// next successful write.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// MemoRepository is the ordered in-memory collection of memo records and
// departments, written through to a storage.Store on every mutation.
type MemoRepository struct {
	mu          sync.RWMutex
	store       storage.Store
	logger      *logrus.Logger
	memos       []domain.MemoRecord
	departments []string
	dirty       map[string]bool
}

// NewMemoRepository loads both slots from store, falling back to an empty
// memo list and domain.DefaultDepartments.
func NewMemoRepository(ctx context.Context, store storage.Store, logger *logrus.Logger) *MemoRepository {
	memos := Load(ctx, store, MemosKey, []domain.MemoRecord{}, logger)
	departments := Load(ctx, store, DepartmentsKey, slices.Clone(domain.DefaultDepartments), logger)
	if memos == nil {
		memos = []domain.MemoRecord{}
	}
	if departments == nil {
		departments = slices.Clone(domain.DefaultDepartments)
	}

	logger.WithFields(logrus.Fields{
		"memos":       len(memos),
		"departments": len(departments),
	}).Info("台帳を読み込みました")

	return &MemoRepository{
		store:       store,
		logger:      logger,
		memos:       memos,
		departments: departments,
		dirty:       make(map[string]bool),
	}
}

// List returns a copy of all records in insertion order
func (r *MemoRepository) List() []domain.MemoRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.CloneRecords(r.memos)
}

// Get returns the record with the given id
func (r *MemoRepository) Get(id string) (domain.MemoRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.MemoRecord{}, ErrRecordNotFound
	}
	return r.memos[i].Clone(), nil
}

// Add appends rec
func (r *MemoRepository) Add(ctx context.Context, rec domain.MemoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(rec.ID) >= 0 {
		return ErrDuplicateID
	}
	r.memos = append(r.memos, rec.Clone())

	r.logger.WithField("memo_id", rec.ID).Info("メモを追加しました")
	return r.persistMemos(ctx)
}

// Update replaces the record with the same id, keeping its position
func (r *MemoRepository) Update(ctx context.Context, rec domain.MemoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(rec.ID)
	if i < 0 {
		return ErrRecordNotFound
	}
	r.memos[i] = rec.Clone()

	r.logger.WithField("memo_id", rec.ID).Info("メモを更新しました")
	return r.persistMemos(ctx)
}

// Remove deletes the record with the given id
func (r *MemoRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrRecordNotFound
	}
	r.memos = slices.Delete(r.memos, i, i+1)

	r.logger.WithField("memo_id", id).Info("メモを削除しました")
	return r.persistMemos(ctx)
}

// Departments returns a copy of the department list
func (r *MemoRepository) Departments() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.departments)
}

// AddDepartment appends name unless it is empty or already present.
// added is false for the no-op cases.
func (r *MemoRepository) AddDepartment(ctx context.Context, name string) (added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" || domain.ContainsDepartment(r.departments, name) {
		return false, nil
	}
	r.departments = append(r.departments, name)

	r.logger.WithField("department", name).Info("部署を追加しました")
	return true, r.persistDepartments(ctx)
}

// Sync rewrites both slots from memory
func (r *MemoRepository) Sync(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return errors.Join(r.persistMemos(ctx), r.persistDepartments(ctx))
}

// Dirty reports whether a slot write has failed since its last success
func (r *MemoRepository) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.dirty {
		if d {
			return true
		}
	}
	return false
}

func (r *MemoRepository) indexOf(id string) int {
	return slices.IndexFunc(r.memos, func(m domain.MemoRecord) bool { return m.ID == id })
}

func (r *MemoRepository) persistMemos(ctx context.Context) error {
	return r.persist(MemosKey, Save(ctx, r.store, MemosKey, r.memos))
}

func (r *MemoRepository) persistDepartments(ctx context.Context) error {
	return r.persist(DepartmentsKey, Save(ctx, r.store, DepartmentsKey, r.departments))
}

func (r *MemoRepository) persist(key string, err error) error {
	if err != nil {
		r.dirty[key] = true
		r.logger.WithError(err).WithField("key", key).Error("スロットの保存に失敗しました（メモリ上の状態は更新済み）")
		return &PersistError{Key: key, Err: err}
	}
	r.dirty[key] = false
	return nil
}
