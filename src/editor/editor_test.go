package editor_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"memo-registry/src/domain"
	"memo-registry/src/editor"
	"memo-registry/src/repository"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockRepository は editor.Repository のモック実装
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Add(ctx context.Context, rec domain.MemoRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, rec domain.MemoRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type fixedIDs struct{ id string }

func (f fixedIDs) New() (string, error) { return f.id, nil }

func validForm() editor.Form {
	return editor.Form{
		MemoNumber: "教-001",
		Date:       "2024-03-15",
		Teacher:    "山田",
		Subject:    "卒業式の準備",
		Department: "教務課",
	}
}

func TestEditor_Create(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make().String()

	t.Run("新規作成で添付ファイルをdata URLにする", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Add", mock.Anything, mock.MatchedBy(func(r domain.MemoRecord) bool {
			return r.ID == id && r.Attachment != nil && r.Attachment.Name == "memo.txt"
		})).Return(nil).Once()

		ed := editor.NewCreate(repo, fixedIDs{id})
		assert.Equal(t, editor.ModeCreate, ed.Mode())
		assert.Empty(t, ed.ID())

		ed.SetForm(validForm())
		ed.Attach("memo.txt", strings.NewReader("hello"))

		rec, err := ed.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
		assert.True(t, strings.HasPrefix(rec.Attachment.Data, "data:text/plain"))

		mimeType, data, err := editor.DecodeDataURL(rec.Attachment.Data)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		assert.Contains(t, mimeType, "text/plain")

		// 保存後は編集モードに切り替わる
		assert.Equal(t, editor.ModeEdit, ed.Mode())
		assert.Equal(t, id, ed.ID())
		repo.AssertExpectations(t)
	})

	t.Run("入力が不正ならリポジトリを呼ばない", func(t *testing.T) {
		repo := new(MockRepository)
		ed := editor.NewCreate(repo, fixedIDs{id})
		form := validForm()
		form.Date = "2024-13-40"
		ed.SetForm(form)

		_, err := ed.Submit(ctx)
		assert.Error(t, err)
		assert.Equal(t, editor.ModeCreate, ed.Mode())
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("保存失敗は記録と共に返す", func(t *testing.T) {
		persistErr := &repository.PersistError{Key: repository.MemosKey, Err: errors.New("quota exceeded")}
		repo := new(MockRepository)
		repo.On("Add", mock.Anything, mock.Anything).Return(persistErr).Once()

		ed := editor.NewCreate(repo, fixedIDs{id})
		ed.SetForm(validForm())

		rec, err := ed.Submit(ctx)
		var pe *repository.PersistError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, editor.ModeEdit, ed.Mode())
	})

	t.Run("重複IDなどの失敗は状態を変えない", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Add", mock.Anything, mock.Anything).Return(repository.ErrDuplicateID).Once()

		ed := editor.NewCreate(repo, fixedIDs{id})
		ed.SetForm(validForm())

		_, err := ed.Submit(ctx)
		assert.ErrorIs(t, err, repository.ErrDuplicateID)
		assert.Equal(t, editor.ModeCreate, ed.Mode())
	})

	t.Run("ULIDでないIDは発行しない", func(t *testing.T) {
		repo := new(MockRepository)
		ed := editor.NewCreate(repo, fixedIDs{"1"})
		ed.SetForm(validForm())

		_, err := ed.Submit(ctx)
		assert.Error(t, err)
		assert.Equal(t, editor.ModeCreate, ed.Mode())
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})
}

func TestEditor_EditLegacyID(t *testing.T) {
	existing := domain.MemoRecord{
		ID:         "1700000000000",
		MemoNumber: "教-001",
		Date:       "2024-03-15",
		Teacher:    "山田",
		Subject:    "卒業式の準備",
		Department: "教務課",
	}

	repo := new(MockRepository)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(r domain.MemoRecord) bool {
		return r.ID == existing.ID && r.Teacher == "佐藤"
	})).Return(nil).Once()

	ed := editor.NewEdit(repo, existing)
	form := validForm()
	form.Teacher = "佐藤"
	ed.SetForm(form)

	rec, err := ed.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", rec.ID)
	repo.AssertExpectations(t)
}

func TestEditor_Attachment(t *testing.T) {
	ctx := context.Background()
	existing := domain.MemoRecord{
		ID:         ulid.Make().String(),
		MemoNumber: "教-001",
		Date:       "2024-03-15",
		Teacher:    "山田",
		Subject:    "卒業式の準備",
		Department: "教務課",
		Attachment: &domain.Attachment{Name: "old.txt", Data: editor.EncodeDataURL([]byte("old"))},
	}

	tests := []struct {
		name     string
		stage    func(*editor.Editor)
		wantName string
		wantNil  bool
	}{
		{
			name:     "新しいファイルがなければ既存の添付を保持",
			stage:    func(*editor.Editor) {},
			wantName: "old.txt",
		},
		{
			name:     "新しいファイルで置き換え",
			stage:    func(e *editor.Editor) { e.Attach("new.txt", strings.NewReader("new")) },
			wantName: "new.txt",
		},
		{
			name:    "添付を削除",
			stage:   func(e *editor.Editor) { e.ClearAttachment() },
			wantNil: true,
		},
		{
			name: "削除の後に添付すると新しいファイル",
			stage: func(e *editor.Editor) {
				e.ClearAttachment()
				e.Attach("new.txt", strings.NewReader("new"))
			},
			wantName: "new.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

			ed := editor.NewEdit(repo, existing)
			assert.Equal(t, existing.Fields().MemoNumber, ed.Form().MemoNumber)
			tt.stage(ed)

			rec, err := ed.Submit(ctx)
			require.NoError(t, err)
			assert.Equal(t, existing.ID, rec.ID)
			if tt.wantNil {
				assert.Nil(t, rec.Attachment)
				return
			}
			require.NotNil(t, rec.Attachment)
			assert.Equal(t, tt.wantName, rec.Attachment.Name)
		})
	}

	t.Run("上限を超えるファイルは拒否", func(t *testing.T) {
		repo := new(MockRepository)
		ed := editor.NewEdit(repo, existing, editor.WithMaxAttachmentBytes(4))
		ed.Attach("big.bin", bytes.NewReader(make([]byte, 5)))

		_, err := ed.Submit(ctx)
		assert.ErrorIs(t, err, editor.ErrAttachmentTooLarge)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("失敗後の再送信では読み込み済みのファイルを使う", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Update", mock.Anything, mock.Anything).Return(repository.ErrRecordNotFound).Once()
		repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

		ed := editor.NewEdit(repo, existing)
		ed.Attach("new.txt", strings.NewReader("new"))

		_, err := ed.Submit(ctx)
		require.Error(t, err)

		rec, err := ed.Submit(ctx)
		require.NoError(t, err)
		_, data, err := editor.DecodeDataURL(rec.Attachment.Data)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("キャンセル済みのcontext", func(t *testing.T) {
		repo := new(MockRepository)
		ed := editor.NewEdit(repo, existing)
		ed.Attach("new.txt", strings.NewReader("new"))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ed.Submit(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEditor_SubmitIsNotReentrant(t *testing.T) {
	defer goleak.VerifyNone(t)

	entered := make(chan struct{})
	release := make(chan struct{})

	repo := new(MockRepository)
	repo.On("Add", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(nil).Once()

	ed := editor.NewCreate(repo, fixedIDs{ulid.Make().String()})
	ed.SetForm(validForm())

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = ed.Submit(context.Background())
	}()

	<-entered
	_, err := ed.Submit(context.Background())
	assert.ErrorIs(t, err, editor.ErrSubmitInProgress)

	close(release)
	wg.Wait()
	assert.NoError(t, firstErr)
	repo.AssertNumberOfCalls(t, "Add", 1)
}

func TestULIDGen(t *testing.T) {
	gen := editor.NewULIDGen()
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 100; i++ {
		id, err := gen.New()
		require.NoError(t, err)
		assert.False(t, seen[id])
		assert.Greater(t, id, prev)
		seen[id] = true
		prev = id
	}
}

func TestDataURL(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	url := editor.EncodeDataURL(png)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	mimeType, size, err := editor.DataURLInfo(url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, len(png), size)

	for _, bad := range []string{"", "aGVsbG8=", "data:text/plain,hello", "data:text/plain;base64"} {
		_, _, err := editor.DecodeDataURL(bad)
		assert.ErrorIs(t, err, editor.ErrInvalidDataURL, bad)
	}

	_, _, err = editor.DecodeDataURL("data:text/plain;base64,!!!")
	assert.ErrorIs(t, err, editor.ErrInvalidDataURL)
}
