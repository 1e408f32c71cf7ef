package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"memo-registry/src/domain"
	"memo-registry/src/editor"
	"memo-registry/src/repository"
	"memo-registry/src/stats"
	"memo-registry/src/usecase"
	"memo-registry/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MemoHandler handles HTTP requests for memo operations
type MemoHandler struct {
	registry  *usecase.Registry
	validator *validator.CustomValidator
	logger    *logrus.Logger
}

// NewMemoHandler creates a new memo handler
func NewMemoHandler(registry *usecase.Registry, logger *logrus.Logger) *MemoHandler {
	return &MemoHandler{
		registry:  registry,
		validator: validator.NewCustomValidator(),
		logger:    logger,
	}
}

// CreateMemo creates a new memo from a JSON or multipart body
func (h *MemoHandler) CreateMemo(c *gin.Context) {
	req, file, ok := h.bindMemoRequest(c)
	if !ok {
		return
	}

	res, err := h.registry.CreateMemo(c.Request.Context(), req.toForm(), file)
	if err != nil {
		h.logger.WithError(err).Error("メモの作成に失敗")
		respondError(c, err, "Failed to create memo")
		return
	}

	h.logger.WithField("memo_id", res.Memo.ID).Info("メモを作成しました")
	c.JSON(http.StatusCreated, toMemoResultDTO(res))
}

// GetMemo retrieves a memo by ID
func (h *MemoHandler) GetMemo(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	memo, err := h.registry.GetMemo(id)
	if err != nil {
		respondError(c, err, "Failed to get memo")
		return
	}

	c.JSON(http.StatusOK, toMemoResponseDTO(memo))
}

// ListMemos filters, sorts and pages memos from query parameters
func (h *MemoHandler) ListMemos(c *gin.Context) {
	var filterDTO MemoFilterDTO
	if err := c.ShouldBindQuery(&filterDTO); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&filterDTO); err != nil {
		respondValidation(c, err)
		return
	}

	field, err := domain.ParseSortField(filterDTO.Sort)
	if err != nil {
		respondError(c, err, "Invalid query parameters")
		return
	}
	spec := domain.SortSpec{Field: field, Direction: domain.ParseDirection(filterDTO.Order)}
	criteria := filterDTO.toCriteria()

	res := h.registry.ListMemos(criteria, spec, filterDTO.Page)
	c.JSON(http.StatusOK, toListResponse(res, criteria, spec))
}

// UpdateMemo replaces an existing memo
func (h *MemoHandler) UpdateMemo(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	req, file, ok := h.bindMemoRequest(c)
	if !ok {
		return
	}

	res, err := h.registry.UpdateMemo(c.Request.Context(), id, req.toForm(), file, req.ClearAttachment)
	if err != nil {
		h.logger.WithError(err).WithField("memo_id", id).Error("メモの更新に失敗")
		respondError(c, err, "Failed to update memo")
		return
	}

	h.logger.WithField("memo_id", id).Info("メモを更新しました")
	c.JSON(http.StatusOK, toMemoResultDTO(res))
}

// DeleteMemo deletes a memo when the request carries confirm=true
func (h *MemoHandler) DeleteMemo(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	confirmer := usecase.ConfirmFunc(func(context.Context, string) bool {
		return c.Query("confirm") == "true"
	})

	deleted, warning, err := h.registry.DeleteMemo(c.Request.Context(), id, confirmer)
	if err != nil {
		h.logger.WithError(err).WithField("memo_id", id).Error("メモの削除に失敗")
		respondError(c, err, "Failed to delete memo")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"warning": warning,
	})
}

// DownloadAttachment serves the decoded attachment of a memo
func (h *MemoHandler) DownloadAttachment(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	memo, err := h.registry.GetMemo(id)
	if err != nil {
		respondError(c, err, "Failed to get memo")
		return
	}
	if memo.Attachment == nil {
		c.JSON(http.StatusNotFound, ErrorResponseDTO{Error: "Attachment not found"})
		return
	}

	mimeType, data, err := editor.DecodeDataURL(memo.Attachment.Data)
	if err != nil {
		h.logger.WithError(err).WithField("memo_id", id).Error("添付ファイルの復号に失敗")
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{Error: "Attachment is corrupt"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(memo.Attachment.Name))
	c.Data(http.StatusOK, mimeType, data)
}

// Sync retries persistence after a failed write
func (h *MemoHandler) Sync(c *gin.Context) {
	if err := h.registry.Sync(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("再同期に失敗")
		c.JSON(http.StatusServiceUnavailable, ErrorResponseDTO{
			Error:   "Failed to sync",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dirty": h.registry.Dirty()})
}

// bindMemoRequest reads a memo body from JSON or multipart form data
func (h *MemoHandler) bindMemoRequest(c *gin.Context) (MemoRequestDTO, *usecase.FileInput, bool) {
	var req MemoRequestDTO
	var file *usecase.FileInput

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			h.respondBind(c, err)
			return req, nil, false
		}
		fh, err := c.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			h.respondBind(c, err)
			return req, nil, false
		default:
			if file, err = openUpload(fh); err != nil {
				h.respondBind(c, err)
				return req, nil, false
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respondBind(c, err)
			return req, nil, false
		}
	}

	req.MemoNumber = h.validator.NormalizeText(req.MemoNumber)
	req.Teacher = h.validator.NormalizeText(req.Teacher)
	req.Subject = h.validator.NormalizeText(req.Subject)
	req.Department = h.validator.NormalizeText(req.Department)
	req.Date = strings.TrimSpace(req.Date)

	if err := h.validator.Validate(&req); err != nil {
		respondValidation(c, err)
		return req, nil, false
	}

	if req.Attachment != nil && file == nil {
		data, err := base64.StdEncoding.DecodeString(req.Attachment.Content)
		if err != nil {
			h.respondBind(c, err)
			return req, nil, false
		}
		file = &usecase.FileInput{Name: req.Attachment.Name, Reader: bytes.NewReader(data)}
	}

	return req, file, true
}

func (h *MemoHandler) bindID(c *gin.Context) (string, bool) {
	id, err := h.validator.ValidateID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid memo ID",
			Message: err.Error(),
		})
		return "", false
	}
	return id, true
}

func (h *MemoHandler) respondBind(c *gin.Context, err error) {
	h.logger.WithError(err).Error("リクエストのバインドに失敗")
	c.JSON(http.StatusBadRequest, ErrorResponseDTO{
		Error:   "Invalid request format",
		Message: err.Error(),
	})
}

func respondValidation(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Validation failed",
			Message: ve.Error(),
			Details: ve.Errors,
		})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponseDTO{
		Error:   "Validation failed",
		Message: err.Error(),
	})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error, title string) {
	var ve validator.ValidationErrors
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		respondValidation(c, err)
		return
	case errors.Is(err, repository.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateID), errors.Is(err, editor.ErrSubmitInProgress):
		status = http.StatusConflict
	case errors.Is(err, editor.ErrAttachmentTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidSortField), errors.Is(err, stats.ErrUnknownBucket):
		status = http.StatusBadRequest
	}

	c.JSON(status, ErrorResponseDTO{
		Error:   title,
		Message: err.Error(),
	})
}

func openUpload(fh *multipart.FileHeader) (*usecase.FileInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	// multipart のファイルはリクエスト終了時に破棄されるため読み切っておく
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return &usecase.FileInput{Name: fh.Filename, Reader: &buf}, nil
}

// Helper methods for conversion

func toMemoResponseDTO(memo domain.MemoRecord) MemoResponseDTO {
	dto := MemoResponseDTO{
		ID:         memo.ID,
		MemoNumber: memo.MemoNumber,
		Date:       memo.Date,
		Teacher:    memo.Teacher,
		Subject:    memo.Subject,
		Department: memo.Department,
	}
	if memo.Attachment != nil {
		info := &AttachmentInfoDTO{Name: memo.Attachment.Name}
		if mimeType, size, err := editor.DataURLInfo(memo.Attachment.Data); err == nil {
			info.MimeType = mimeType
			info.Size = size
		}
		dto.Attachment = info
	}
	return dto
}

func toMemoResponseDTOs(memos []domain.MemoRecord) []MemoResponseDTO {
	result := make([]MemoResponseDTO, len(memos))
	for i, memo := range memos {
		result[i] = toMemoResponseDTO(memo)
	}
	return result
}

func toMemoResultDTO(res usecase.Result) MemoResultDTO {
	return MemoResultDTO{
		Memo:    toMemoResponseDTO(res.Memo),
		Warning: res.Warning,
	}
}
