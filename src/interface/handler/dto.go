package handler

import (
	"memo-registry/src/domain"
	"memo-registry/src/editor"
	"memo-registry/src/query"
)

// MemoRequestDTO represents HTTP request for creating or updating a memo.
// Multipart requests carry the same fields as form values plus a "file" part.
type MemoRequestDTO struct {
	MemoNumber      string     `json:"memoNumber" form:"memoNumber" binding:"required" validate:"required,max=50,safe_text"`
	Date            string     `json:"date" form:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	Teacher         string     `json:"teacher" form:"teacher" binding:"required" validate:"required,max=100,safe_text"`
	Subject         string     `json:"subject" form:"subject" binding:"required" validate:"required,max=200,safe_text"`
	Department      string     `json:"department" form:"department" binding:"required" validate:"required,max=50,safe_label"`
	Attachment      *UploadDTO `json:"attachment,omitempty" form:"-" validate:"omitempty"`
	ClearAttachment bool       `json:"clearAttachment" form:"clearAttachment"`
}

// UploadDTO is an attachment sent inline in a JSON body
type UploadDTO struct {
	Name    string `json:"name" validate:"required,max=255,safe_filename"`
	Content string `json:"content" validate:"required,base64"`
}

// AttachmentInfoDTO describes an attachment without its content
type AttachmentInfoDTO struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

// MemoResponseDTO represents HTTP response for a memo
type MemoResponseDTO struct {
	ID         string             `json:"id"`
	MemoNumber string             `json:"memoNumber"`
	Date       string             `json:"date"`
	Teacher    string             `json:"teacher"`
	Subject    string             `json:"subject"`
	Department string             `json:"department"`
	Attachment *AttachmentInfoDTO `json:"attachment,omitempty"`
}

// MemoResultDTO represents HTTP response for a write
type MemoResultDTO struct {
	Memo    MemoResponseDTO `json:"memo"`
	Warning string          `json:"warning,omitempty"`
}

// MemoListResponseDTO represents HTTP response for memo list
type MemoListResponseDTO struct {
	Memos      []MemoResponseDTO     `json:"memos"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
	Criteria   domain.FilterCriteria `json:"criteria"`
	Sort       domain.SortSpec       `json:"sort"`
}

// MemoFilterDTO represents HTTP query parameters for filtering memos
type MemoFilterDTO struct {
	Subject    string `form:"subject" validate:"omitempty,max=200,safe_text"`
	Teacher    string `form:"teacher" validate:"omitempty,max=100,safe_text"`
	Department string `form:"department" validate:"omitempty,max=50,safe_label"`
	From       string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Sort       string `form:"sort" binding:"omitempty,oneof=memoNumber date teacher subject department"`
	Order      string `form:"order" binding:"omitempty,oneof=asc desc"`
	Page       int    `form:"page,default=1" binding:"min=1"`
}

// FilterRequestDTO represents the body of PUT /api/view/filter
type FilterRequestDTO struct {
	Subject    string `json:"subject" validate:"omitempty,max=200,safe_text"`
	Teacher    string `json:"teacher" validate:"omitempty,max=100,safe_text"`
	Department string `json:"department" validate:"omitempty,max=50,safe_label"`
	From       string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// DepartmentRequestDTO represents HTTP request for adding a department
type DepartmentRequestDTO struct {
	Name string `json:"name" binding:"required" validate:"required,max=50,safe_label"`
}

// DepartmentsResponseDTO represents HTTP response for the department list
type DepartmentsResponseDTO struct {
	Departments []string `json:"departments"`
	Added       *bool    `json:"added,omitempty"`
	Warning     string   `json:"warning,omitempty"`
}

// ChartSeriesDTO is a labelled numeric series for a chart
type ChartSeriesDTO struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// DepartmentStatsResponseDTO represents HTTP response for the bar chart
type DepartmentStatsResponseDTO struct {
	ChartSeriesDTO
	ByDepartment map[string]int `json:"by_department"`
	Total        int            `json:"total"`
}

// TimelineResponseDTO represents HTTP response for the line chart
type TimelineResponseDTO struct {
	Bucket string `json:"bucket"`
	ChartSeriesDTO
}

// ErrorResponseDTO represents HTTP error response
type ErrorResponseDTO struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (d MemoRequestDTO) toForm() editor.Form {
	return editor.Form{
		MemoNumber: d.MemoNumber,
		Date:       d.Date,
		Teacher:    d.Teacher,
		Subject:    d.Subject,
		Department: d.Department,
	}
}

func (d MemoFilterDTO) toCriteria() domain.FilterCriteria {
	return domain.FilterCriteria{
		Subject:    d.Subject,
		Teacher:    d.Teacher,
		Department: d.Department,
		From:       d.From,
		To:         d.To,
	}
}

func (d FilterRequestDTO) toCriteria() domain.FilterCriteria {
	return domain.FilterCriteria(d)
}

func toListResponse(res query.Result, c domain.FilterCriteria, s domain.SortSpec) MemoListResponseDTO {
	return MemoListResponseDTO{
		Memos:      toMemoResponseDTOs(res.Records),
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
		Criteria:   c,
		Sort:       s,
	}
}
