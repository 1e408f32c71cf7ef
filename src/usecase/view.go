package usecase

import (
	"memo-registry/src/domain"
	"memo-registry/src/query"
)

// View is the transient state of the main table
type View struct {
	Criteria domain.FilterCriteria `json:"criteria"`
	Sort     domain.SortSpec       `json:"sort"`
	Page     domain.PageState      `json:"page"`
}

func newView(pageSize int) View {
	return View{Page: domain.PageState{Page: 1, Size: pageSize}}
}

// ViewPage is a rendered snapshot of the main view
type ViewPage struct {
	Criteria domain.FilterCriteria `json:"criteria"`
	Sort     domain.SortSpec       `json:"sort"`
	query.Result
}

// View renders the current page, clamping it to the filtered count
func (r *Registry) View() ViewPage {
	r.viewMu.Lock()
	defer r.viewMu.Unlock()

	return r.renderLocked()
}

// SetCriteria replaces the filter criteria
func (r *Registry) SetCriteria(c domain.FilterCriteria) ViewPage {
	r.viewMu.Lock()
	defer r.viewMu.Unlock()

	r.view.Criteria = c
	return r.renderLocked()
}

// ToggleSort clicks the header of field
func (r *Registry) ToggleSort(field domain.SortField) (ViewPage, error) {
	if !field.IsValid() {
		return ViewPage{}, domain.ErrInvalidSortField
	}

	r.viewMu.Lock()
	defer r.viewMu.Unlock()

	r.view.Sort = r.view.Sort.Toggle(field)
	return r.renderLocked(), nil
}

// SetPage moves to page n, clamped to the available pages
func (r *Registry) SetPage(n int) ViewPage {
	r.viewMu.Lock()
	defer r.viewMu.Unlock()

	r.view.Page.Page = n
	return r.renderLocked()
}

// ResetView clears criteria, sort and page
func (r *Registry) ResetView() ViewPage {
	r.viewMu.Lock()
	defer r.viewMu.Unlock()

	r.view = newView(r.pageSize)
	return r.renderLocked()
}

func (r *Registry) renderLocked() ViewPage {
	res := query.Run(r.repo.List(), r.view.Criteria, r.view.Sort, r.view.Page)
	r.view.Page.Page = res.Page
	return ViewPage{
		Criteria: r.view.Criteria,
		Sort:     r.view.Sort,
		Result:   res,
	}
}
