package query_test

import (
	"fmt"
	"testing"

	"memo-registry/src/domain"
	"memo-registry/src/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memo(id, date, teacher, subject, dept string) domain.MemoRecord {
	return domain.MemoRecord{
		ID:         id,
		MemoNumber: "No-" + id,
		Date:       date,
		Teacher:    teacher,
		Subject:    subject,
		Department: dept,
	}
}

func sample() []domain.MemoRecord {
	return []domain.MemoRecord{
		memo("1", "2024-01-10", "山田", "Budget Review", "予算課"),
		memo("2", "2024-02-05", "佐藤", "卒業式の準備", "教務課"),
		memo("3", "2024-02-20", "山田", "budget plan", "予算課"),
		memo("4", "2024-03-01", "鈴木", "人事異動", "人事課"),
		memo("5", "bad-date", "山田", "備品購入", "総務課"),
	}
}

func ids(records []domain.MemoRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria domain.FilterCriteria
		want     []string
	}{
		{"条件なし", domain.FilterCriteria{}, []string{"1", "2", "3", "4", "5"}},
		{"件名は大文字小文字を無視した部分一致", domain.FilterCriteria{Subject: "BUDGET"}, []string{"1", "3"}},
		{"担当者は完全一致", domain.FilterCriteria{Teacher: "山田"}, []string{"1", "3", "5"}},
		{"担当者の部分一致はしない", domain.FilterCriteria{Teacher: "山"}, []string{}},
		{"部署", domain.FilterCriteria{Department: "予算課"}, []string{"1", "3"}},
		{"開始日のみ", domain.FilterCriteria{From: "2024-02-05"}, []string{"2", "3", "4"}},
		{"終了日はその日を含む", domain.FilterCriteria{To: "2024-02-20"}, []string{"1", "2", "3"}},
		{"期間と担当者", domain.FilterCriteria{Teacher: "山田", From: "2024-02-01", To: "2024-12-31"}, []string{"3"}},
		{"不正な日付の境界は無視", domain.FilterCriteria{From: "2024/02/01"}, []string{"1", "2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(query.Filter(sample(), tt.criteria)))
		})
	}
}

func TestFilter_SubsetAndOrder(t *testing.T) {
	records := sample()
	criteria := []domain.FilterCriteria{
		{Subject: "b"},
		{Department: "予算課", To: "2024-01-31"},
		{Teacher: "鈴木", Subject: "異動"},
	}

	for _, c := range criteria {
		got := query.Filter(records, c)
		// 結果は入力の部分列であり、順序を保つ
		j := 0
		for _, g := range got {
			for j < len(records) && records[j].ID != g.ID {
				j++
			}
			require.Less(t, j, len(records), "%+v is not a subsequence", c)
			j++
		}
	}
}

func TestSort(t *testing.T) {
	records := []domain.MemoRecord{
		memo("a", "2024-03-01", "佐藤", "x", "教務課"),
		memo("b", "invalid", "山田", "y", "予算課"),
		memo("c", "2024-01-15", "佐藤", "z", "教務課"),
		memo("d", "2024-02-10", "鈴木", "w", "人事課"),
	}

	tests := []struct {
		name string
		spec domain.SortSpec
		want []string
	}{
		{"未設定は入力順", domain.SortSpec{}, []string{"a", "b", "c", "d"}},
		{"日付昇順で不正な日付は最後", domain.SortSpec{Field: domain.SortDate, Direction: domain.Ascending}, []string{"c", "d", "a", "b"}},
		{"日付降順でも不正な日付は最後", domain.SortSpec{Field: domain.SortDate, Direction: domain.Descending}, []string{"a", "d", "c", "b"}},
		{"担当者昇順は安定", domain.SortSpec{Field: domain.SortTeacher, Direction: domain.Ascending}, []string{"a", "c", "b", "d"}},
		{"担当者降順も安定", domain.SortSpec{Field: domain.SortTeacher, Direction: domain.Descending}, []string{"d", "b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.Sort(records, tt.spec)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("入力を変更しない", func(t *testing.T) {
		_ = query.Sort(records, domain.SortSpec{Field: domain.SortDate, Direction: domain.Descending})
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(records))
	})
}

func TestPaginate(t *testing.T) {
	records := make([]domain.MemoRecord, 23)
	for i := range records {
		records[i] = memo(fmt.Sprint(i), "2024-01-01", "t", "s", "d")
	}

	t.Run("全ページの合計は件数に等しい", func(t *testing.T) {
		_, totalPages := query.Paginate(records, 1, 10)
		require.Equal(t, 3, totalPages)

		sum := 0
		for p := 1; p <= totalPages; p++ {
			page, _ := query.Paginate(records, p, 10)
			sum += len(page)
		}
		assert.Equal(t, len(records), sum)
	})

	t.Run("最終ページは端数", func(t *testing.T) {
		page, _ := query.Paginate(records, 3, 10)
		assert.Equal(t, []string{"20", "21", "22"}, ids(page))
	})

	t.Run("範囲外は空", func(t *testing.T) {
		page, totalPages := query.Paginate(records, 4, 10)
		assert.Empty(t, page)
		assert.Equal(t, 3, totalPages)
	})

	t.Run("0件は1ページで空", func(t *testing.T) {
		page, totalPages := query.Paginate(nil, 1, 10)
		assert.Empty(t, page)
		assert.Equal(t, 1, totalPages)
	})
}

func TestRun(t *testing.T) {
	records := make([]domain.MemoRecord, 0, 15)
	for i := 1; i <= 15; i++ {
		dept := "教務課"
		if i%3 == 0 {
			dept = "予算課"
		}
		records = append(records, memo(fmt.Sprintf("%02d", i), fmt.Sprintf("2024-01-%02d", i), "t", "s", dept))
	}

	t.Run("絞り込み後に並べ替えてページ分割", func(t *testing.T) {
		res := query.Run(records, domain.FilterCriteria{Department: "教務課"},
			domain.SortSpec{Field: domain.SortDate, Direction: domain.Descending},
			domain.PageState{Page: 1, Size: 5})

		assert.Equal(t, 10, res.Total)
		assert.Equal(t, 2, res.TotalPages)
		assert.Equal(t, []string{"14", "13", "11", "10", "08"}, ids(res.Records))
	})

	t.Run("ページは絞り込み件数に丸める", func(t *testing.T) {
		res := query.Run(records, domain.FilterCriteria{Department: "予算課"}, domain.SortSpec{},
			domain.PageState{Page: 2, Size: 10})

		assert.Equal(t, 5, res.Total)
		assert.Equal(t, 1, res.Page)
		assert.Len(t, res.Records, 5)
	})
}
