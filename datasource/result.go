package datasource

import jsoniter "github.com/json-iterator/go"

// ListResult is one page of a list request.
type ListResult[T any] struct {
	WasSuccessful bool
	Message       string
	Page          int
	PageSize      int
	TotalCount    int
	List          []T
}

func NewListResult[T any](list []T, page, pageSize, totalCount int) *ListResult[T] {
	return &ListResult[T]{
		WasSuccessful: true,
		Page:          page,
		PageSize:      pageSize,
		TotalCount:    totalCount,
		List:          list,
	}
}

// FailedListResult reports a failure to an outer layer that answers with
// results rather than errors.
func FailedListResult[T any](message string) *ListResult[T] {
	return &ListResult[T]{Message: message}
}

func (r *ListResult[T]) PageCount() int { return PageCount(r.TotalCount, r.PageSize) }

// PageCount is ceil(totalCount/pageSize), or 0 for a zero page size.
func PageCount(totalCount, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

func (r *ListResult[T]) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(struct {
		WasSuccessful bool   `json:"wasSuccessful"`
		Message       string `json:"message,omitempty"`
		Page          int    `json:"page"`
		PageSize      int    `json:"pageSize"`
		PageCount     int    `json:"pageCount"`
		TotalCount    int    `json:"totalCount"`
		List          []T    `json:"list"`
	}{r.WasSuccessful, r.Message, r.Page, r.PageSize, r.PageCount(), r.TotalCount, r.List})
}
