package datasource

import "github.com/rediwo/redi-datasource/query"

// ApplyListPaging skips to the requested page and takes one page of
// records. A page past the end of totalCount is pulled back to the last
// page.
func (ds *StandardDataSource[T]) ApplyListPaging(q *query.Query[T], req *ListRequest, totalCount int) (*query.Query[T], int, int) {
	page := 1
	if req.Page != nil {
		page = max(*req.Page, 1)
	}
	pageSize := ds.Options.DefaultPageSize
	if req.PageSize != nil {
		pageSize = *req.PageSize
	}
	pageSize = max(min(pageSize, ds.Options.MaxPageSize), 1)

	if totalCount >= 0 && (page-1)*pageSize > totalCount {
		page = max((totalCount-1)/pageSize+1, 1)
	}

	if page > 1 {
		q = q.Skip((page - 1) * pageSize)
	}
	return q.Take(pageSize), page, pageSize
}
