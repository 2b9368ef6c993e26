package datasource

import "github.com/rediwo/redi-datasource/utils"

// TrimListFields keeps only the requested fields of each item. Unknown
// field names are ignored; with none requested the items are returned as is.
func (ds *StandardDataSource[T]) TrimListFields(items []T, req *ListRequest) []T {
	requested := req.FieldList()
	if len(requested) == 0 {
		return items
	}

	var names []string
	for _, f := range requested {
		if p := ds.Class.ClientPropertyByName(f); p != nil {
			names = append(names, p.Name)
		}
	}
	for i, item := range items {
		items[i] = utils.Project(item, names)
	}
	return items
}
