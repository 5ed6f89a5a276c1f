package types

// Filter — универсальные параметры списочных запросов (фильтрация,
// сортировка, пагинация), разобранные из query string.
type Filter struct {
	Filter         map[string]interface{}
	Sort           map[string]string
	Search         string
	Page           int
	Limit          int
	Offset         int
	WithPagination bool
}
