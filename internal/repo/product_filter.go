package repo

type ProductFilter struct {
	Name      string
	Category  string
	Warehouse string
	MinStock  *int
	MaxStock  *int
	LowStock  bool
	Offset    *int
	Limit     *int
}
