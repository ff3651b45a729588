package models

// RemoteField names an optional field of a remote product payload.
type RemoteField uint8

const (
	RemoteCategory RemoteField = 1 << iota
	RemoteBrand
	RemoteWarehouse
	RemoteBarcode
	RemoteStock
)

// RemoteProduct is a product as confirmed by the remote catalog service.
// Omitted marks fields the service did not send; their zero values carry no
// information.
type RemoteProduct struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Brand     string      `json:"brand"`
	Warehouse string      `json:"warehouse"`
	Barcode   string      `json:"barcode,omitempty"`
	Stock     int         `json:"stock"`
	Omitted   RemoteField `json:"-"`
}

func (rp RemoteProduct) Has(f RemoteField) bool {
	return rp.Omitted&f == 0
}

func (rp RemoteProduct) Details() ProductDetails {
	return ProductDetails{
		Name:      rp.Name,
		Category:  rp.Category,
		Brand:     rp.Brand,
		Warehouse: rp.Warehouse,
		Barcode:   rp.Barcode,
	}
}

// Over returns the details of p with every field rp carries replaced.
func (rp RemoteProduct) Over(p Product) ProductDetails {
	d := p.Details()
	d.Name = rp.Name
	if rp.Has(RemoteCategory) {
		d.Category = rp.Category
	}
	if rp.Has(RemoteBrand) {
		d.Brand = rp.Brand
	}
	if rp.Has(RemoteWarehouse) {
		d.Warehouse = rp.Warehouse
	}
	if rp.Has(RemoteBarcode) {
		d.Barcode = rp.Barcode
	}
	return d
}
