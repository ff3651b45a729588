package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/stock-ledger/internal/models"
)

// flexID accepts identifiers sent either as JSON numbers or strings.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a number or string: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

// flexInt accepts integers sent either as JSON numbers or numeric strings.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("expected integer, got %s", string(data))
	}
	*n = flexInt(v)
	return nil
}

// productPayload keeps optional fields as pointers so a listing that leaves
// them out is not mistaken for one that clears them.
type productPayload struct {
	ID        flexID   `json:"id"`
	Name      string   `json:"name"`
	Category  *string  `json:"category"`
	Brand     *string  `json:"brand"`
	Warehouse *string  `json:"warehouse"`
	Barcode   *string  `json:"barcode"`
	Stock     *flexInt `json:"stock"`
}

func (p productPayload) toModel() models.RemoteProduct {
	rp := models.RemoteProduct{ID: string(p.ID), Name: p.Name}
	optional := func(v *string, dst *string, f models.RemoteField) {
		if v == nil {
			rp.Omitted |= f
			return
		}
		*dst = *v
	}
	optional(p.Category, &rp.Category, models.RemoteCategory)
	optional(p.Brand, &rp.Brand, models.RemoteBrand)
	optional(p.Warehouse, &rp.Warehouse, models.RemoteWarehouse)
	optional(p.Barcode, &rp.Barcode, models.RemoteBarcode)
	if p.Stock == nil {
		rp.Omitted |= models.RemoteStock
	} else {
		rp.Stock = int(*p.Stock)
	}
	return rp
}

type CreateProductRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	Barcode   string `json:"barcode,omitempty"`
	Stock     int    `json:"stock"`
	UnitID    int    `json:"unit_id,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    flexID `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  struct {
			ID   flexID `json:"id"`
			Name string `json:"name"`
		} `json:"role"`
	} `json:"user"`
}

type errorResponse struct {
	Message string `json:"message"`
}
