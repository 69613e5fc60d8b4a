package catalog

import (
	id "licensio/pkg/domain"
)

// Product is a licensable offering. Credentials reference products by ID and
// never embed them.
type Product struct {
	ID          id.ProductID
	Name        string
	Slug        string
	Description string
}

// Public is the transport projection of a product.
type Public struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (p Product) ToPublic() Public {
	return Public{
		ID:          p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
	}
}
