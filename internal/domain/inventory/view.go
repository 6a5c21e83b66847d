package inventory

import "github.com/tbeauty/backend/internal/domain/catalog"

// ItemView is an item joined with its catalog product for listing
type ItemView struct {
	Item
	Product *catalog.Product
}
