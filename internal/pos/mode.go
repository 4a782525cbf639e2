package pos

import (
	"github.com/fekuna/omnipos-retail-service/internal/catalog"
	"github.com/fekuna/omnipos-retail-service/internal/model"
)

// Mode is what the counter screen is showing. The set of modes is closed.
type Mode interface {
	isMode()
	String() string
}

// Browsing is the idle screen with the last search results.
type Browsing struct {
	Query   string
	Results []model.Product
}

// SelectingVariant shows the color and size picker for one product.
type SelectingVariant struct {
	Product *model.Product
}

// ConfirmingItem shows a resolved item before it goes into the cart.
type ConfirmingItem struct {
	Match catalog.Match
}

// Scanning holds the scanner session open.
type Scanning struct{}

// Paying shows the settlement form.
type Paying struct{}

func (Browsing) isMode()         {}
func (SelectingVariant) isMode() {}
func (ConfirmingItem) isMode()   {}
func (Scanning) isMode()         {}
func (Paying) isMode()           {}

func (Browsing) String() string         { return "browsing" }
func (SelectingVariant) String() string { return "selecting-variant" }
func (ConfirmingItem) String() string   { return "confirming-item" }
func (Scanning) String() string         { return "scanning" }
func (Paying) String() string           { return "paying" }
