package dto

type AddStockEntryInput struct {
	VariantID string `json:"-"`
	SizeID    string `json:"size_id" binding:"required"`
}

type AdjustStockInput struct {
	StockEntryID string `json:"-"`
	MovementType string `json:"movement_type" binding:"required"` // entry | exit
	Quantity     int    `json:"quantity" binding:"required"`
	Notes        string `json:"notes"`
	UserID       string `json:"-"`
}

type SetBarcodeInput struct {
	StockEntryID string `json:"-"`
	Barcode      string `json:"barcode"`
}
