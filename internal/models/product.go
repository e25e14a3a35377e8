package models

// ProductFeatures are the purchase-policy flags shown on product
// cards. SevenDayReturns gates return requests after delivery.
type ProductFeatures struct {
	CashOnDelivery  bool `json:"cash_on_delivery"`
	LowestPrice     bool `json:"lowest_price"`
	SevenDayReturns bool `json:"seven_day_returns"`
	FreeDelivery    bool `json:"free_delivery"`
}

type Product struct {
	BaseModel
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Category     string          `gorm:"index" json:"category"`
	CurrentPrice float64         `json:"current_price"`
	SellingPrice float64         `json:"selling_price"`
	Details      string          `json:"details"`
	ImageURLs    []string        `gorm:"serializer:json" json:"image_urls"`
	Sizes        []string        `gorm:"serializer:json" json:"sizes"`
	Features     ProductFeatures `gorm:"embedded;embeddedPrefix:feature_" json:"features"`
}
