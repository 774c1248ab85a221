package domain

import "time"

// Record is one product sale as served by the API.
type Record struct {
	ID          int64     `db:"id" bson:"id" json:"id"`
	Title       string    `db:"title" bson:"title" json:"title"`
	Price       float64   `db:"price" bson:"price" json:"price"`
	Description string    `db:"description" bson:"description" json:"description"`
	Category    string    `db:"category" bson:"category" json:"category"`
	Image       string    `db:"image" bson:"image" json:"image"`
	Sold        bool      `db:"sold" bson:"sold" json:"sold"`
	DateOfSale  time.Time `db:"-" bson:"dateOfSale" json:"dateOfSale"`
}

// Statistics holds the monthly totals.
type Statistics struct {
	TotalSaleAmount   float64 `json:"totalSaleAmount"`
	TotalSoldItems    int64   `json:"totalSoldItems"`
	TotalNotSoldItems int64   `json:"totalNotSoldItems"`
}

// PriceRangeCount is one entry of the price histogram.
type PriceRangeCount struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// CategoryCount is one entry of the category histogram.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
