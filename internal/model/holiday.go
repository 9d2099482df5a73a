package model

// Holiday marks a non-working date excluded from attendance statistics.
type Holiday struct {
	ID   int    `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// HolidayRequest is the payload for declaring a holiday.
type HolidayRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Name string `json:"name" binding:"required,min=2,max=100"`
}
