package models

import (
	"time"
)

type Client struct {
	ID     int    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name   string `gorm:"index;not null"            json:"name"`
	Email  string `gorm:"uniqueIndex;not null"      json:"email"`
	Phone  string `gorm:"not null"                  json:"phone"`
	Image  string `json:"image,omitempty"`
	Active bool   `gorm:"default:true"              json:"-"`
}

type Instrument struct {
	ID     int     `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name   string  `gorm:"index;not null"            json:"name"`
	Brand  string  `gorm:"not null"                  json:"brand"`
	Price  float64 `gorm:"not null"                  json:"price"`
	Stock  uint    `json:"stock"`
	Image  string  `json:"image,omitempty"`
	Active bool    `gorm:"default:true"              json:"-"`
}

type Order struct {
	ID           int        `gorm:"primaryKey;autoIncrement"  json:"id"`
	ClientID     int        `gorm:"index;not null"            json:"client_id"`
	Client       Client     `json:"-"`
	InstrumentID int        `gorm:"index;not null"            json:"instrument_id"`
	Instrument   Instrument `json:"-"`
	Quantity     uint       `gorm:"check:quantity>0"          json:"quantity"`
	Total        float64    `gorm:"not null"                  json:"total"`
	CreatedAt    time.Time  `json:"created_at"`
	Active       bool       `gorm:"default:true"              json:"-"`
}
