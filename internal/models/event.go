package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   string    `bun:"description,notnull" json:"description"`
	StartDate     DateOnly  `bun:"start_date,notnull,type:date" json:"startDate"`
	EndDate       DateOnly  `bun:"end_date,notnull,type:date" json:"endDate"`
	ImageURL      *string   `bun:"image_url" json:"imageUrl"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
}
