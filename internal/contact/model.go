package contact

import (
	"time"

	"github.com/uptrace/bun"
)

type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:c"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	Mobile    string    `bun:"mobile,notnull" json:"mobile"`
	Message   string    `bun:"message,notnull" json:"message"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type CreateRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Mobile  string `json:"mobile" validate:"required,min=7,max=20"`
	Message string `json:"message" validate:"required,max=5000"`
}

type BulkDeleteRequest struct {
	ContactIDs []int `json:"contact_ids" validate:"required,min=1,dive,gt=0"`
}

type ReceivedEvent struct {
	ContactID int    `json:"contact_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
}
