package review

import "time"

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Rating    int       `json:"rating"`
	Title     *string   `json:"title,omitempty"`
	Comment   *string   `json:"comment,omitempty"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateInput struct {
	ProductID string  `json:"productId"`
	Rating    int     `json:"rating"`
	Title     *string `json:"title"`
	Comment   *string `json:"comment"`
}
