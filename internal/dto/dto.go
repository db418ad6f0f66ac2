package dto

import "github.com/sta4888/TZL/internal/model"

// Request is a single decoded protocol line. ItemID is a pointer so a
// missing field can be told apart from item id 0.
type Request struct {
	Action   string `json:"action"`
	Nickname string `json:"nickname,omitempty"`
	ItemID   *int   `json:"item_id,omitempty"`
}

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type LoginResponse struct {
	Status      string         `json:"status"`
	Action      string         `json:"action"`
	Account     *model.Account `json:"account"`
	ItemsMaster []model.Item   `json:"items_master"`
	LoginBonus  int            `json:"login_bonus"`
}

type LogoutResponse struct {
	Status string `json:"status"`
	Action string `json:"action"`
}

type WhoAmIResponse struct {
	Status  string         `json:"status"`
	Account *model.Account `json:"account"`
}

type BuyResponse struct {
	Status  string         `json:"status"`
	Action  string         `json:"action"`
	Account *model.Account `json:"account"`
	Bought  *model.Item    `json:"bought"`
}

type SellResponse struct {
	Status   string         `json:"status"`
	Action   string         `json:"action"`
	Account  *model.Account `json:"account"`
	Sold     *model.Item    `json:"sold"`
	Received int            `json:"received"`
}

// LoginResult is what the service hands back to the transport layer
// after a successful login.
type LoginResult struct {
	Account     *model.Account
	ItemsMaster []model.Item
	LoginBonus  int
}

type BuyResult struct {
	Account *model.Account
	Bought  *model.Item
}

type SellResult struct {
	Account  *model.Account
	Sold     *model.Item
	Received int
}
