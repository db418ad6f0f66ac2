package model

// Account is the persisted player record keyed by nickname.
type Account struct {
	Nickname string `json:"nickname"`
	Credits  int    `json:"credits"`
	Items    []int  `json:"items"`
}

// Item is a single catalog entry. Accounts hold only item ids;
// the catalog is the sole source of item definitions.
type Item struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}
