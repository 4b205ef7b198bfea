package api

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-menu-cache/store"
)

const (
	maxTitleLength       = 60
	maxDescriptionLength = 200
)

// priceFormat fits the decimal(10,2) price column.
var priceFormat = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// priceText keeps the price exactly as the client wrote it. Both JSON
// strings and JSON numbers are accepted.
type priceText string

func (p *priceText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = priceText(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("price must be a string or a number")
	}
	*p = priceText(n.String())
	return nil
}

type menuRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r menuRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, maxTitleLength)),
		validation.Field(&r.Description, validation.RuneLength(0, maxDescriptionLength)),
	)
}

func (r menuRequest) menuInput() store.MenuInput {
	return store.MenuInput{Title: r.Title, Description: r.Description}
}

func (r menuRequest) subMenuInput() store.SubMenuInput {
	return store.SubMenuInput{Title: r.Title, Description: r.Description}
}

type dishRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       priceText `json:"price"`
}

func (r dishRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, maxTitleLength)),
		validation.Field(&r.Description, validation.RuneLength(0, maxDescriptionLength)),
		validation.Field(&r.Price, validation.Required, validation.Match(priceFormat).Error("must be a decimal below 100000000 with at most two fractional digits")),
	)
}

// dishInput must only be called on a validated request.
func (r dishRequest) dishInput() (store.DishInput, error) {
	price, err := decimal.NewFromString(string(r.Price))
	if err != nil {
		return store.DishInput{}, err
	}
	return store.DishInput{Title: r.Title, Description: r.Description, Price: price}, nil
}
