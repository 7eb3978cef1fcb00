package collection

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
)

// Item is one inscription of the bridged collection. TokenId is the item's
// index among surviving items after malformed entries are skipped.
type Item struct {
	InscriptionId string          `json:"id"`
	TokenId       int64           `json:"tokenId"`
	Meta          json.RawMessage `json:"meta,omitempty"`
}

// Collection is the static registry mapping inscription ids to token ids.
// It is loaded once at startup and never mutated.
type Collection struct {
	name    string
	symbol  string
	items   []*Item
	byId    map[string]*Item
	byToken map[int64]*Item
}

type fileItem struct {
	Id   string          `json:"id"`
	Meta json.RawMessage `json:"meta"`
}

// LoadFromFile reads a JSON array of {id, meta} items. Items with an empty id
// or an id already seen are skipped; token ids are assigned densely over the
// survivors.
func LoadFromFile(path, name, symbol string) (*Collection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read collection file %q", path)
	}
	var fileItems []fileItem
	if err := json.Unmarshal(raw, &fileItems); err != nil {
		return nil, errors.Wrapf(err, "failed to parse collection file %q", path)
	}

	c := &Collection{
		name:    name,
		symbol:  symbol,
		byId:    make(map[string]*Item, len(fileItems)),
		byToken: make(map[int64]*Item, len(fileItems)),
	}
	for _, fi := range fileItems {
		if fi.Id == "" {
			continue
		}
		if _, ok := c.byId[fi.Id]; ok {
			continue
		}
		item := &Item{
			InscriptionId: fi.Id,
			TokenId:       int64(len(c.items)),
			Meta:          fi.Meta,
		}
		c.items = append(c.items, item)
		c.byId[item.InscriptionId] = item
		c.byToken[item.TokenId] = item
	}
	return c, nil
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Symbol() string {
	return c.symbol
}

func (c *Collection) Size() int {
	return len(c.items)
}

func (c *Collection) Items() []*Item {
	return c.items
}

func (c *Collection) ByInscriptionId(id string) (*Item, bool) {
	item, ok := c.byId[id]
	return item, ok
}

func (c *Collection) ByTokenId(tokenId int64) (*Item, bool) {
	item, ok := c.byToken[tokenId]
	return item, ok
}

func (c *Collection) Contains(id string) bool {
	_, ok := c.byId[id]
	return ok
}
