package client

import (
	"encoding/json"
	"fmt"

	"rickmorty/viewer/internal/domain"
)

// pagePayload mirrors the catalog response:
// { info: { count, pages, next, prev }, results: [ ...characters ] }
type pagePayload struct {
	Info    *pageInfo           `json:"info"`
	Results *[]domain.Character `json:"results"`
}

type pageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

func parseCatalogPage(body []byte) (*domain.CatalogPage, error) {
	var payload pagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}

	if payload.Results == nil {
		return nil, fmt.Errorf("payload has no results list")
	}
	if payload.Info == nil {
		return nil, fmt.Errorf("payload has no info object")
	}

	page := &domain.CatalogPage{
		Count: payload.Info.Count,
		Pages: payload.Info.Pages,
		Next:  domain.NoCursor,
		Items: *payload.Results,
	}
	if payload.Info.Next != nil {
		page.Next = domain.Cursor(*payload.Info.Next)
	}
	if page.Items == nil {
		page.Items = make([]domain.Character, 0)
	}

	return page, nil
}
