package service

import "context"

// AssetFetcherInterface defines the contract for retrieving sticker artwork
type AssetFetcherInterface interface {
	Fetch(ctx context.Context, imageURL string) ([]byte, error)
}
