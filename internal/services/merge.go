package services

import "bloxstore/internal/models"

// MergeCart reconciles the local cart with a server snapshot. The lists are
// concatenated local-then-server and deduplicated by product id: an entry keeps
// the position of the id's first occurrence and the value of its last one, so on
// collision the server snapshot wins.
func MergeCart(local, server []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(local)+len(server))
	index := make(map[string]int, len(local)+len(server))
	for _, list := range [][]models.CartItem{local, server} {
		for _, item := range list {
			if i, ok := index[item.ID]; ok {
				out[i] = item
				continue
			}
			index[item.ID] = len(out)
			out = append(out, item)
		}
	}
	return out
}

// MergeWishlist returns the union of both id lists.
func MergeWishlist(local, server []string) []string {
	out := make([]string, 0, len(local)+len(server))
	seen := make(map[string]struct{}, len(local)+len(server))
	for _, list := range [][]string{local, server} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// MergeProducts layers remote products over the bundled catalog by id.
func MergeProducts(base, remote []models.Product) []models.Product {
	out := make([]models.Product, 0, len(base)+len(remote))
	index := make(map[string]int, len(base)+len(remote))
	for _, list := range [][]models.Product{base, remote} {
		for _, p := range list {
			if i, ok := index[p.ID]; ok {
				out[i] = p
				continue
			}
			index[p.ID] = len(out)
			out = append(out, p)
		}
	}
	return out
}
