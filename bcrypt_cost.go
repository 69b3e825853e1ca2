//go:build !race

package bookshelf

func passwordHashCost() int {
	return 14
}
