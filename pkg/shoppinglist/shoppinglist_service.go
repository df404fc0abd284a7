package shoppinglist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/pkg/user"

	"gorm.io/gorm"
)

type (
	ShoppingListService interface {
		DownloadShoppingList(ctx context.Context, userID string) (domain.ShoppingListFile, error)
	}

	shoppingListService struct {
		shoppingListRepository ShoppingListRepository
		userRepository         user.UserRepository
	}
)

func NewShoppingListService(shoppingListRepository ShoppingListRepository, userRepository user.UserRepository) ShoppingListService {
	return &shoppingListService{
		shoppingListRepository: shoppingListRepository,
		userRepository:         userRepository,
	}
}

func (s *shoppingListService) DownloadShoppingList(ctx context.Context, userID string) (domain.ShoppingListFile, error) {
	requester, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShoppingListFile{}, domain.ErrUserNotFound
		}
		return domain.ShoppingListFile{}, err
	}

	lines, err := s.shoppingListRepository.GetCartIngredientLines(ctx, userID)
	if err != nil {
		return domain.ShoppingListFile{}, err
	}
	if len(lines) == 0 {
		return domain.ShoppingListFile{}, domain.ErrShoppingCartEmpty
	}

	items := AggregateLines(lines)
	return domain.ShoppingListFile{
		FileName: fmt.Sprintf("%s_shopping_list.txt", requester.Username),
		Content:  RenderShoppingList(requester, items, time.Now()),
	}, nil
}

// AggregateLines sums amounts per distinct (name, unit) pair into int64
// totals. Output is sorted by name, then unit, regardless of input order.
func AggregateLines(lines []domain.IngredientLine) []domain.ShoppingListItem {
	type key struct {
		name string
		unit string
	}

	totals := make(map[key]int64, len(lines))
	for _, line := range lines {
		totals[key{line.Name, line.MeasurementUnit}] += int64(line.Amount)
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for k, total := range totals {
		items = append(items, domain.ShoppingListItem{
			Name:            k.name,
			MeasurementUnit: k.unit,
			Amount:          total,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items
}

// RenderShoppingList produces the plain-text document. Identical inputs
// render identically.
func RenderShoppingList(requester *entities.User, items []domain.ShoppingListItem, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Shopping list for: %s %s\n\n", requester.FirstName, requester.LastName)
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("2006-01-02"))
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s) — %d\n", item.Name, item.MeasurementUnit, item.Amount)
	}
	fmt.Fprintf(&b, "\nFoodgram (%d)\n", now.Year())

	return b.String()
}
