package service

import (
	"context"

	"github.com/mmeshcher/bookstore-system/internal/metrics"
	"github.com/mmeshcher/bookstore-system/internal/model"
)

// PlaceOrder оформляет заказ книги от имени actor. Цена продажи берётся из книги
// в той же транзакции, что и вставка заказа; датой заказа становится текущий день.
func (s *Service) PlaceOrder(ctx context.Context, actor *model.User, bookID int64, quantity int) (*model.Order, error) {
	if actor == nil {
		return nil, ErrNoActor
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	orderDate := s.today()
	o, err := s.repo.CreateOrder(ctx, bookID, func(b *model.Book) model.Order {
		return model.Order{
			CustID:    actor.ID,
			BookID:    b.ID,
			BookName:  b.Name,
			SalePrice: b.Price,
			OrderDate: orderDate,
			Quantity:  quantity,
		}
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlacedTotal.Inc()
	metrics.OrderRevenueTotal.Add(float64(o.SalePrice * o.Quantity))
	return o, nil
}

// OrderHistory возвращает заказы пользователя, новые первыми.
func (s *Service) OrderHistory(ctx context.Context, custID int64) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, custID)
}
