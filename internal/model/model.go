// Package model содержит доменные сущности книжного магазина.
package model

import "time"

// Book описывает книгу каталога.
type Book struct {
	ID               int64  `json:"bookid"`
	Name             string `json:"bookname"`
	Publisher        string `json:"publisher"`
	Price            int    `json:"price"`
	Content          string `json:"content"`
	Writer           string `json:"writer"`
	Year             string `json:"year"`
	OriginalFileName string `json:"originalFileName,omitempty"`
	StoredFileName   string `json:"storedFileName,omitempty"`
}

// User представляет зарегистрированного покупателя.
// Password хранит bcrypt-хеш и никогда не сериализуется.
type User struct {
	ID       int64      `json:"custId"`
	Name     string     `json:"name"`
	UserName string     `json:"userName"`
	Password string     `json:"-"`
	Birthday *time.Time `json:"birthday,omitempty"`
	Email    string     `json:"email,omitempty"`
	Address  string     `json:"address,omitempty"`
	Phone    string     `json:"phone,omitempty"`
}

// Order описывает заказ книги. SalePrice фиксируется в момент создания заказа
// и не зависит от последующих изменений цены книги.
type Order struct {
	ID        int64     `json:"orderid"`
	CustID    int64     `json:"custid"`
	BookID    int64     `json:"bookid"`
	BookName  string    `json:"bookname,omitempty"`
	SalePrice int       `json:"saleprice"`
	OrderDate time.Time `json:"orderdate"`
	Quantity  int       `json:"quantity"`
}

// BookQuery содержит параметры поиска по каталогу.
// Пустые Name и Publisher означают отсутствие ограничения.
type BookQuery struct {
	Name      string
	Publisher string
	Year      string
	Page      int
	PageSize  int
	Sort      string
}

// Offset возвращает смещение первой записи страницы.
func (q BookQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// BookPage содержит одну страницу результатов поиска и данные для пагинации.
// Query содержит фактически выполненный запрос после подстановки значений по умолчанию.
type BookPage struct {
	Query      BookQuery
	Books      []Book
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// TotalPages вычисляет количество страниц: ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Session связывает запрос с аутентифицированным пользователем.
type Session struct {
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession создаёт сессию для пользователя.
func NewSession(u *User, now time.Time) Session {
	return Session{
		UserID:    u.ID,
		UserName:  u.UserName,
		Name:      u.Name,
		CreatedAt: now,
	}
}

// Actor возвращает пользователя, от имени которого выполняется запрос.
func (s Session) Actor() *User {
	return &User{
		ID:       s.UserID,
		Name:     s.Name,
		UserName: s.UserName,
	}
}
