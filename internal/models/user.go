package models

import "time"

// Роли пользователей. Разделение админов на основных и обычных
// не хранится в БД, а задаётся конфигурацией (см. service.AdminRoster).
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User — участник системы. ID приходит извне (идентификатор
// аккаунта в мессенджере), поэтому первичный ключ не генерируется.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Role      string    `db:"role" json:"role"`
	Username  *string   `db:"username" json:"username,omitempty"`
	FirstName *string   `db:"first_name" json:"first_name,omitempty"`
	LastName  *string   `db:"last_name" json:"last_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FullName собирает отображаемое имя из имеющихся полей.
func (u *User) FullName() string {
	name := ""
	if u.FirstName != nil {
		name = *u.FirstName
	}
	if u.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *u.LastName
	}
	if name == "" && u.Username != nil {
		name = *u.Username
	}
	return name
}

// Staff — справочник сотрудников из файла заказчика.
// Assignee — внешний ID исполнителя, связывает запись с задачами.
type Staff struct {
	ID       int64   `db:"id" json:"id"`
	Assignee int64   `db:"assignee" json:"assignee"`
	Post     *string `db:"post" json:"post,omitempty"`
	FIO      *string `db:"fio" json:"fio,omitempty"`
}
