package service

import "context"

// Tier — ступень голосования админа.
const (
	TierRegular = "regular"
	TierMain    = "main"
)

// AdminSource отдаёт ID всех пользователей с ролью админа.
type AdminSource interface {
	ListAdminIDs(ctx context.Context) ([]int64, error)
}

// AdminRoster разбивает админов на обычных и основных. Принадлежность к
// основной ступени задаётся конфигурацией, а не полем в БД: состав можно
// менять без миграции данных. Каждый админ попадает ровно в одну ступень.
type AdminRoster struct {
	users   AdminSource
	mainIDs map[int64]struct{}
}

func NewAdminRoster(users AdminSource, mainIDs []int64) *AdminRoster {
	set := make(map[int64]struct{}, len(mainIDs))
	for _, id := range mainIDs {
		set[id] = struct{}{}
	}
	return &AdminRoster{users: users, mainIDs: set}
}

// Partition возвращает актуальное разбиение админов на ступени.
// Читает таблицу пользователей при каждом вызове: снятие роли или правка
// конфигурации видна немедленно.
func (r *AdminRoster) Partition(ctx context.Context) (regular []int64, main []int64, err error) {
	ids, err := r.users.ListAdminIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range ids {
		if _, ok := r.mainIDs[id]; ok {
			main = append(main, id)
		} else {
			regular = append(regular, id)
		}
	}
	return regular, main, nil
}
