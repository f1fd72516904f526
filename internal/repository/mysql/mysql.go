package mysql

import (
	"github.com/jmoiron/sqlx"

	"github.com/unilib/portal-api/internal/repository"
)

type reservationRepository struct {
	db *sqlx.DB
}

type userDirectory struct {
	db *sqlx.DB
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewReservationRepository(db *sqlx.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func NewUserDirectory(db *sqlx.DB) repository.UserDirectory {
	return &userDirectory{db: db}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}
