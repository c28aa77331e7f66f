package repository

import (
	"cloud.google.com/go/firestore"
	"github.com/sigapp/backend/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Repositories interface {
	User() UserRepository
	Presence() PresenceRepository
}

type repositories struct {
	userRepository     UserRepository
	presenceRepository PresenceRepository
}

func NewRepositories(db *gorm.DB, firestoreClient *firestore.Client) Repositories {
	err := db.AutoMigrate(&model.User{})
	if err != nil {
		logrus.Panic(err)
	}
	userRepository := newUserRepository(db)
	presenceRepository := newPresenceRepository(firestoreClient)
	return &repositories{
		userRepository:     userRepository,
		presenceRepository: presenceRepository,
	}
}

func (r repositories) User() UserRepository {
	return r.userRepository
}

func (r repositories) Presence() PresenceRepository {
	return r.presenceRepository
}
