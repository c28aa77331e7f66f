package client

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/sigapp/backend/internal/dto"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

type Clients interface {
	AuthClient() AuthClient
	FirestoreClient() *firestore.Client
	PushClient() PushClient
	PlacesClient() PlacesClient
	BroadcastClient() BroadcastClient
}

type clients struct {
	authClient      AuthClient
	firestoreClient *firestore.Client
	pushClient      PushClient
	placesClient    PlacesClient
	broadcastClient BroadcastClient
}

func (c clients) AuthClient() AuthClient {
	return c.authClient
}

func (c clients) FirestoreClient() *firestore.Client {
	return c.firestoreClient
}

func (c clients) PushClient() PushClient {
	return c.pushClient
}

func (c clients) PlacesClient() PlacesClient {
	return c.placesClient
}

func (c clients) BroadcastClient() BroadcastClient {
	return c.broadcastClient
}

func NewClients(cfg dto.Config) Clients {
	decodedFirebaseKey, err := cfg.DecodeFirebaseKey()
	if err != nil {
		logrus.Panic(err)
	}
	app, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsJSON(decodedFirebaseKey))
	if err != nil {
		logrus.Panic(err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logrus.Panic(err)
	}

	firestoreClient, err := app.Firestore(context.Background())
	if err != nil {
		logrus.Panic(err)
	}

	messagingClient, err := app.Messaging(context.Background())
	if err != nil {
		logrus.Panic(err)
	}

	return &clients{
		authClient:      authClient,
		firestoreClient: firestoreClient,
		pushClient:      newFCMPushClient(messagingClient),
		placesClient:    NewGooglePlacesClient(cfg),
		broadcastClient: NewBroadcastClient(cfg),
	}
}
