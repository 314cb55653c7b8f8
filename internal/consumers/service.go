// Package consumers runs the NATS subscribers that react to booking
// lifecycle events, most importantly turning freed seats into waitlist
// promotions.
package consumers

import (
	"context"
	"log/slog"

	"skybook/internal/config"
	"skybook/internal/database"
	"skybook/internal/messaging"
	"skybook/internal/service"
	"skybook/internal/store/postgres"
)

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	st := postgres.New(db, cfg.Database.LockTimeout)
	services := service.NewServices(st, natsClient, nil)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		handlers: NewHandlers(services),
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	// seat.released runs in a queue group so only one instance promotes per
	// freed seat.
	_, err := cs.nats.SubscribeQueue("seat.released", "consumers", cs.handlers.HandleSeatReleased)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("ticket.booked", "consumers", cs.handlers.HandleTicketBooked)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("ticket.waitlisted", "consumers", cs.handlers.HandleTicketWaitlisted)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("ticket.cancelled", "consumers", cs.handlers.HandleTicketCancelled)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("ticket.promoted", "consumers", cs.handlers.HandleTicketPromoted)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
