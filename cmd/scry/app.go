package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/domain/srs"
	"github.com/phrazzld/scry-trainer/internal/platform/sqlstore"
	"github.com/phrazzld/scry-trainer/internal/service"
	"github.com/phrazzld/scry-trainer/internal/service/auth"
	"github.com/phrazzld/scry-trainer/internal/service/card_review"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on exit.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	deckService   service.DeckService
	cardService   service.CardService
	reviewService card_review.CardReviewService
}

// newApplication opens the database and wires the services. It does not
// migrate; the migrate command does that explicitly.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	identity, err := auth.ParseStaticIdentity(cfg.User.ID)
	if err != nil {
		return nil, err
	}

	params, err := srs.NewParams(srs.ParamsConfig{
		DesiredRetention: cfg.Scheduler.DesiredRetention,
		MaximumInterval:  cfg.Scheduler.MaximumInterval,
		LearningSteps:    cfg.Scheduler.LearningSteps,
		RelearningSteps:  cfg.Scheduler.RelearningSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler configuration: %w", err)
	}
	scheduler, err := srs.NewService(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	db, err := sqlstore.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	st := sqlstore.New(db, logger)
	stores := st.Stores()

	app := &application{config: cfg, logger: logger, db: db}

	if app.deckService, err = service.NewDeckService(stores.Decks, identity, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}
	if app.cardService, err = service.NewCardService(st, stores, identity, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}
	app.reviewService, err = card_review.NewCardReviewService(st, stores, scheduler, identity, cfg.Review, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}

	return app, nil
}

func (a *application) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}
