package background

import (
	"context"
	"log"
	"time"

	"imeitrack/internal/models"
	"imeitrack/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// StaleTransferAge is how long a transfer may sit unconfirmed before the
// reminder job flags it.
const StaleTransferAge = 24 * time.Hour

// JobScheduler runs the periodic maintenance jobs: reminders for transfers
// stuck in a pending state and low-stock checks against product type
// minimums.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	transfersRepo repositories.TransfersRepository
	typesRepo     repositories.ProductTypesRepository
	unitsRepo     repositories.UnitsRepository
	jobs          map[string]gocron.Job
}

func NewJobScheduler(
	transfersRepo repositories.TransfersRepository,
	typesRepo repositories.ProductTypesRepository,
	unitsRepo repositories.UnitsRepository,
) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		transfersRepo: transfersRepo,
		typesRepo:     typesRepo,
		unitsRepo:     unitsRepo,
		jobs:          make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	reminderJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.remindStaleTransfers, context.Background()),
		gocron.WithName("stale-transfer-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stale transfer job: %v", err)
	} else {
		js.jobs["stale-transfers"] = reminderJob
	}

	stockJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.checkLowStock, context.Background()),
		gocron.WithName("low-stock-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low stock job: %v", err)
	} else {
		js.jobs["low-stock"] = stockJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// remindStaleTransfers flags transfers that have been waiting on a
// confirmation longer than StaleTransferAge.
func (js *JobScheduler) remindStaleTransfers(ctx context.Context) error {
	cutoff := time.Now().Add(-StaleTransferAge)
	stale, err := js.transfersRepo.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("Failed to list stale transfers: %v", err)
		return err
	}

	for _, transfer := range stale {
		waitingOn := "admin confirmation"
		if transfer.State == models.TransferPendingDestination {
			waitingOn = "destination confirmation"
		}
		log.Printf("REMINDER: transfer %s created %s is still waiting on %s",
			transfer.FolioString(), transfer.CreatedAt.Format(time.RFC3339), waitingOn)
	}

	if len(stale) > 0 {
		log.Printf("Found %d stale transfers", len(stale))
	}
	return nil
}

// checkLowStock compares on-hand unit counts against each product type's
// configured minimum.
func (js *JobScheduler) checkLowStock(ctx context.Context) error {
	productTypes, err := js.typesRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to list product types for stock check: %v", err)
		return err
	}

	for _, productType := range productTypes {
		if productType.MinStock == nil {
			continue
		}

		units, err := js.unitsRepo.ListByProductType(ctx, productType.ID)
		if err != nil {
			log.Printf("Failed to list units for %s: %v", productType.Name(), err)
			continue
		}

		onHand := 0
		for _, unit := range units {
			switch unit.Status {
			case models.StatusSold, models.StatusLost:
			default:
				onHand++
			}
		}

		if onHand < *productType.MinStock {
			log.Printf("ALERT: %s has %d units on hand, minimum is %d",
				productType.Name(), onHand, *productType.MinStock)
		}
	}
	return nil
}

// GetJobStatus reports the registered job names.
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	jobs := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		jobs = append(jobs, name)
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       jobs,
	}
}
