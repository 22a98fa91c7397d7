package provider

import (
	"time"

	"github.com/dropforge/internal/cache"
	"github.com/dropforge/internal/config"
	"github.com/dropforge/internal/logger"
	"github.com/dropforge/internal/mint"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/queue"
	"github.com/dropforge/internal/repository"
	"github.com/dropforge/internal/service"
	"github.com/dropforge/internal/storage"
)

// Container wires repositories, collaborators, and services.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	CollectionRepo   repository.CollectionRepository
	BatchListingRepo repository.BatchListingRepository
	CollectibleRepo  repository.CollectibleRepository
	ChipLinkRepo     repository.ChipLinkRepository
	OrderRepo        repository.OrderRepository

	// Collaborators
	StorageClient *storage.Client
	MintClient    *mint.Client

	// Services
	CollectionService   *service.CollectionService
	BatchListingService *service.BatchListingService
	CollectibleService  *service.CollectibleService
	ChipLinkService     *service.ChipLinkService
	EligibilityService  *service.EligibilityService
	EmailService        *service.EmailService
	OrderService        *service.OrderService
	SettlementService   *service.SettlementService
	SchedulerService    *service.SchedulerService
}

// NewContainer builds the dependency graph.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initCollaborators()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CollectionRepo = repository.NewCollectionRepository(db)
	c.BatchListingRepo = repository.NewBatchListingRepository(db)
	c.CollectibleRepo = repository.NewCollectibleRepository(db)
	c.ChipLinkRepo = repository.NewChipLinkRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initCollaborators() {
	storageClient, err := storage.New(&c.Config.Storage)
	if err != nil {
		logger.Errorw("provider_init_storage_failed", "error", err)
		storageClient, _ = storage.New(nil)
	}
	c.StorageClient = storageClient

	c.MintClient = mint.New(mint.Options{
		Enabled: c.Config.Mint.Enabled,
		BaseURL: c.Config.Mint.BaseURL,
		APIKey:  c.Config.Mint.APIKey,
		Timeout: time.Duration(c.Config.Mint.TimeoutMS) * time.Millisecond,
	})
}

func (c *Container) initServices() {
	c.CollectionService = service.NewCollectionService(c.CollectionRepo)
	c.BatchListingService = service.NewBatchListingService(c.BatchListingRepo, c.CollectionRepo)
	c.CollectibleService = service.NewCollectibleService(c.CollectibleRepo, c.CollectionRepo)
	c.ChipLinkService = service.NewChipLinkService(c.ChipLinkRepo, c.CollectionRepo, c.CollectibleRepo, c.BatchListingRepo)
	c.EligibilityService = service.NewEligibilityService(c.CollectionRepo, c.CollectibleRepo, c.OrderRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email)

	var receipts service.ReceiptEnqueuer
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		receipts = c.QueueClient
	}
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.CollectibleRepo,
		c.EligibilityService,
		c.EmailService,
		c.MintClient,
		receipts,
		&c.Config.Payment,
		&c.Config.Claim,
	)
	c.SettlementService = service.NewSettlementService(c.OrderRepo, c.OrderService, c.MintClient)
	c.SchedulerService = service.NewSchedulerService(c.BatchListingRepo, c.CollectibleRepo, c.ChipLinkRepo, c.StorageClient)
}
