package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/domain"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/domain/contract"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/migration"
	"github.com/questx-lab/raffle/pkg/authenticator"
	"github.com/questx-lab/raffle/pkg/kafka"
	"github.com/questx-lab/raffle/pkg/logger"
	"github.com/questx-lab/raffle/pkg/pubsub"
	"github.com/questx-lab/raffle/pkg/router"
	"github.com/questx-lab/raffle/pkg/storage"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stopper interface {
	Stop(context.Context) error
}

type srv struct {
	app *cli.App
	ctx context.Context

	stoppers []stopper

	redisClient xredis.Client
	eventHub    *pubsub.Hub
	publisher   pubsub.Publisher
	storage     storage.Storage
	engine      chain.Engine
	tokenEngine authenticator.TokenEngine[model.OperatorToken]

	accountRepo    repository.AccountRepository
	blockRepo      repository.BlockRepository
	eventLogRepo   repository.EventLogRepository
	deploymentRepo repository.DeploymentRepository
	raffleRepo     repository.RaffleRepository
	vrfRepo        repository.VRFRepository

	raffle *contract.Raffle
	vrf    *contract.VRFCoordinatorV2Mock

	raffleDomain     domain.RaffleDomain
	vrfDomain        domain.VRFDomain
	deploymentDomain domain.DeploymentDomain
	chainDomain      domain.ChainDomain

	router *router.Router
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	if err := godotenv.Load(cctx.String("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewZapLogger(cfg.Log.Level, cfg.Log.Production))
	s.tokenEngine = authenticator.NewTokenEngine[model.OperatorToken](cfg.Auth)

	return nil
}

func (s *srv) stop(*cli.Context) error {
	for _, stopper := range s.stoppers {
		if err := stopper.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot stop a dependency: %v", err)
		}
	}

	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	if err := migration.Migrate(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Connected to %s database", xcontext.Configs(s.ctx).Database.Driver)
	return nil
}

func (s *srv) loadRedisClient() error {
	if !xcontext.Configs(s.ctx).Redis.Enable {
		return nil
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		return err
	}

	s.redisClient = redisClient
	return nil
}

// loadPublisher fans the chain events out to the in-process hub, which feeds
// the websocket stream, then to kafka when enabled.
func (s *srv) loadPublisher() error {
	s.eventHub = pubsub.NewHub()
	publishers := []pubsub.Publisher{s.eventHub}

	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Enable {
		kafkaPublisher, err := kafka.NewPublisher(cfg.ClientID, strings.Split(cfg.Addr, ","))
		if err != nil {
			return err
		}

		s.stoppers = append(s.stoppers, kafkaPublisher)
		publishers = append(publishers, pubsub.NewTopicPublisher(kafkaPublisher, map[string]string{
			model.ChainEventTopic: cfg.EventsTopic,
		}))
	}

	s.publisher = pubsub.NewMultiPublisher(publishers...)
	return nil
}

func (s *srv) loadStorage() error {
	cfg := xcontext.Configs(s.ctx).Storage
	switch cfg.Kind {
	case "s3":
		s3Storage, err := storage.NewS3Storage(cfg.S3)
		if err != nil {
			return err
		}

		s.storage = s3Storage
	case "local", "":
		s.storage = storage.NewLocalStorage(cfg.BaseDir)
	default:
		return fmt.Errorf("unsupported storage kind %s", cfg.Kind)
	}

	return nil
}

func (s *srv) loadRepos() {
	s.accountRepo = repository.NewAccountRepository()
	s.blockRepo = repository.NewBlockRepository()
	s.eventLogRepo = repository.NewEventLogRepository()
	s.deploymentRepo = repository.NewDeploymentRepository()
	s.raffleRepo = repository.NewRaffleRepository()
	s.vrfRepo = repository.NewVRFRepository()
}

// loadEngine lets the clock travel on development chains only.
func (s *srv) loadEngine() error {
	cfg := xcontext.Configs(s.ctx)

	var clock chain.Clock = chain.NewSystemClock()
	if cfg.IsDevelopmentChain(cfg.Network) {
		clock = chain.NewOffsetClock(nil)
	}

	engine, err := chain.NewEngine(clock, s.publisher, s.accountRepo, s.blockRepo, s.eventLogRepo)
	if err != nil {
		return err
	}

	s.engine = engine
	return nil
}

func (s *srv) loadContracts() {
	s.vrf = contract.NewVRFCoordinatorV2Mock(s.vrfRepo, s.accountRepo)
	s.raffle = contract.NewRaffle(s.raffleRepo, s.vrf)
	s.vrf.RegisterConsumer(entity.ContractKindRaffle, s.raffle)
}

func (s *srv) loadDomains() {
	s.raffleDomain = domain.NewRaffleDomain(s.deploymentRepo, s.engine, s.raffle, s.redisClient)
	s.vrfDomain = domain.NewVRFDomain(s.deploymentRepo, s.engine, s.vrf, s.redisClient)
	s.deploymentDomain = domain.NewDeploymentDomain(s.deploymentRepo, s.engine, s.raffle, s.vrf, s.storage)
	s.chainDomain = domain.NewChainDomain(s.eventLogRepo, s.engine, s.redisClient)
}

// loadChain loads everything needed to run transactions on the active
// network.
func (s *srv) loadChain() error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	if err := s.loadPublisher(); err != nil {
		return err
	}

	if err := s.loadStorage(); err != nil {
		return err
	}

	s.loadRepos()
	if err := s.loadEngine(); err != nil {
		return err
	}

	s.loadContracts()
	s.loadDomains()
	return nil
}
