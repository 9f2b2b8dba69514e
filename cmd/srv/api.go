package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/middleware"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/prometheus"
	"github.com/questx-lab/raffle/pkg/router"
	"github.com/questx-lab/raffle/pkg/ws"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func (s *srv) startApi(cctx *cli.Context) error {
	if err := s.loadChain(); err != nil {
		return err
	}

	if err := s.deployIfMissing(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source, consumer, err := s.loadStreamSource()
	if err != nil {
		return err
	}

	if consumer != nil {
		go consumer.Subscribe(ctx)
	}

	stream := ws.NewEventStream(xcontext.Logger(s.ctx), source, model.ChainEventTopic)
	defer stream.Close()
	s.loadRouter(stream)

	cfg := xcontext.Configs(s.ctx)
	apiServer := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(cfg.ApiServer.AllowedOrigins),
	}

	metricServer := &http.Server{
		Addr:    cfg.PrometheusServer.Address(),
		Handler: prometheusMux(),
	}

	if cctx.Bool("with-keeper") {
		manager, err := s.newKeeper()
		if err != nil {
			return err
		}

		go manager.Start(ctx)
		defer manager.Cancel(s.ctx)
	}

	go func() {
		xcontext.Logger(s.ctx).Infof("Starting prometheus server on %s", metricServer.Addr)
		if err := metricServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			xcontext.Logger(s.ctx).Errorf("Prometheus server stopped: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		xcontext.Logger(s.ctx).Infof("Shutting down the servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		metricServer.Shutdown(shutdownCtx)
		apiServer.Shutdown(shutdownCtx)
	}()

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", apiServer.Addr)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter(stream http.Handler) {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.After(middleware.Logger(), middleware.Prometheus())

	s.router.Raw(http.MethodGet, "/events", stream)

	// Public API
	{
		router.GET(s.router, "/getRaffle", s.raffleDomain.Get)
		router.GET(s.router, "/getEntranceFee", s.raffleDomain.GetEntranceFee)
		router.GET(s.router, "/getInterval", s.raffleDomain.GetInterval)
		router.GET(s.router, "/getPlayer", s.raffleDomain.GetPlayer)
		router.GET(s.router, "/getNumberOfPlayers", s.raffleDomain.GetNumberOfPlayers)
		router.GET(s.router, "/getRaffleState", s.raffleDomain.GetRaffleState)
		router.GET(s.router, "/getLastTimeStamp", s.raffleDomain.GetLastTimeStamp)
		router.GET(s.router, "/getRecentWinner", s.raffleDomain.GetRecentWinner)
		router.GET(s.router, "/checkUpkeep", s.raffleDomain.CheckUpkeep)
		router.GET(s.router, "/getContractAddresses", s.deploymentDomain.GetContractAddresses)
		router.GET(s.router, "/getAbi", s.deploymentDomain.GetAbi)
		router.GET(s.router, "/getEvents", s.chainDomain.GetEvents)
		router.GET(s.router, "/getBalance", s.chainDomain.GetBalance)
		router.GET(s.router, "/getSubscription", s.vrfDomain.GetSubscription)
	}

	// Transactions are signed by their sender, or sent by an operator.
	txRouter := s.router.Group("")
	txRouter.Before(middleware.OptionalOperator(s.tokenEngine))
	{
		router.POST(txRouter, "/enterLottery", s.raffleDomain.EnterLottery)
		router.POST(txRouter, "/performUpkeep", s.raffleDomain.PerformUpkeep)
	}

	// Operator API
	operatorRouter := s.router.Group("")
	operatorRouter.Before(middleware.Operator(s.tokenEngine))
	{
		router.POST(operatorRouter, "/fulfillRandomWords", s.vrfDomain.FulfillRandomWords)
		router.POST(operatorRouter, "/faucet", s.chainDomain.Faucet)
		router.POST(operatorRouter, "/increaseTime", s.chainDomain.IncreaseTime)
		router.POST(operatorRouter, "/mine", s.chainDomain.Mine)
		router.POST(operatorRouter, "/setRejectPayments", s.chainDomain.SetRejectPayments)
	}
}

func prometheusMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewHandler())
	return mux
}

// deployIfMissing deploys the contracts on a development chain which has no
// raffle yet, or completes the subscription of the existing one.
func (s *srv) deployIfMissing() error {
	cfg := xcontext.Configs(s.ctx)
	if !cfg.IsDevelopmentChain(cfg.Network) {
		return nil
	}

	_, err := s.deploymentRepo.GetLatest(s.ctx, cfg.Network, entity.ContractKindRaffle)
	if err == nil {
		return s.deploymentDomain.EnsureConsumer(s.ctx)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	result, err := s.deploymentDomain.DeployRaffle(s.ctx)
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Deployed raffle at %s", result.Raffle.Address)
	return nil
}
